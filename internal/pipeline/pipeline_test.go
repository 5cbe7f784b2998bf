// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/juanceresa/BigQuery/internal/logging"
	"github.com/juanceresa/BigQuery/internal/match"
	"github.com/juanceresa/BigQuery/internal/resolve"
	"github.com/juanceresa/BigQuery/pkg/types"
)

type memStore struct {
	rows      []types.Investigator
	persisted []types.Investigator
	mode      types.PersistMode
	runID     string
	saved     []types.GatheredCandidate
	fetchErr  error
}

func (m *memStore) FetchInvestigators(context.Context) ([]types.Investigator, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]types.Investigator, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *memStore) Persist(_ context.Context, invs []types.Investigator, mode types.PersistMode) error {
	m.persisted, m.mode = invs, mode
	return nil
}

func (m *memStore) SaveCandidates(_ context.Context, runID string, c []types.GatheredCandidate) error {
	m.runID, m.saved = runID, c
	return nil
}

func observedLogger() (*logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.FromZap(zap.New(core)), logs
}

type pageSearcher map[string][]types.CandidateAuthor

func (p pageSearcher) SearchAuthors(_ context.Context, q string) ([]types.CandidateAuthor, error) {
	return p[q], nil
}

func TestNameSearch_FillsVerifiedOnly(t *testing.T) {
	store := &memStore{rows: []types.Investigator{
		{ID: "1", FullName: "Ana Ruiz"},
		{ID: "2", FullName: "Luis Gil", AlexID: types.StringPtr("https://openalex.org/A77")},
		{ID: "3", FullName: "Eva Sanz"},
		{ID: "4", FullName: "Pedro Gil"},
	}}
	searcher := pageSearcher{
		"Ana Ruiz":  {{ID: "https://openalex.org/A1", DisplayName: "Ana Ruiz"}},
		"Luis Gil":  {{ID: "https://openalex.org/A2", DisplayName: "Luis Gil"}},
		"Pedro Gil": {{ID: "https://openalex.org/A4", DisplayName: "Someone Else"}},
	}
	engine := resolve.NewEngine(searcher, nil, nil, nil)

	logger, logs := observedLogger()
	var buf bytes.Buffer
	res, err := NameSearch(context.Background(), store, engine, store, NameSearchOptions{}, logger, &buf)
	require.NoError(t, err)

	finished := logs.FilterMessage("name search finished").All()
	require.Len(t, finished, 1)
	assert.EqualValues(t, 2, finished[0].ContextMap()["gathered_investigators"])

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, res.RunID, store.runID)
	assert.Equal(t, resolve.RunSummary{Matched: 2, Unmatched: 2}, res.Summary)
	assert.Equal(t, 1, res.Filled)
	assert.Len(t, store.saved, 2)
	assert.Equal(t, types.PersistReplace, store.mode)

	require.Len(t, store.persisted, 4)
	assert.Equal(t, "https://openalex.org/A1", *store.persisted[0].AlexID)
	assert.Equal(t, "https://openalex.org/A77", *store.persisted[1].AlexID, "existing AlexID is kept")
	assert.Nil(t, store.persisted[2].AlexID)
	assert.Nil(t, store.persisted[3].AlexID)
}

func TestNameSearch_OnlyMissing(t *testing.T) {
	store := &memStore{rows: []types.Investigator{
		{ID: "1", FullName: "Ana Ruiz"},
		{ID: "2", FullName: "Luis Gil", AlexID: types.StringPtr("https://openalex.org/A77")},
	}}
	searcher := pageSearcher{
		"Ana Ruiz": {{ID: "A1", DisplayName: "Ana Ruiz"}},
		"Luis Gil": {{ID: "A2", DisplayName: "Luis Gil"}},
	}
	engine := resolve.NewEngine(searcher, nil, nil, nil)

	var buf bytes.Buffer
	res, err := NameSearch(context.Background(), store, engine, nil, NameSearchOptions{OnlyMissing: true, Mode: types.PersistUpsert, RunID: "run-x"}, nil, &buf)
	require.NoError(t, err)
	assert.Equal(t, "run-x", res.RunID)
	assert.Equal(t, 1, res.Summary.Total())
	assert.Equal(t, types.PersistUpsert, store.mode)
	assert.Len(t, store.persisted, 2)
	assert.Equal(t, "https://openalex.org/A1", *store.persisted[0].AlexID)
}

func TestNameSearch_FetchError(t *testing.T) {
	store := &memStore{fetchErr: errors.New("no such table")}
	_, err := NameSearch(context.Background(), store, resolve.NewEngine(pageSearcher{}, nil, nil, nil), nil, NameSearchOptions{}, nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching investigators")
}

type fakeBridge struct {
	works   []types.WorkRef
	auths   []types.Authorship
	details []types.AuthorDetail
	calls   []string
	errs    map[string]error
}

func (b *fakeBridge) LookupWorksByDOI(_ context.Context, dois []string) ([]types.WorkRef, error) {
	b.calls = append(b.calls, "works")
	if err := b.errs["works"]; err != nil {
		return nil, err
	}
	if len(dois) == 0 {
		return nil, nil
	}
	return b.works, nil
}

func (b *fakeBridge) LookupAuthorships(_ context.Context, ids []string) ([]types.Authorship, error) {
	b.calls = append(b.calls, "authorships")
	if err := b.errs["authorships"]; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return b.auths, nil
}

func (b *fakeBridge) LookupAuthorDetails(_ context.Context, ids []string) ([]types.AuthorDetail, error) {
	b.calls = append(b.calls, "details")
	if err := b.errs["details"]; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return b.details, nil
}

func TestRatify(t *testing.T) {
	store := &memStore{rows: []types.Investigator{
		{ID: "1", FullName: "Juan García López", DOI: types.StringPtr("10.1/x")},
		{ID: "2", FullName: "Eva Sanz"},
		{ID: "3", FullName: "María Fernández Ruiz", DOI: types.StringPtr("10.1/x"), AuthorOrder: types.IntPtr(7)},
	}}
	bridge := &fakeBridge{
		works: []types.WorkRef{{DOI: "10.1/x", WorkID: "W1"}},
		auths: []types.Authorship{
			{WorkID: "W1", Position: types.IntPtr(1), AuthorID: "A10"},
			{WorkID: "W1", Position: types.IntPtr(2), AuthorID: "A20"},
			{WorkID: "W1", Position: types.IntPtr(3), AuthorID: "A30"},
		},
		details: []types.AuthorDetail{
			{AuthorID: "A10", DisplayName: "J. García López"},
			{AuthorID: "A20", DisplayName: "Ana Fernández Ruiz"},
			{AuthorID: "A30", DisplayName: "Maria Fernandez Luis"},
		},
	}

	res, err := Ratify(context.Background(), store, bridge, RatifyOptions{Match: match.DefaultOptions()}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"works", "authorships", "details"}, bridge.calls)
	assert.Equal(t, RatifyResult{RunID: res.RunID, Investigators: 3, WithDOI: 2, Rows: 7, Matched: 2}, res)

	require.Len(t, store.persisted, 3)
	juan, eva, maria := store.persisted[0], store.persisted[1], store.persisted[2]
	assert.Equal(t, "https://openalex.org/A10", *juan.AlexID)
	assert.Equal(t, 1, *juan.AuthorOrder)
	assert.Nil(t, eva.AlexID)
	assert.Equal(t, "https://openalex.org/A30", *maria.AlexID)
	assert.Equal(t, 7, *maria.AuthorOrder, "existing order kept without overwrite")
}

func TestRatify_NoDOIsSkipsLookups(t *testing.T) {
	store := &memStore{rows: []types.Investigator{{ID: "1", FullName: "Eva Sanz"}}}
	bridge := &fakeBridge{}
	res, err := Ratify(context.Background(), store, bridge, RatifyOptions{Match: match.DefaultOptions()}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Zero(t, res.Matched)
	assert.Len(t, store.persisted, 1)
}

func TestRatify_AuthorshipLookupFails(t *testing.T) {
	store := &memStore{rows: []types.Investigator{
		{ID: "1", FullName: "Juan García López", DOI: types.StringPtr("10.1/x")},
		{ID: "2", FullName: "Eva Sanz", AlexID: types.StringPtr("https://openalex.org/A77")},
	}}
	bridge := &fakeBridge{
		works: []types.WorkRef{{DOI: "10.1/x", WorkID: "W1"}},
		errs:  map[string]error{"authorships": errors.New("503 service unavailable")},
	}

	logger, logs := observedLogger()
	res, err := Ratify(context.Background(), store, bridge, RatifyOptions{Match: match.DefaultOptions()}, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"works", "authorships", "details"}, bridge.calls)

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Equal(t, "authorships", warns[0].ContextMap()["lookup"])

	assert.Equal(t, RatifyResult{RunID: res.RunID, Investigators: 2, WithDOI: 1, Rows: 2, Matched: 0, LookupFailures: 1}, res)

	require.Len(t, store.persisted, 2)
	assert.Nil(t, store.persisted[0].AlexID)
	assert.Nil(t, store.persisted[0].AuthorID)
	assert.Equal(t, "https://openalex.org/A77", *store.persisted[1].AlexID)
}

func TestRatify_WorksLookupFails(t *testing.T) {
	store := &memStore{rows: []types.Investigator{
		{ID: "1", FullName: "Juan García López", DOI: types.StringPtr("10.1/x")},
		{ID: "2", FullName: "Ana Ruiz", DOI: types.StringPtr("10.1/y")},
	}}
	bridge := &fakeBridge{errs: map[string]error{"works": errors.New("quota")}}

	res, err := Ratify(context.Background(), store, bridge, RatifyOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.LookupFailures)
	assert.Zero(t, res.Matched)
	require.Len(t, store.persisted, 2)
	for _, inv := range store.persisted {
		assert.Nil(t, inv.AuthorID, inv.ID)
	}
}

func TestRatify_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &memStore{rows: []types.Investigator{{ID: "1", FullName: "Ana Ruiz", DOI: types.StringPtr("10.1/x")}}}
	bridge := &fakeBridge{errs: map[string]error{"works": context.Canceled}}
	_, err := Ratify(ctx, store, bridge, RatifyOptions{}, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "looking up works")
	assert.Nil(t, store.persisted)
}
