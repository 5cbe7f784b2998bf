// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanceresa/BigQuery/pkg/types"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "alexmatch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleInvestigators() []types.Investigator {
	return []types.Investigator{
		{
			ID: "FB-2", Name: "Juan", Surname1: "García", Surname2: "López",
			FullName: "Juan García López", Institution: "Universidad de Alcalá",
			GrantYear: "1998", Country: "España", GS: "gs-2",
			DOI: types.StringPtr("10.1000/abc"), AuthorOrder: types.IntPtr(2),
		},
		{ID: "FB-1", FullName: "Ana Ruiz", AlexID: types.StringPtr("https://openalex.org/A1")},
	}
}

func TestSQLite_PersistReplaceRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	in := sampleInvestigators()

	require.NoError(t, s.Persist(ctx, in, types.PersistReplace))
	got, err := s.FetchInvestigators(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, s.Persist(ctx, in[1:], types.PersistReplace))
	got, err = s.FetchInvestigators(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLite_PersistUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Persist(ctx, sampleInvestigators(), types.PersistReplace))

	update := []types.Investigator{
		{ID: "FB-3", FullName: "Eva Sanz"},
		{ID: "FB-2", FullName: "Juan García López", AuthorID: types.StringPtr("A5")},
	}
	require.NoError(t, s.Persist(ctx, update, types.PersistUpsert))

	got, err := s.FetchInvestigators(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"FB-2", "FB-1", "FB-3"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "A5", *got[0].AuthorID)
	assert.Nil(t, got[0].DOI, "upsert writes the whole record")
}

func TestSQLite_PersistUnknownMode(t *testing.T) {
	s := openTestStore(t)
	err := s.Persist(context.Background(), nil, types.PersistMode("append"))
	assert.ErrorContains(t, err, "unknown persist mode")
}

func TestSQLite_Candidates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Empty(t, run)

	cands := []types.GatheredCandidate{
		{InvestigatorID: "FB-1", Query: "Ana Ruiz", Class: types.ExactMatched, Candidate: types.CandidateAuthor{
			ID: "https://openalex.org/A1", DisplayName: "Ana Ruiz", Topics: []string{"Ecology"}, WorksCount: 3,
		}},
		{InvestigatorID: "FB-1", Query: "Ana Ruiz", Class: types.TopicMatched, Candidate: types.CandidateAuthor{
			ID: "https://openalex.org/A2", DisplayName: "A. Ruiz", Topics: []string{"Ecology"},
		}},
	}
	require.NoError(t, s.SaveCandidates(ctx, "run-1", cands))

	run, err = s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", run)

	got, err := s.ListCandidates(ctx, "run-1")
	require.NoError(t, err)
	if diff := cmp.Diff(cands, got); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}

	none, err := s.ListCandidates(ctx, "run-2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLite_Works(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	works := []types.Work{
		{ID: "W1", Title: "On things", DOI: "10.1/a", PublicationYear: 2001, CitedByCount: 4},
		{ID: "W2", Title: "More things"},
	}
	require.NoError(t, s.SaveWorks(ctx, "FB-1", "A1", works))
	require.NoError(t, s.SaveWorks(ctx, "FB-1", "A1", works[:1]))

	n, err := s.CountWorks(ctx, "FB-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

const sampleCSV = "\ufeffNombre,Apellido_1,Apellido_2,Nombre_apellidos,Trabajo_institucion,Ano_beca,Pais,ID,GS,DOI,Author_order,Extra\n" +
	"Juan,García,López,Juan García López,Universidad de Alcalá,1998,España,FB-2,gs-2,10.1000/abc,2.0,x\n" +
	"Ana,Ruiz,,Ana Ruiz,,,,FB-1,,,,\n"

func TestRead_CSV(t *testing.T) {
	got, err := Read(strings.NewReader(sampleCSV), FormatCSV)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Juan García López", got[0].FullName)
	assert.Equal(t, "10.1000/abc", *got[0].DOI)
	assert.Equal(t, 2, *got[0].AuthorOrder)
	assert.Nil(t, got[0].AlexID)
	assert.Equal(t, "FB-1", got[1].ID)
	assert.Nil(t, got[1].DOI)
	assert.Nil(t, got[1].AuthorOrder)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(strings.NewReader("Nombre\nJuan\n"), FormatCSV)
	assert.ErrorContains(t, err, `missing required column "ID"`)

	_, err = Read(strings.NewReader("ID,Author_order\nFB-1,first\n"), FormatCSV)
	assert.ErrorContains(t, err, "row 2")

	_, err = Read(strings.NewReader("- Nombre: Juan\n"), FormatYAML)
	assert.ErrorContains(t, err, "missing ID")

	_, err = FormatFromPath("table.xlsx")
	assert.Error(t, err)
}

func TestWriteRead_AllFormats(t *testing.T) {
	in := sampleInvestigators()
	for _, f := range []Format{FormatCSV, FormatYAML, FormatJSON} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, f, in))
			got, err := Read(&buf, f)
			require.NoError(t, err)
			if diff := cmp.Diff(in, got); diff != "" {
				t.Errorf("%s mismatch (-want +got):\n%s", f, diff)
			}
		})
	}
}

func TestWrite_CSVColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleInvestigators()[1:]))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(types.Columns, ","), lines[0])
	assert.Equal(t, ",,,Ana Ruiz,,,,FB-1,,,,https://openalex.org/A1,", lines[1])
}

func TestWriteFile_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, WriteFile(path, sampleInvestigators()))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
