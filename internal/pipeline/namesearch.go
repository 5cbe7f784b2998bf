// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/juanceresa/BigQuery/internal/enrich"
	"github.com/juanceresa/BigQuery/internal/logging"
	"github.com/juanceresa/BigQuery/internal/resolve"
	"github.com/juanceresa/BigQuery/pkg/types"
)

// NameSearchOptions controls the name search pass.
type NameSearchOptions struct {
	// OnlyMissing restricts the search to investigators without an AlexID.
	OnlyMissing bool

	// Mode is how the updated table is persisted.
	Mode types.PersistMode

	// RunID labels saved candidates. A new id is generated when empty.
	RunID string
}

// NameSearchResult reports what the pass did.
type NameSearchResult struct {
	RunID      string
	Summary    resolve.RunSummary
	Filled     int
	Candidates []types.GatheredCandidate
	Compiled   []enrich.Compiled
}

// NameSearch resolves investigators by name and fills AlexID for those whose
// gathered candidates compile to a single author. Existing AlexID values
// are never replaced. Candidates are saved to sink when it is not nil. The
// whole table is persisted so rows outside the search are kept.
func NameSearch(ctx context.Context, store RecordStore, engine *resolve.Engine, sink CandidateSink, opts NameSearchOptions, logger *logging.Logger, w io.Writer) (NameSearchResult, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	res := NameSearchResult{RunID: opts.RunID}
	if res.RunID == "" {
		res.RunID = NewRunID()
	}
	if opts.Mode == "" {
		opts.Mode = types.PersistReplace
	}
	logger = logger.With("run_id", res.RunID)

	all, err := store.FetchInvestigators(ctx)
	if err != nil {
		return res, fmt.Errorf("fetching investigators: %w", err)
	}

	targets := all
	if opts.OnlyMissing {
		targets = nil
		for _, inv := range all {
			if inv.AlexID == nil {
				targets = append(targets, inv)
			}
		}
	}
	logger.Info("name search started", "investigators", len(all), "targets", len(targets))

	res.Summary, err = engine.Run(ctx, targets, w)
	if err != nil {
		return res, err
	}

	acc := engine.Accumulator()
	for _, inv := range targets {
		res.Candidates = append(res.Candidates, acc.Get(inv.ID)...)
	}
	res.Compiled = enrich.Compile(targets, res.Candidates)

	verified := make(map[string]string)
	for _, c := range res.Compiled {
		if c.Status == enrich.StatusVerified {
			verified[c.InvestigatorID] = c.AlexIDs[0]
		}
	}
	for i := range all {
		alex, ok := verified[all[i].ID]
		if !ok || all[i].AlexID != nil {
			continue
		}
		all[i].AlexID = types.StringPtr(alex)
		res.Filled++
	}

	if sink != nil && len(res.Candidates) > 0 {
		if err := sink.SaveCandidates(ctx, res.RunID, res.Candidates); err != nil {
			return res, fmt.Errorf("saving candidates: %w", err)
		}
	}
	if err := store.Persist(ctx, all, opts.Mode); err != nil {
		return res, fmt.Errorf("persisting investigators: %w", err)
	}
	logger.Info("name search finished",
		"matched", res.Summary.Matched,
		"filled", res.Filled,
		"candidates", len(res.Candidates),
		"gathered_investigators", acc.Len(),
	)
	return res, nil
}
