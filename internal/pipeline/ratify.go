// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"

	"github.com/juanceresa/BigQuery/internal/logging"
	"github.com/juanceresa/BigQuery/internal/match"
	"github.com/juanceresa/BigQuery/pkg/types"
)

// RatifyOptions controls the DOI ratify pass.
type RatifyOptions struct {
	Match match.Options
	Mode  types.PersistMode
}

// RatifyResult reports what the pass did.
type RatifyResult struct {
	RunID         string
	Investigators int
	WithDOI       int
	Rows          int
	Matched       int

	// LookupFailures counts bridge lookups that failed and were skipped.
	LookupFailures int
}

// Ratify joins every investigator with the authorship list of its DOI,
// selects one author per investigator and persists the collapsed table.
// The persisted table has exactly one record per input id.
func Ratify(ctx context.Context, store RecordStore, bridge Bridge, opts RatifyOptions, logger *logging.Logger) (RatifyResult, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	res := RatifyResult{RunID: NewRunID()}
	if opts.Mode == "" {
		opts.Mode = types.PersistReplace
	}
	logger = logger.With("run_id", res.RunID)

	invs, err := store.FetchInvestigators(ctx)
	if err != nil {
		return res, fmt.Errorf("fetching investigators: %w", err)
	}
	res.Investigators = len(invs)

	rows, failures, err := FanOut(ctx, bridge, invs, logger)
	res.LookupFailures = failures
	if err != nil {
		return res, err
	}
	for _, inv := range invs {
		if inv.DOI != nil {
			res.WithDOI++
		}
	}

	out := match.Reduce(rows, opts.Match)
	res.Rows = out.Rows
	res.Matched = out.Matched()
	logger.Info("ratify reduced rows",
		"investigators", res.Investigators,
		"with_doi", res.WithDOI,
		"rows", res.Rows,
		"matched", res.Matched,
		"lookup_failures", res.LookupFailures,
	)

	if err := store.Persist(ctx, out.Investigators, opts.Mode); err != nil {
		return res, fmt.Errorf("persisting investigators: %w", err)
	}
	return res, nil
}

// FanOut runs the three bridge lookups for invs and joins them into match
// candidate rows. A failed lookup is logged and counted, and the join uses
// whatever it returned; investigators it would have covered come out with no
// candidates. Only a cancelled context is returned as an error.
func FanOut(ctx context.Context, bridge Bridge, invs []types.Investigator, logger *logging.Logger) ([]types.MatchCandidateRow, int, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	failures := 0
	failed := func(what string, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("looking up %s: %w", what, err)
		}
		failures++
		logger.Warn("bridge lookup failed, continuing with partial results", "lookup", what, "error", err)
		return nil
	}

	var dois []string
	for _, inv := range invs {
		if d := types.Deref(inv.DOI); d != "" {
			dois = append(dois, d)
		}
	}

	works, err := bridge.LookupWorksByDOI(ctx, dois)
	if err != nil {
		if err := failed("works", err); err != nil {
			return nil, failures, err
		}
	}
	workIDs := make([]string, 0, len(works))
	for _, w := range works {
		workIDs = append(workIDs, w.WorkID)
	}

	authorships, err := bridge.LookupAuthorships(ctx, workIDs)
	if err != nil {
		if err := failed("authorships", err); err != nil {
			return nil, failures, err
		}
	}
	authorIDs := make([]string, 0, len(authorships))
	for _, a := range authorships {
		authorIDs = append(authorIDs, a.AuthorID)
	}

	details, err := bridge.LookupAuthorDetails(ctx, authorIDs)
	if err != nil {
		if err := failed("authors", err); err != nil {
			return nil, failures, err
		}
	}
	return match.Join(invs, works, authorships, details), failures, nil
}
