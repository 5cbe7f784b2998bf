// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the two resolution passes over a record store: the
// name search pass, which gathers candidates through the resolution engine,
// and the DOI ratify pass, which confirms authors through the authorship
// list of each investigator's known publication.
package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/juanceresa/BigQuery/pkg/types"
)

// RecordStore reads and writes the investigators table.
type RecordStore interface {
	FetchInvestigators(ctx context.Context) ([]types.Investigator, error)
	Persist(ctx context.Context, investigators []types.Investigator, mode types.PersistMode) error
}

// CandidateSink stores gathered candidates under a run id.
type CandidateSink interface {
	SaveCandidates(ctx context.Context, runID string, candidates []types.GatheredCandidate) error
}

// Bridge resolves DOIs to authorship lists. Every method accepts empty
// input and then returns empty output without any lookup.
type Bridge interface {
	LookupWorksByDOI(ctx context.Context, dois []string) ([]types.WorkRef, error)
	LookupAuthorships(ctx context.Context, workIDs []string) ([]types.Authorship, error)
	LookupAuthorDetails(ctx context.Context, authorIDs []string) ([]types.AuthorDetail, error)
}

// NewRunID returns a fresh identifier for one pass.
func NewRunID() string {
	return uuid.NewString()
}
