// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"sort"
	"strings"

	"github.com/juanceresa/BigQuery/internal/logging"
	"github.com/juanceresa/BigQuery/pkg/types"
)

// AuthorSearcher searches author profiles by free-text name.
type AuthorSearcher interface {
	SearchAuthors(ctx context.Context, query string) ([]types.CandidateAuthor, error)
}

// Retriever fetches candidate authors for a name query.
type Retriever struct {
	searcher AuthorSearcher
	logger   *logging.Logger
}

// NewRetriever returns a Retriever backed by searcher.
func NewRetriever(searcher AuthorSearcher, logger *logging.Logger) *Retriever {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Retriever{searcher: searcher, logger: logger}
}

// Fetch returns the candidates for query. Candidates affiliated with
// institutionID come first, then those in country, then the rest, each
// group in provider order. A search failure is logged and yields no
// candidates.
func (r *Retriever) Fetch(ctx context.Context, query, institutionID, country string) []types.CandidateAuthor {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	found, err := r.searcher.SearchAuthors(ctx, query)
	if err != nil {
		r.logger.Warn("author search failed", "query", query, "error", err)
		return nil
	}
	if len(found) == 0 {
		r.logger.Debug("no author candidates", "query", query)
		return nil
	}

	inst := types.ShortID(institutionID)
	rank := func(c types.CandidateAuthor) int {
		if inst != "" {
			for _, id := range c.AffiliationIDs {
				if types.ShortID(id) == inst {
					return 0
				}
			}
		}
		if country != "" && strings.EqualFold(c.CountryCode, country) {
			return 1
		}
		return 2
	}
	sort.SliceStable(found, func(i, j int) bool { return rank(found[i]) < rank(found[j]) })
	return found
}
