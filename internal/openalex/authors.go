// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/juanceresa/BigQuery/pkg/types"
)

// SearchAuthors returns up to PerPage author profiles matching query, in
// OpenAlex relevance order. A blank query returns nil without a request.
func (c *Client) SearchAuthors(ctx context.Context, query string) ([]types.CandidateAuthor, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	params := url.Values{
		"search":   {query},
		"per_page": {fmt.Sprintf("%d", c.PerPage)},
	}
	var resp listResponse[apiAuthor]
	if err := c.get(ctx, "/authors", params, true, &resp); err != nil {
		return nil, err
	}
	out := make([]types.CandidateAuthor, 0, len(resp.Results))
	for _, a := range resp.Results {
		out = append(out, a.candidate())
	}
	return out, nil
}

// GetAuthor returns the full profile of one author.
func (c *Client) GetAuthor(ctx context.Context, id string) (types.CandidateAuthor, error) {
	short := types.ShortID(id)
	if short == "" {
		return types.CandidateAuthor{}, fmt.Errorf("empty author id")
	}
	var a apiAuthor
	if err := c.get(ctx, "/authors/"+short, url.Values{}, true, &a); err != nil {
		return types.CandidateAuthor{}, err
	}
	return a.candidate(), nil
}

// LookupAuthorDetails returns display names and alternatives for ids.
// Authors unknown to OpenAlex, or in a batch that failed after retries, are
// absent from the result.
func (c *Client) LookupAuthorDetails(ctx context.Context, ids []string) ([]types.AuthorDetail, error) {
	var out []types.AuthorDetail
	for _, short := range batches(unique(shortIDs(ids)), filterBatch) {
		params := url.Values{
			"filter":   {"openalex_id:" + strings.Join(short, "|")},
			"select":   {"id,display_name,display_name_alternatives"},
			"per_page": {fmt.Sprintf("%d", filterBatch)},
		}
		var resp listResponse[apiAuthor]
		if err := c.get(ctx, "/authors", params, true, &resp); err != nil {
			if err := c.skipBatch(ctx, "authors", len(short), err); err != nil {
				return out, err
			}
			continue
		}
		for _, a := range resp.Results {
			out = append(out, types.AuthorDetail{
				AuthorID:     a.ID,
				DisplayName:  a.DisplayName,
				Alternatives: a.DisplayNameAlternatives,
			})
		}
	}
	return out, nil
}
