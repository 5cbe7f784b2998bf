// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/juanceresa/BigQuery/pkg/types"
)

// worksPageSize is the largest page OpenAlex serves.
const worksPageSize = 200

// LookupWorksByDOI maps DOIs to OpenAlex work ids. The returned WorkRef.DOI
// is the caller's spelling so it joins back to the input. DOIs OpenAlex does
// not know are absent from the result, as are DOIs of a batch whose request
// failed after retries.
func (c *Client) LookupWorksByDOI(ctx context.Context, dois []string) ([]types.WorkRef, error) {
	byBare := make(map[string]string)
	var bare []string
	for _, d := range dois {
		b := types.BareDOI(d)
		if b == "" {
			continue
		}
		if _, ok := byBare[b]; !ok {
			byBare[b] = d
			bare = append(bare, b)
		}
	}

	var out []types.WorkRef
	for _, batch := range batches(bare, filterBatch) {
		params := url.Values{
			"filter":   {"doi:" + strings.Join(batch, "|")},
			"select":   {"id,doi"},
			"per_page": {fmt.Sprintf("%d", filterBatch)},
		}
		var resp listResponse[apiWork]
		if err := c.get(ctx, "/works", params, true, &resp); err != nil {
			if err := c.skipBatch(ctx, "works", len(batch), err); err != nil {
				return out, err
			}
			continue
		}
		for _, w := range resp.Results {
			if orig, ok := byBare[types.BareDOI(w.DOI)]; ok {
				out = append(out, types.WorkRef{DOI: orig, WorkID: w.ID})
			}
		}
	}
	return out, nil
}

// LookupAuthorships returns the author list of each work with 1-based
// positions. Authorships without an author id are skipped but still count
// towards the position of later authors. A batch that fails after retries is
// logged and left out.
func (c *Client) LookupAuthorships(ctx context.Context, workIDs []string) ([]types.Authorship, error) {
	var out []types.Authorship
	for _, short := range batches(unique(shortIDs(workIDs)), filterBatch) {
		params := url.Values{
			"filter":   {"openalex_id:" + strings.Join(short, "|")},
			"select":   {"id,authorships"},
			"per_page": {fmt.Sprintf("%d", filterBatch)},
		}
		var resp listResponse[apiWork]
		if err := c.get(ctx, "/works", params, true, &resp); err != nil {
			if err := c.skipBatch(ctx, "works", len(short), err); err != nil {
				return out, err
			}
			continue
		}
		for _, w := range resp.Results {
			for i, a := range w.Authorships {
				if a.Author.ID == "" {
					continue
				}
				out = append(out, types.Authorship{WorkID: w.ID, Position: types.IntPtr(i + 1), AuthorID: a.Author.ID})
			}
		}
	}
	return out, nil
}

// AuthorWorks returns every work of an author, following cursor pagination.
func (c *Client) AuthorWorks(ctx context.Context, authorID string) ([]types.Work, error) {
	short := types.ShortID(authorID)
	if short == "" {
		return nil, nil
	}
	var out []types.Work
	cursor := "*"
	for cursor != "" {
		params := url.Values{
			"filter":   {"author.id:" + short},
			"select":   {"id,doi,title,publication_year,cited_by_count"},
			"per_page": {fmt.Sprintf("%d", worksPageSize)},
			"cursor":   {cursor},
		}
		// Cursors are session-bound, so pages are never cached.
		var resp listResponse[apiWork]
		if err := c.get(ctx, "/works", params, false, &resp); err != nil {
			return out, err
		}
		for _, w := range resp.Results {
			out = append(out, types.Work{
				ID:              w.ID,
				Title:           w.Title,
				DOI:             strings.TrimPrefix(w.DOI, "https://doi.org/"),
				PublicationYear: w.PublicationYear,
				CitedByCount:    w.CitedByCount,
			})
		}
		if len(resp.Results) == 0 || resp.Meta.NextCursor == nil {
			break
		}
		cursor = *resp.Meta.NextCursor
	}
	return out, nil
}
