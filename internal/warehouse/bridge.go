// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package warehouse

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/juanceresa/BigQuery/pkg/types"
)

// Snapshot answers bridge lookups against an OpenAlex snapshot dataset with
// works, works_authorships, authors and authors_display_name_alternatives
// tables.
type Snapshot struct {
	c       *Client
	dataset string
}

// Snapshot returns the snapshot in dataset, which may be qualified with
// its own project.
func (c *Client) Snapshot(dataset string) *Snapshot {
	return &Snapshot{c: c, dataset: dataset}
}

func (s *Snapshot) table(name string) string {
	return tableRef(s.c.project, s.dataset, name)
}

// doiVariants returns every spelling a snapshot might store for dois,
// bare and as a doi.org URL, keyed back to the caller's spelling.
func doiVariants(dois []string) ([]string, map[string]string) {
	byBare := make(map[string]string)
	var variants []string
	for _, d := range dois {
		b := types.BareDOI(d)
		if b == "" {
			continue
		}
		if _, ok := byBare[b]; ok {
			continue
		}
		byBare[b] = d
		variants = append(variants, b, "https://doi.org/"+b)
	}
	return variants, byBare
}

// LookupWorksByDOI maps DOIs to work ids.
func (s *Snapshot) LookupWorksByDOI(ctx context.Context, dois []string) ([]types.WorkRef, error) {
	variants, byBare := doiVariants(dois)
	if len(variants) == 0 {
		return nil, nil
	}
	sql := fmt.Sprintf(`SELECT w.id AS work_id, w.doi AS doi
FROM %s w
WHERE LOWER(w.doi) IN UNNEST(@dois)`, s.table("works"))

	var out []types.WorkRef
	err := s.c.query(ctx, sql, []bigquery.QueryParameter{{Name: "dois", Value: variants}},
		func(it *bigquery.RowIterator) error {
			var r struct {
				WorkID int64  `bigquery:"work_id"`
				DOI    string `bigquery:"doi"`
			}
			if err := it.Next(&r); err != nil {
				return err
			}
			if orig, ok := byBare[types.BareDOI(r.DOI)]; ok {
				out = append(out, types.WorkRef{DOI: orig, WorkID: workURI(r.WorkID)})
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("querying works: %w", err)
	}
	return out, nil
}

// LookupAuthorships returns the authorship rows of works.
func (s *Snapshot) LookupAuthorships(ctx context.Context, workIDs []string) ([]types.Authorship, error) {
	ids := numericIDs(workIDs)
	if len(ids) == 0 {
		return nil, nil
	}
	sql := fmt.Sprintf(`SELECT wa.work_id, wa.author_position, wa.author_id
FROM %s wa
WHERE wa.work_id IN UNNEST(@work_ids)
ORDER BY wa.work_id, wa.author_position`, s.table("works_authorships"))

	var out []types.Authorship
	err := s.c.query(ctx, sql, []bigquery.QueryParameter{{Name: "work_ids", Value: ids}},
		func(it *bigquery.RowIterator) error {
			var r struct {
				WorkID   int64              `bigquery:"work_id"`
				Position bigquery.NullInt64 `bigquery:"author_position"`
				AuthorID bigquery.NullInt64 `bigquery:"author_id"`
			}
			if err := it.Next(&r); err != nil {
				return err
			}
			if a, ok := authorship(r.WorkID, r.Position, r.AuthorID); ok {
				out = append(out, a)
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("querying works_authorships: %w", err)
	}
	return out, nil
}

// authorship converts a works_authorships row. Rows without an author are
// dropped; a NULL position stays unknown.
func authorship(workID int64, position, authorID bigquery.NullInt64) (types.Authorship, bool) {
	if !authorID.Valid {
		return types.Authorship{}, false
	}
	a := types.Authorship{WorkID: workURI(workID), AuthorID: authorURI(authorID.Int64)}
	if position.Valid {
		a.Position = types.IntPtr(int(position.Int64))
	}
	return a, true
}

// LookupAuthorDetails returns display names and alternative names.
func (s *Snapshot) LookupAuthorDetails(ctx context.Context, authorIDs []string) ([]types.AuthorDetail, error) {
	ids := numericIDs(authorIDs)
	if len(ids) == 0 {
		return nil, nil
	}
	sql := fmt.Sprintf(`SELECT a.id AS author_id, a.display_name,
  ARRAY(SELECT dna.display_name_alternative FROM %s dna WHERE dna.author_id = a.id) AS alternatives
FROM %s a
WHERE a.id IN UNNEST(@author_ids)`, s.table("authors_display_name_alternatives"), s.table("authors"))

	var out []types.AuthorDetail
	err := s.c.query(ctx, sql, []bigquery.QueryParameter{{Name: "author_ids", Value: ids}},
		func(it *bigquery.RowIterator) error {
			var r struct {
				AuthorID     int64               `bigquery:"author_id"`
				DisplayName  bigquery.NullString `bigquery:"display_name"`
				Alternatives []string            `bigquery:"alternatives"`
			}
			if err := it.Next(&r); err != nil {
				return err
			}
			out = append(out, types.AuthorDetail{
				AuthorID:     authorURI(r.AuthorID),
				DisplayName:  r.DisplayName.StringVal,
				Alternatives: r.Alternatives,
			})
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("querying authors: %w", err)
	}
	return out, nil
}
