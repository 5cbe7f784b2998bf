// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package warehouse reads and writes the investigators table in BigQuery and
// answers bridge lookups against an OpenAlex snapshot dataset.
package warehouse

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/juanceresa/BigQuery/internal/logging"
	"github.com/juanceresa/BigQuery/pkg/types"
)

// Client wraps a BigQuery client for one project.
type Client struct {
	bq      *bigquery.Client
	project string
	logger  *logging.Logger
}

// Open connects to BigQuery in project using application default
// credentials unless opts say otherwise.
func Open(ctx context.Context, project string, logger *logging.Logger, opts ...option.ClientOption) (*Client, error) {
	if project == "" {
		return nil, fmt.Errorf("bigquery project is not set")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	bq, err := bigquery.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}
	return &Client{bq: bq, project: project, logger: logger}, nil
}

// Close releases the client.
func (c *Client) Close() error {
	return c.bq.Close()
}

// query runs sql with params and calls next for every row.
func (c *Client) query(ctx context.Context, sql string, params []bigquery.QueryParameter, next func(it *bigquery.RowIterator) error) error {
	q := c.bq.Query(sql)
	q.Parameters = params
	it, err := q.Read(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	for {
		err := next(it)
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading rows: %w", err)
		}
	}
}

// tableRef quotes a fully qualified table name for standard SQL.
func tableRef(project, dataset, table string) string {
	parts := []string{dataset, table}
	if project != "" && !strings.Contains(dataset, ".") {
		parts = append([]string{project}, parts...)
	}
	return "`" + strings.Join(parts, ".") + "`"
}

const (
	authorURIPrefix = "https://openalex.org/A"
	workURIPrefix   = "https://openalex.org/W"
)

// numericIDs converts OpenAlex ids in any spelling to the integer keys used
// by the snapshot tables. Ids that do not parse are dropped; duplicates are
// removed.
func numericIDs(ids []string) []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, id := range ids {
		s := types.ShortID(id)
		if s != "" && (s[0] == 'A' || s[0] == 'W' || s[0] == 'I') {
			s = s[1:]
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func authorURI(n int64) string { return authorURIPrefix + strconv.FormatInt(n, 10) }
func workURI(n int64) string   { return workURIPrefix + strconv.FormatInt(n, 10) }
