// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"

	"github.com/juanceresa/BigQuery/pkg/types"
)

// Table is an investigators table in the warehouse.
type Table struct {
	c       *Client
	dataset string
	table   string
}

// Table returns the investigators table dataset.table.
func (c *Client) Table(dataset, table string) *Table {
	return &Table{c: c, dataset: dataset, table: table}
}

// row mirrors the warehouse columns.
type row struct {
	Name        bigquery.NullString `bigquery:"Nombre"`
	Surname1    bigquery.NullString `bigquery:"Apellido_1"`
	Surname2    bigquery.NullString `bigquery:"Apellido_2"`
	FullName    bigquery.NullString `bigquery:"Nombre_apellidos"`
	Institution bigquery.NullString `bigquery:"Trabajo_institucion"`
	GrantYear   bigquery.NullString `bigquery:"Ano_beca"`
	Country     bigquery.NullString `bigquery:"Pais"`
	ID          bigquery.NullString `bigquery:"ID"`
	GS          bigquery.NullString `bigquery:"GS"`
	DOI         bigquery.NullString `bigquery:"doi"`
	AuthorOrder bigquery.NullInt64  `bigquery:"Author_order"`
	AlexID      bigquery.NullString `bigquery:"Alex_id"`
	AuthorID    bigquery.NullString `bigquery:"author_id"`
}

func (r row) investigator() types.Investigator {
	inv := types.Investigator{
		Name:        r.Name.StringVal,
		Surname1:    r.Surname1.StringVal,
		Surname2:    r.Surname2.StringVal,
		FullName:    r.FullName.StringVal,
		Institution: r.Institution.StringVal,
		GrantYear:   r.GrantYear.StringVal,
		Country:     r.Country.StringVal,
		ID:          r.ID.StringVal,
		GS:          r.GS.StringVal,
		DOI:         nullable(r.DOI),
		AlexID:      nullable(r.AlexID),
		AuthorID:    nullable(r.AuthorID),
	}
	if r.AuthorOrder.Valid {
		inv.AuthorOrder = types.IntPtr(int(r.AuthorOrder.Int64))
	}
	return inv
}

func nullable(s bigquery.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.StringVal
	return &v
}

// schema is the load schema. Column names equal the JSON names of
// types.Investigator, so records load as newline-delimited JSON.
var schema = bigquery.Schema{
	{Name: "Nombre", Type: bigquery.StringFieldType},
	{Name: "Apellido_1", Type: bigquery.StringFieldType},
	{Name: "Apellido_2", Type: bigquery.StringFieldType},
	{Name: "Nombre_apellidos", Type: bigquery.StringFieldType},
	{Name: "Trabajo_institucion", Type: bigquery.StringFieldType},
	{Name: "Ano_beca", Type: bigquery.StringFieldType},
	{Name: "Pais", Type: bigquery.StringFieldType},
	{Name: "ID", Type: bigquery.StringFieldType, Required: true},
	{Name: "GS", Type: bigquery.StringFieldType},
	{Name: "doi", Type: bigquery.StringFieldType},
	{Name: "Author_order", Type: bigquery.IntegerFieldType},
	{Name: "Alex_id", Type: bigquery.StringFieldType},
	{Name: "author_id", Type: bigquery.StringFieldType},
}

// FetchInvestigators returns every row of the table ordered by ID.
func (t *Table) FetchInvestigators(ctx context.Context) ([]types.Investigator, error) {
	sql := fmt.Sprintf("SELECT * FROM %s ORDER BY ID", tableRef(t.c.project, t.dataset, t.table))
	var out []types.Investigator
	err := t.c.query(ctx, sql, nil, func(it *bigquery.RowIterator) error {
		var r row
		if err := it.Next(&r); err != nil {
			return err
		}
		out = append(out, r.investigator())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching investigators: %w", err)
	}
	return out, nil
}

// Persist loads investigators into the table. PersistReplace truncates the
// table; PersistUpsert loads into a staging table and merges on ID.
func (t *Table) Persist(ctx context.Context, investigators []types.Investigator, mode types.PersistMode) error {
	switch mode {
	case types.PersistReplace, "":
		return t.load(ctx, t.table, investigators)
	case types.PersistUpsert:
		staging := t.table + "_staging"
		if err := t.load(ctx, staging, investigators); err != nil {
			return err
		}
		return t.c.query(ctx, mergeSQL(
			tableRef(t.c.project, t.dataset, t.table),
			tableRef(t.c.project, t.dataset, staging),
		), nil, func(it *bigquery.RowIterator) error {
			var discard []bigquery.Value
			return it.Next(&discard)
		})
	default:
		return fmt.Errorf("unknown persist mode %q", mode)
	}
}

func (t *Table) load(ctx context.Context, table string, investigators []types.Investigator) error {
	data, err := ndjson(investigators)
	if err != nil {
		return err
	}
	src := bigquery.NewReaderSource(bytes.NewReader(data))
	src.SourceFormat = bigquery.JSON
	src.Schema = schema

	loader := t.c.bq.Dataset(t.dataset).Table(table).LoaderFrom(src)
	loader.WriteDisposition = bigquery.WriteTruncate
	loader.CreateDisposition = bigquery.CreateIfNeeded

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("starting load into %s: %w", table, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for load into %s: %w", table, err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("load into %s failed: %w", table, err)
	}
	t.c.logger.Info("loaded investigators", "table", table, "rows", len(investigators))
	return nil
}

// ndjson encodes investigators one JSON object per line.
func ndjson(investigators []types.Investigator) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, inv := range investigators {
		if err := enc.Encode(inv); err != nil {
			return nil, fmt.Errorf("encoding investigator %s: %w", inv.ID, err)
		}
	}
	return buf.Bytes(), nil
}

// mergeSQL upserts every staging row into target keyed on ID.
func mergeSQL(target, staging string) string {
	var set, cols, vals []string
	for _, f := range schema {
		cols = append(cols, f.Name)
		vals = append(vals, "S."+f.Name)
		if f.Name != "ID" {
			set = append(set, "T."+f.Name+" = S."+f.Name)
		}
	}
	return fmt.Sprintf(`MERGE %s T USING %s S ON T.ID = S.ID
WHEN MATCHED THEN UPDATE SET %s
WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)`,
		target, staging,
		strings.Join(set, ", "), strings.Join(cols, ", "), strings.Join(vals, ", "))
}
