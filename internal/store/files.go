// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/juanceresa/BigQuery/pkg/types"
)

// Format is a table file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported file type %q (want .csv, .yaml or .json)", filepath.Ext(path))
	}
}

// ReadFile reads an investigators table from path.
func ReadFile(path string) ([]types.Investigator, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, format)
}

// Read decodes an investigators table. Rows without an ID are rejected.
func Read(r io.Reader, format Format) ([]types.Investigator, error) {
	var (
		invs []types.Investigator
		err  error
	)
	switch format {
	case FormatCSV:
		invs, err = readCSV(r)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&invs)
		if err == io.EOF {
			err = nil
		}
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&invs)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", format, err)
	}
	for i, inv := range invs {
		if strings.TrimSpace(inv.ID) == "" {
			return nil, fmt.Errorf("row %d: missing ID", i+1)
		}
	}
	return invs, nil
}

// readCSV maps header names to columns case-insensitively. Unknown columns
// are ignored; empty cells of nullable columns become nil.
func readCSV(r io.Reader) ([]types.Investigator, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	colIdx := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		colIdx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}
	if _, ok := colIdx["id"]; !ok {
		return nil, fmt.Errorf("missing required column %q", "ID")
	}

	get := func(row []string, col string) string {
		i, ok := colIdx[strings.ToLower(col)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]types.Investigator, 0, len(records)-1)
	for n, row := range records[1:] {
		inv := types.Investigator{
			Name:        get(row, "Nombre"),
			Surname1:    get(row, "Apellido_1"),
			Surname2:    get(row, "Apellido_2"),
			FullName:    get(row, "Nombre_apellidos"),
			Institution: get(row, "Trabajo_institucion"),
			GrantYear:   get(row, "Ano_beca"),
			Country:     get(row, "Pais"),
			ID:          get(row, "ID"),
			GS:          get(row, "GS"),
			DOI:         types.StringPtr(get(row, "doi")),
			AlexID:      types.StringPtr(get(row, "Alex_id")),
			AuthorID:    types.StringPtr(get(row, "author_id")),
		}
		if v := get(row, "Author_order"); v != "" {
			order, err := strconv.Atoi(strings.TrimSuffix(v, ".0"))
			if err != nil {
				return nil, fmt.Errorf("row %d: Author_order %q: %w", n+2, v, err)
			}
			inv.AuthorOrder = types.IntPtr(order)
		}
		out = append(out, inv)
	}
	return out, nil
}

// WriteFile writes investigators to path in the format of its extension.
func WriteFile(path string, investigators []types.Investigator) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, format, investigators); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes investigators with columns in presentation order.
func Write(w io.Writer, format Format, investigators []types.Investigator) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, investigators)
	case FormatYAML, FormatJSON:
		return Encode(w, format, investigators)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Encode writes any value as YAML or JSON.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func writeCSV(w io.Writer, investigators []types.Investigator) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.Columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, inv := range investigators {
		order := ""
		if inv.AuthorOrder != nil {
			order = strconv.Itoa(*inv.AuthorOrder)
		}
		record := []string{
			inv.Name, inv.Surname1, inv.Surname2, inv.FullName,
			inv.Institution, inv.GrantYear, inv.Country, inv.ID, inv.GS,
			types.Deref(inv.DOI), order, types.Deref(inv.AlexID), types.Deref(inv.AuthorID),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %s: %w", inv.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
