// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the alexmatch pipeline:
// investigator records read from the record store, candidate author profiles
// returned by OpenAlex, the bridge rows used to ratify known publications,
// and the configuration for every stage.
package types

import "strings"

// OpenAlexAuthorPrefix is the canonical prefix of an OpenAlex author URI.
const OpenAlexAuthorPrefix = "https://openalex.org/A"

// Investigator is one row of the investigators table: a grant recipient or
// scholar to be linked to an OpenAlex author profile. Nullable columns are
// pointers; the engine only ever writes AuthorOrder, AuthorID and AlexID.
// Fields are declared in Columns order.
type Investigator struct {
	// Name is the given name (Nombre).
	Name string `json:"Nombre" yaml:"Nombre"`

	// Surname1 is the first surname (Apellido_1).
	Surname1 string `json:"Apellido_1" yaml:"Apellido_1"`

	// Surname2 is the second surname (Apellido_2).
	Surname2 string `json:"Apellido_2" yaml:"Apellido_2"`

	// FullName is the display form of the whole name (Nombre_apellidos).
	FullName string `json:"Nombre_apellidos" yaml:"Nombre_apellidos"`

	// Institution is the free-text workplace (Trabajo_institucion).
	Institution string `json:"Trabajo_institucion" yaml:"Trabajo_institucion"`

	// GrantYear is the year of the grant (Ano_beca), kept as text.
	GrantYear string `json:"Ano_beca" yaml:"Ano_beca"`

	// Country is the country of the investigator (Pais).
	Country string `json:"Pais" yaml:"Pais"`

	// ID is the stable identity key of the record (FullBright ID).
	ID string `json:"ID" yaml:"ID"`

	// GS is the Google Scholar reference carried through unchanged.
	GS string `json:"GS" yaml:"GS"`

	// DOI is a known publication of the investigator, used by the ratify pass.
	DOI *string `json:"doi" yaml:"doi"`

	// AuthorOrder is the 1-based position of the investigator in the
	// authorship list of DOI.
	AuthorOrder *int `json:"Author_order" yaml:"Author_order"`

	// AlexID is the resolved OpenAlex author URI.
	AlexID *string `json:"Alex_id" yaml:"Alex_id"`

	// AuthorID is the OpenAlex author id found through the authorship bridge.
	AuthorID *string `json:"author_id" yaml:"author_id"`
}

// Columns is the presentation order of the output table.
var Columns = []string{
	"Nombre", "Apellido_1", "Apellido_2", "Nombre_apellidos",
	"Trabajo_institucion", "Ano_beca", "Pais", "ID", "GS", "doi",
	"Author_order", "Alex_id", "author_id",
}

// DisplayName returns FullName, or the given name and surnames joined when
// FullName is blank. Blank parts are skipped.
func (inv Investigator) DisplayName() string {
	if strings.TrimSpace(inv.FullName) != "" {
		return inv.FullName
	}
	name := strings.TrimSpace(inv.Name)
	for _, s := range []string{inv.Surname1, inv.Surname2} {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if name != "" {
			name += " "
		}
		name += s
	}
	return name
}

// HasName reports whether the record carries any identifying name field.
func (inv Investigator) HasName() bool {
	return strings.TrimSpace(inv.DisplayName()) != ""
}

// Surnames returns the non-empty surnames in order.
func (inv Investigator) Surnames() []string {
	var out []string
	for _, s := range []string{inv.Surname1, inv.Surname2} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// PersistMode selects how a record store writes the final table.
type PersistMode string

const (
	// PersistReplace truncates the destination and writes every record.
	PersistReplace PersistMode = "replace"
	// PersistUpsert inserts new ids and updates existing ones.
	PersistUpsert PersistMode = "upsert"
)

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }

// Deref returns the pointed-to string or "".
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
