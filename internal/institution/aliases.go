// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package institution

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// defaultAliases maps legacy or misspelled institution strings found in the
// investigators table to the name OpenAlex indexes them under. Keys are
// lowercase.
var defaultAliases = map[string]string{
	"universidad politécnica de catalunya":                                                     "universitat politècnica de catalunya",
	"universidad de alcalá de henares":                                                         "universidad de alcalá",
	"universidad pública de navarra":                                                           "universidad publica de navarra",
	"universidad de navarra en barcelona":                                                      "universidad publica de navarra",
	"universidad pontificia de comillas en santander":                                          "comillas pontifical university",
	"universidad de valencia y tribunal de justicia de la comunidad valenciana":                "Universitat de València",
	"universidad de valencia y consellería de sanitat i consum de la generalitat valenciana":   "Universitat de València",
	"universidad literaria de valencia":                                                        "Universitat de València",
	"universidad de les illes balears":                                                         "Universitat de les Illes Balears",
	"consejo superior de investigaciones cientificas":                                          "Consejo Superior de Investigaciones Científicas",
	"consejo superior de investigaciones científicas idibaps":                                  "Consejo Superior de Investigaciones Científicas",
	"universidad nacional de eduación a distancia":                                             "National University of Distance Education",
	"universidad técnica de dinamarca":                                                         "Technical University of Denmark",
}

// AliasTable maps known institution strings to canonical search names.
// Lookups ignore case and surrounding whitespace.
type AliasTable struct {
	entries map[string]string
}

// DefaultAliases returns the built-in table.
func DefaultAliases() *AliasTable {
	t := &AliasTable{entries: make(map[string]string, len(defaultAliases))}
	for k, v := range defaultAliases {
		t.entries[aliasKey(k)] = v
	}
	return t
}

// LoadAliases returns the built-in table extended with the YAML mapping in
// path. Entries in the file override built-in ones. An empty path returns the
// built-in table.
func LoadAliases(path string) (*AliasTable, error) {
	t := DefaultAliases()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias file: %w", err)
	}
	var extra map[string]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parsing alias file %s: %w", path, err)
	}
	for k, v := range extra {
		if strings.TrimSpace(v) == "" {
			continue
		}
		t.entries[aliasKey(k)] = strings.TrimSpace(v)
	}
	return t, nil
}

// Lookup returns the canonical name for s.
func (t *AliasTable) Lookup(s string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.entries[aliasKey(s)]
	return v, ok
}

// Len returns the number of entries.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func aliasKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
