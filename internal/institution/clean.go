// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package institution

import (
	"regexp"
	"strings"
)

// qualifier matches, leftmost first, a parenthetical, or everything after a
// comma, a slash or a dash.
var qualifier = regexp.MustCompile(`\s*(\(.*?\)|,.*|/.*|-.*)`)

// Clean strips qualifiers from an institution string: parenthetical
// suffixes, then everything after the first comma, slash or dash. The result
// is trimmed; case is preserved.
func Clean(s string) string {
	return strings.TrimSpace(qualifier.ReplaceAllString(s, ""))
}

// Canonical returns the string an institution is searched and cached under.
// The alias table is consulted on the raw string first and on the cleaned
// string second; the winner is cleaned and lowercased so that spellings
// differing only in case share one cache entry.
func Canonical(raw string, aliases *AliasTable) string {
	if v, ok := aliases.Lookup(raw); ok {
		return strings.ToLower(Clean(v))
	}
	cleaned := Clean(raw)
	if v, ok := aliases.Lookup(cleaned); ok {
		return strings.ToLower(Clean(v))
	}
	return strings.ToLower(cleaned)
}
