// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize canonicalizes personal and institution names into a form
// that compares equal across case, punctuation, hyphen variants and
// diacritics.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// hyphens lists the dash-like glyphs that separate name parts.
var hyphens = strings.NewReplacer(
	"-", " ",
	"\u2010", " ", // hyphen
	"\u2011", " ", // non-breaking hyphen
	"\u2012", " ", // figure dash
	"\u2013", " ", // en dash
	"\u2014", " ", // em dash
	"\u2015", " ", // horizontal bar
	"\u2212", " ", // minus sign
	"\u204e", " ", // low asterisk, seen in source data in place of a hyphen
	"\ufe58", " ",
	"\ufe63", " ",
	"\uff0d", " ",
)

// stripMarks decomposes compatibility characters and drops combining marks.
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Name returns the canonical form of raw: trimmed, lowercased, hyphen
// variants replaced by a space, punctuation removed and diacritics folded to
// their base letters. Runs of whitespace are preserved.
func Name(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = hyphens.Replace(s)
	s = stripPunct(s)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	// Decomposition can expose new punctuation or uppercase forms
	// (e.g. "ℌ" -> "H"), so fold once more.
	s = stripPunct(strings.ToLower(s))
	return strings.TrimSpace(s)
}

// Ptr normalizes *raw, treating nil as the empty string.
func Ptr(raw *string) string {
	if raw == nil {
		return ""
	}
	return Name(*raw)
}

// All normalizes every element of names, dropping those that normalize to "".
func All(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if v := Name(n); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Tokens splits a normalized name into its words.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

// stripPunct keeps letters, digits, combining marks and whitespace.
func stripPunct(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r), unicode.Is(unicode.Mn, r):
			return r
		default:
			return -1
		}
	}, s)
}
