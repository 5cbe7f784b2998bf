// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
)

const openAlexBase = "https://openalex.org/"

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// ShortID strips the https://openalex.org/ prefix from an OpenAlex id.
func ShortID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), openAlexBase)
}

// AlexURI returns the canonical author URI for an OpenAlex author id given
// as a full URI, a short id such as A5023888391, or the bare number used by
// the warehouse snapshot. An empty id returns "".
func AlexURI(authorID string) string {
	short := ShortID(authorID)
	if short == "" {
		return ""
	}
	return OpenAlexAuthorPrefix + strings.TrimPrefix(short, "A")
}

// BareDOI lowercases a DOI and strips any resolver or doi: prefix so that
// DOIs written differently compare equal.
func BareDOI(doi string) string {
	d := strings.ToLower(strings.TrimSpace(doi))
	for _, p := range doiPrefixes {
		if strings.HasPrefix(d, p) {
			return strings.TrimPrefix(d, p)
		}
	}
	return d
}
