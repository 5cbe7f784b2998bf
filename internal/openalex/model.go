// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

import (
	"github.com/juanceresa/BigQuery/pkg/types"
)

// OpenAlex API JSON structures.
type listResponse[T any] struct {
	Meta    listMeta `json:"meta"`
	Results []T      `json:"results"`
}

type listMeta struct {
	Count      int     `json:"count"`
	PerPage    int     `json:"per_page"`
	NextCursor *string `json:"next_cursor"`
}

type apiAuthor struct {
	ID                      string            `json:"id"`
	ORCID                   string            `json:"orcid"`
	DisplayName             string            `json:"display_name"`
	DisplayNameAlternatives []string          `json:"display_name_alternatives"`
	WorksCount              int               `json:"works_count"`
	CitedByCount            int               `json:"cited_by_count"`
	SummaryStats            apiSummaryStats   `json:"summary_stats"`
	IDs                     map[string]string `json:"ids"`
	Affiliations            []apiAffiliation  `json:"affiliations"`
	LastKnownInstitutions   []apiInstitution  `json:"last_known_institutions"`
	XConcepts               []apiTag          `json:"x_concepts"`
	Topics                  []apiTag          `json:"topics"`
	WorksAPIURL             string            `json:"works_api_url"`
}

type apiSummaryStats struct {
	TwoYearMeanCitedness float64 `json:"2yr_mean_citedness"`
	HIndex               int     `json:"h_index"`
	I10Index             int     `json:"i10_index"`
}

type apiAffiliation struct {
	Institution apiInstitution `json:"institution"`
	Years       []int          `json:"years"`
}

type apiInstitution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CountryCode string `json:"country_code"`
}

type apiTag struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type apiWork struct {
	ID              string          `json:"id"`
	DOI             string          `json:"doi"`
	Title           string          `json:"title"`
	PublicationYear int             `json:"publication_year"`
	CitedByCount    int             `json:"cited_by_count"`
	Authorships     []apiAuthorship `json:"authorships"`
}

type apiAuthorship struct {
	Author struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

// candidate converts an API author to the shared candidate type. Topic tags
// come from x_concepts when present, otherwise from topics.
func (a apiAuthor) candidate() types.CandidateAuthor {
	c := types.CandidateAuthor{
		ID:           a.ID,
		DisplayName:  a.DisplayName,
		Alternatives: a.DisplayNameAlternatives,
		WorksCount:   a.WorksCount,
		CitedByCount: a.CitedByCount,
		SummaryStats: types.SummaryStats{
			TwoYearMeanCitedness: a.SummaryStats.TwoYearMeanCitedness,
			HIndex:               a.SummaryStats.HIndex,
			I10Index:             a.SummaryStats.I10Index,
		},
		ORCID:       a.ORCID,
		Scopus:      a.IDs["scopus"],
		WorksAPIURL: a.WorksAPIURL,
	}
	if c.ORCID == "" {
		c.ORCID = a.IDs["orcid"]
	}

	seen := make(map[string]bool)
	for _, aff := range a.Affiliations {
		if id := aff.Institution.ID; id != "" && !seen[id] {
			seen[id] = true
			c.AffiliationIDs = append(c.AffiliationIDs, id)
		}
	}
	for _, inst := range a.LastKnownInstitutions {
		if inst.ID != "" && !seen[inst.ID] {
			seen[inst.ID] = true
			c.AffiliationIDs = append(c.AffiliationIDs, inst.ID)
		}
		if c.CountryCode == "" {
			c.CountryCode = inst.CountryCode
		}
	}

	tags := a.XConcepts
	if len(tags) == 0 {
		tags = a.Topics
	}
	for _, t := range tags {
		if t.DisplayName != "" {
			c.Topics = append(c.Topics, t.DisplayName)
		}
	}
	return c
}

func shortIDs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = types.ShortID(id)
	}
	return out
}
