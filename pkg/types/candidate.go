// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SummaryStats holds the citation indicators OpenAlex reports per author.
type SummaryStats struct {
	TwoYearMeanCitedness float64 `json:"2yr_mean_citedness" yaml:"2yr_mean_citedness"`
	HIndex               int     `json:"h_index" yaml:"h_index"`
	I10Index             int     `json:"i10_index" yaml:"i10_index"`
}

// CandidateAuthor is an external author profile evaluated as a possible
// match for an investigator. It is transient: only the fields of the winning
// candidate are persisted.
type CandidateAuthor struct {
	// ID is the OpenAlex author URI (https://openalex.org/A...).
	ID string `json:"id" yaml:"id"`

	// DisplayName is the profile's preferred name.
	DisplayName string `json:"display_name" yaml:"display_name"`

	// Alternatives lists alternate spellings of the name.
	Alternatives []string `json:"display_name_alternatives,omitempty" yaml:"display_name_alternatives,omitempty"`

	// AffiliationIDs lists the institution URIs the author has been affiliated with.
	AffiliationIDs []string `json:"affiliation_ids,omitempty" yaml:"affiliation_ids,omitempty"`

	// CountryCode is the ISO country of the last known institution.
	CountryCode string `json:"country_code,omitempty" yaml:"country_code,omitempty"`

	// Topics lists research-field tags in provider order; the first is primary.
	Topics []string `json:"topics,omitempty" yaml:"topics,omitempty"`

	WorksCount   int          `json:"works_count" yaml:"works_count"`
	CitedByCount int          `json:"cited_by_count" yaml:"cited_by_count"`
	SummaryStats SummaryStats `json:"summary_stats" yaml:"summary_stats"`

	// ORCID and Scopus are cross identifiers when OpenAlex knows them.
	ORCID  string `json:"orcid,omitempty" yaml:"orcid,omitempty"`
	Scopus string `json:"scopus,omitempty" yaml:"scopus,omitempty"`

	// WorksAPIURL is the OpenAlex works listing for this author.
	WorksAPIURL string `json:"works_api_url,omitempty" yaml:"works_api_url,omitempty"`
}

// PrimaryTopic returns the first topic tag or "".
func (c CandidateAuthor) PrimaryTopic() string {
	if len(c.Topics) == 0 {
		return ""
	}
	return c.Topics[0]
}

// InstitutionRef is an external institution identifier resolved from a
// free-text institution string.
type InstitutionRef struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	CountryCode string `json:"country_code,omitempty" yaml:"country_code,omitempty"`
}

// WorkRef links a DOI to an OpenAlex work id.
type WorkRef struct {
	DOI    string `json:"doi" yaml:"doi"`
	WorkID string `json:"work_id" yaml:"work_id"`
}

// Authorship is one entry of a work's author list. Position is 1-based and
// nil when the source does not record it.
type Authorship struct {
	WorkID   string `json:"work_id" yaml:"work_id"`
	Position *int   `json:"author_position" yaml:"author_position"`
	AuthorID string `json:"author_id" yaml:"author_id"`
}

// AuthorDetail holds the names of an author used to ratify an authorship.
type AuthorDetail struct {
	AuthorID     string   `json:"author_id" yaml:"author_id"`
	DisplayName  string   `json:"display_name" yaml:"display_name"`
	Alternatives []string `json:"display_name_alternatives,omitempty" yaml:"display_name_alternatives,omitempty"`
}

// Work is a publication listed for an author by the works fill stage.
type Work struct {
	ID              string `json:"id" yaml:"id"`
	Title           string `json:"title" yaml:"title"`
	DOI             string `json:"doi,omitempty" yaml:"doi,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty" yaml:"publication_year,omitempty"`
	CitedByCount    int    `json:"cited_by_count" yaml:"cited_by_count"`
}
