// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Classification is the outcome of evaluating one candidate for one
// investigator. Unseen is the initial state; the other four are terminal.
type Classification int

const (
	Unseen Classification = iota
	ExactMatched
	InstitutionMatched
	TopicMatched
	Rejected
)

// String returns the classification name used in logs and storage.
func (c Classification) String() string {
	switch c {
	case Unseen:
		return "unseen"
	case ExactMatched:
		return "exact"
	case InstitutionMatched:
		return "institution"
	case TopicMatched:
		return "topic"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// ParseClassification is the inverse of String. Unknown names map to Unseen.
func ParseClassification(s string) Classification {
	for c := Unseen; c <= Rejected; c++ {
		if c.String() == s {
			return c
		}
	}
	return Unseen
}

// MarshalText encodes the classification by name.
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a classification name.
func (c *Classification) UnmarshalText(b []byte) error {
	*c = ParseClassification(string(b))
	return nil
}

// Accepted reports whether the classification records the candidate.
func (c Classification) Accepted() bool {
	return c == ExactMatched || c == InstitutionMatched || c == TopicMatched
}

// GatheredCandidate is a candidate accepted for an investigator by the
// resolution engine, together with the rule that accepted it.
type GatheredCandidate struct {
	InvestigatorID string          `json:"investigator_id" yaml:"investigator_id"`
	Query          string          `json:"query" yaml:"query"`
	Class          Classification  `json:"classification" yaml:"classification"`
	Candidate      CandidateAuthor `json:"candidate" yaml:"candidate"`
}

// MatchCandidateRow is the fan-out join of one investigator with at most one
// authorship bridge row. Investigators without a bridge row appear once with
// nil author fields.
type MatchCandidateRow struct {
	Investigator Investigator

	// Score is the token-set similarity between the investigator's name and
	// DisplayName, in [0,100].
	Score int

	// AliasMatch is set when the normalized name equals the display name or
	// one of the alternatives; it accepts the row regardless of Score.
	AliasMatch bool

	WorkID         *string
	AuthorPosition *int
	AuthorID       *string
	DisplayName    *string
	Alternatives   []string
}

// MatchDecision is the single selected (author id, author order) pair for an
// investigator id. Both fields are nil when no row cleared the acceptance
// policy.
type MatchDecision struct {
	InvestigatorID string
	AuthorID       *string
	AuthorOrder    *int
	Score          int
}

// Matched reports whether the decision carries an author.
func (d MatchDecision) Matched() bool {
	return d.AuthorID != nil
}
