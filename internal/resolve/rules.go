// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"github.com/juanceresa/BigQuery/internal/normalize"
	"github.com/juanceresa/BigQuery/internal/similarity"
	"github.com/juanceresa/BigQuery/pkg/types"
)

// Evidence is what the rules know about the investigator when a candidate
// is evaluated.
type Evidence struct {
	// Name is the investigator's normalized display name.
	Name string

	// InstitutionID is the resolved OpenAlex institution id, or "".
	InstitutionID string

	// Gathered holds the candidates already accepted for the investigator.
	Gathered []types.GatheredCandidate
}

// Rule accepts a candidate into one classification.
type Rule interface {
	Class() types.Classification
	Apply(c types.CandidateAuthor, ev Evidence) bool
}

// DefaultRules returns the rules in priority order.
func DefaultRules() []Rule {
	return []Rule{ExactRule{}, InstitutionRule{}, TopicRule{}}
}

// ExactRule fires when the investigator's name equals the candidate's
// display name or one of its alternatives, after normalization.
type ExactRule struct{}

func (ExactRule) Class() types.Classification { return types.ExactMatched }

func (ExactRule) Apply(c types.CandidateAuthor, ev Evidence) bool {
	return similarity.ExactOrAlternate(ev.Name, normalize.Name(c.DisplayName), normalize.All(c.Alternatives))
}

// InstitutionRule fires when the candidate's affiliations contain the
// investigator's resolved institution.
type InstitutionRule struct{}

func (InstitutionRule) Class() types.Classification { return types.InstitutionMatched }

func (InstitutionRule) Apply(c types.CandidateAuthor, ev Evidence) bool {
	want := types.ShortID(ev.InstitutionID)
	if want == "" {
		return false
	}
	for _, id := range c.AffiliationIDs {
		if types.ShortID(id) == want {
			return true
		}
	}
	return false
}

// TopicRule fires when the investigator already has a gathered candidate
// and the new candidate shares a topic tag with any of them. It only pulls
// in further profiles of a person already found.
type TopicRule struct{}

func (TopicRule) Class() types.Classification { return types.TopicMatched }

func (TopicRule) Apply(c types.CandidateAuthor, ev Evidence) bool {
	if len(ev.Gathered) == 0 || len(c.Topics) == 0 {
		return false
	}
	known := make(map[string]bool)
	for _, g := range ev.Gathered {
		for _, t := range g.Candidate.Topics {
			known[t] = true
		}
	}
	for _, t := range c.Topics {
		if known[t] {
			return true
		}
	}
	return false
}

// Classify returns the class of the first rule that fires, or Rejected.
func Classify(rules []Rule, c types.CandidateAuthor, ev Evidence) types.Classification {
	for _, r := range rules {
		if r.Apply(c, ev) {
			return r.Class()
		}
	}
	return types.Rejected
}
