// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich derives per-investigator facts from resolution output:
// a compiled view of gathered candidates and the publication list of a
// matched author.
package enrich

import (
	"sort"

	"github.com/juanceresa/BigQuery/pkg/types"
)

// Status grades how trustworthy the gathered candidates of an investigator
// are.
type Status string

const (
	// StatusVerified means exactly one distinct author was gathered.
	StatusVerified Status = "verified"
	// StatusConsistent means several authors share one primary field.
	StatusConsistent Status = "consistent"
	// StatusReview means several authors with differing fields.
	StatusReview Status = "review"
	// StatusNone means nothing was gathered.
	StatusNone Status = "none"
)

// Compiled aggregates the gathered candidates of one investigator.
type Compiled struct {
	InvestigatorID string   `json:"ID" yaml:"ID"`
	AlexIDs        []string `json:"alex_ids" yaml:"alex_ids"`
	ORCID          string   `json:"orcid,omitempty" yaml:"orcid,omitempty"`
	Fields         []string `json:"fields,omitempty" yaml:"fields,omitempty"`
	WorksCount     int      `json:"works_count" yaml:"works_count"`
	CitedByCount   int      `json:"cited_by_count" yaml:"cited_by_count"`
	Status         Status   `json:"status" yaml:"status"`
}

// Compile returns one Compiled per investigator, in investigator order.
// Alex ids are distinct and sorted; ORCID is the first non-empty one in
// gathering order; counts are summed over distinct authors.
func Compile(investigators []types.Investigator, gathered []types.GatheredCandidate) []Compiled {
	byID := make(map[string][]types.GatheredCandidate)
	for _, g := range gathered {
		byID[g.InvestigatorID] = append(byID[g.InvestigatorID], g)
	}

	out := make([]Compiled, 0, len(investigators))
	for _, inv := range investigators {
		out = append(out, compileOne(inv.ID, byID[inv.ID]))
	}
	return out
}

func compileOne(id string, list []types.GatheredCandidate) Compiled {
	c := Compiled{InvestigatorID: id, Status: StatusNone}
	seen := make(map[string]bool)
	fields := make(map[string]bool)
	for _, g := range list {
		cand := g.Candidate
		alex := types.AlexURI(cand.ID)
		if alex == "" || seen[alex] {
			continue
		}
		seen[alex] = true
		c.AlexIDs = append(c.AlexIDs, alex)
		if c.ORCID == "" {
			c.ORCID = cand.ORCID
		}
		c.WorksCount += cand.WorksCount
		c.CitedByCount += cand.CitedByCount
		if f := cand.PrimaryTopic(); f != "" && !fields[f] {
			fields[f] = true
			c.Fields = append(c.Fields, f)
		}
	}
	sort.Strings(c.AlexIDs)

	switch {
	case len(c.AlexIDs) == 0:
		c.Status = StatusNone
	case len(c.AlexIDs) == 1:
		c.Status = StatusVerified
	case len(c.Fields) == 1 && allHaveField(list):
		c.Status = StatusConsistent
	default:
		c.Status = StatusReview
	}
	return c
}

func allHaveField(list []types.GatheredCandidate) bool {
	for _, g := range list {
		if g.Candidate.PrimaryTopic() == "" {
			return false
		}
	}
	return true
}
