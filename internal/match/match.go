// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match picks one OpenAlex author per investigator from the
// authorship rows of the investigator's known publication, and collapses the
// fanned-out rows back to one record per investigator id.
package match

import (
	"github.com/juanceresa/BigQuery/internal/normalize"
	"github.com/juanceresa/BigQuery/internal/similarity"
	"github.com/juanceresa/BigQuery/pkg/types"
)

// Options controls acceptance and how decisions are written back.
type Options struct {
	// Threshold is the minimum token-set score that accepts a row.
	Threshold int

	// Overwrite replaces existing AuthorOrder, AuthorID and AlexID values
	// with new decisions. Without it only nil fields are filled.
	Overwrite bool
}

// DefaultOptions returns the 90-point acceptance policy without overwrite.
func DefaultOptions() Options {
	return Options{Threshold: similarity.DefaultThreshold}
}

// Result holds the collapsed table and the per-id decisions.
type Result struct {
	Investigators []types.Investigator
	Decisions     []types.MatchDecision
	Rows          int
}

// Matched counts decisions that carry an author.
func (r Result) Matched() int {
	n := 0
	for _, d := range r.Decisions {
		if d.Matched() {
			n++
		}
	}
	return n
}

// Reduce scores, gates, selects, propagates and collapses rows. The output
// holds one investigator per distinct id, in first-appearance order.
func Reduce(rows []types.MatchCandidateRow, opts Options) Result {
	Score(rows)
	Gate(rows, opts.Threshold)
	decisions := Select(rows)
	Propagate(rows, decisions)
	return Result{
		Investigators: Collapse(rows, decisions, opts.Overwrite),
		Decisions:     decisions,
		Rows:          len(rows),
	}
}

// Score sets Score and AliasMatch on every row. The investigator's display
// name and the candidate's names are normalized before comparison. A row
// whose name equals the display name or one of the alternatives is an alias
// match and scores 100 so it outranks any fuzzy row.
func Score(rows []types.MatchCandidateRow) {
	for i := range rows {
		r := &rows[i]
		r.Score, r.AliasMatch = 0, false
		if r.DisplayName == nil {
			continue
		}
		local := normalize.Name(r.Investigator.DisplayName())
		display := normalize.Ptr(r.DisplayName)
		r.Score = similarity.TokenSetRatio(local, display)
		r.AliasMatch = similarity.ExactOrAlternate(local, display, normalize.All(r.Alternatives))
		if r.AliasMatch {
			r.Score = 100
		}
	}
}

// Gate clears the author fields of rows that neither alias-match nor reach
// threshold. Investigator fields and WorkID are left alone.
func Gate(rows []types.MatchCandidateRow, threshold int) {
	for i := range rows {
		r := &rows[i]
		if r.AliasMatch || similarity.Accept(r.Score, threshold) {
			continue
		}
		r.AuthorID = nil
		r.AuthorPosition = nil
		r.DisplayName = nil
		r.Alternatives = nil
	}
}

// Select returns one decision per investigator id, in first-appearance
// order. The decision comes from the highest-scoring row; ties go to the
// earliest row. A gated best row yields a decision with nil author fields.
func Select(rows []types.MatchCandidateRow) []types.MatchDecision {
	index := make(map[string]int)
	var out []types.MatchDecision
	best := make(map[string]int)
	for i, r := range rows {
		id := r.Investigator.ID
		j, ok := index[id]
		if !ok {
			index[id] = len(out)
			out = append(out, types.MatchDecision{InvestigatorID: id})
			best[id] = i
			j = index[id]
		} else if r.Score <= rows[best[id]].Score {
			continue
		}
		best[id] = i
		out[j].Score = r.Score
		out[j].AuthorID = r.AuthorID
		out[j].AuthorOrder = r.AuthorPosition
	}
	return out
}

// Propagate copies each decision onto every row of its investigator, so all
// rows of one id agree before they are collapsed.
func Propagate(rows []types.MatchCandidateRow, decisions []types.MatchDecision) {
	byID := make(map[string]types.MatchDecision, len(decisions))
	for _, d := range decisions {
		byID[d.InvestigatorID] = d
	}
	for i := range rows {
		d := byID[rows[i].Investigator.ID]
		rows[i].AuthorID = d.AuthorID
		rows[i].AuthorPosition = d.AuthorOrder
	}
}

// Collapse reduces rows to one investigator per id, taking the first
// non-empty value of each column across the id's rows, then applies the id's
// decision. A matched decision fills AuthorID, AuthorOrder and AlexID; with
// overwrite it replaces existing values. An unmatched decision never clears
// existing values.
func Collapse(rows []types.MatchCandidateRow, decisions []types.MatchDecision, overwrite bool) []types.Investigator {
	index := make(map[string]int)
	var out []types.Investigator
	for _, r := range rows {
		id := r.Investigator.ID
		if j, ok := index[id]; ok {
			mergeInto(&out[j], r.Investigator)
			continue
		}
		index[id] = len(out)
		out = append(out, r.Investigator)
	}

	for _, d := range decisions {
		j, ok := index[d.InvestigatorID]
		if !ok || !d.Matched() {
			continue
		}
		apply(&out[j], d, overwrite)
	}
	return out
}

func apply(inv *types.Investigator, d types.MatchDecision, overwrite bool) {
	alex := types.StringPtr(types.AlexURI(*d.AuthorID))
	if overwrite || inv.AuthorID == nil {
		inv.AuthorID = d.AuthorID
	}
	if d.AuthorOrder != nil && (overwrite || inv.AuthorOrder == nil) {
		inv.AuthorOrder = d.AuthorOrder
	}
	if alex != nil && (overwrite || inv.AlexID == nil) {
		inv.AlexID = alex
	}
}

// mergeInto fills empty fields of dst from src.
func mergeInto(dst *types.Investigator, src types.Investigator) {
	fill := func(d *string, s string) {
		if *d == "" {
			*d = s
		}
	}
	fill(&dst.Name, src.Name)
	fill(&dst.Surname1, src.Surname1)
	fill(&dst.Surname2, src.Surname2)
	fill(&dst.FullName, src.FullName)
	fill(&dst.Institution, src.Institution)
	fill(&dst.GrantYear, src.GrantYear)
	fill(&dst.Country, src.Country)
	fill(&dst.GS, src.GS)
	if dst.DOI == nil {
		dst.DOI = src.DOI
	}
	if dst.AuthorOrder == nil {
		dst.AuthorOrder = src.AuthorOrder
	}
	if dst.AlexID == nil {
		dst.AlexID = src.AlexID
	}
	if dst.AuthorID == nil {
		dst.AuthorID = src.AuthorID
	}
}
