// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"sort"

	"github.com/juanceresa/BigQuery/pkg/types"
)

// Join fans each investigator out over the authorship list of its known
// publication. Investigators without a DOI, whose DOI is unknown, or whose
// work has no authorships appear exactly once with nil author fields, so
// every input id is present in the output. Rows keep investigator order,
// then work order, then author position with unknown positions last.
func Join(investigators []types.Investigator, works []types.WorkRef, authorships []types.Authorship, details []types.AuthorDetail) []types.MatchCandidateRow {
	worksByDOI := make(map[string][]string)
	for _, w := range works {
		key := types.BareDOI(w.DOI)
		worksByDOI[key] = appendUnique(worksByDOI[key], w.WorkID)
	}

	byWork := make(map[string][]types.Authorship)
	for _, a := range authorships {
		key := types.ShortID(a.WorkID)
		byWork[key] = append(byWork[key], a)
	}
	for _, list := range byWork {
		sort.SliceStable(list, func(i, j int) bool { return positionLess(list[i].Position, list[j].Position) })
	}

	byAuthor := make(map[string]types.AuthorDetail, len(details))
	for _, d := range details {
		byAuthor[types.ShortID(d.AuthorID)] = d
	}

	var rows []types.MatchCandidateRow
	for _, inv := range investigators {
		workIDs := worksByDOI[types.BareDOI(types.Deref(inv.DOI))]
		if inv.DOI == nil || len(workIDs) == 0 {
			rows = append(rows, types.MatchCandidateRow{Investigator: inv})
			continue
		}
		for _, workID := range workIDs {
			list := byWork[types.ShortID(workID)]
			if len(list) == 0 {
				rows = append(rows, types.MatchCandidateRow{Investigator: inv, WorkID: types.StringPtr(workID)})
				continue
			}
			for _, a := range list {
				row := types.MatchCandidateRow{
					Investigator:   inv,
					WorkID:         types.StringPtr(workID),
					AuthorPosition: copyInt(a.Position),
					AuthorID:       types.StringPtr(a.AuthorID),
				}
				if d, ok := byAuthor[types.ShortID(a.AuthorID)]; ok {
					row.DisplayName = types.StringPtr(d.DisplayName)
					row.Alternatives = d.Alternatives
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// positionLess orders known positions ascending and unknown ones last.
func positionLess(a, b *int) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a < *b
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	return types.IntPtr(*p)
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
