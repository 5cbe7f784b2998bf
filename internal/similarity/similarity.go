// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity scores how alike two personal names are. Scores are
// integers in [0,100] computed with the token-set ratio used by fuzzywuzzy,
// so thresholds tuned against that library carry over unchanged.
package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/juanceresa/BigQuery/internal/normalize"
)

// DefaultThreshold is the minimum score accepted as a match.
const DefaultThreshold = 90

// Accept reports whether score clears threshold.
func Accept(score, threshold int) bool {
	return score >= threshold
}

// Ratio returns the normalized InDel similarity of a and b:
// 2*LCS / (len(a)+len(b)), scaled to 100 and rounded half to even.
// Two empty strings score 100.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	lcs := lcsLength(ra, rb)
	return int(math.RoundToEven(100 * (float64(2*lcs) / float64(total))))
}

// TokenSetRatio compares the word sets of a and b. Shared words are sorted
// and joined into a common prefix; each side's remaining words are appended
// to it; the best pairwise Ratio among prefix and the two extended strings is
// returned. Extra tokens on one side (a middle name, a second surname) cost
// little. Either side empty after processing scores 0.
func TokenSetRatio(a, b string) int {
	pa, pb := process(a), process(b)
	if pa == "" || pb == "" {
		return 0
	}

	ta, tb := tokenSet(pa), tokenSet(pb)

	var inter, onlyA, onlyB []string
	for t := range ta {
		if _, ok := tb[t]; ok {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sect := strings.Join(inter, " ")
	combinedA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	best := Ratio(sect, combinedA)
	if r := Ratio(sect, combinedB); r > best {
		best = r
	}
	if r := Ratio(combinedA, combinedB); r > best {
		best = r
	}
	return best
}

// ExactOrAlternate reports whether local equals display or any of
// alternatives. All arguments must already be normalized; empty local never
// matches.
func ExactOrAlternate(local, display string, alternatives []string) bool {
	if local == "" {
		return false
	}
	if local == display {
		return true
	}
	for _, alt := range alternatives {
		if local == alt {
			return true
		}
	}
	return false
}

// process lowercases s, turns every non letter/digit into a space and trims.
func process(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.TrimSpace(s)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range normalize.Tokens(s) {
		set[f] = struct{}{}
	}
	return set
}

// lcsLength returns the length of the longest common subsequence of a and b
// using two rolling rows.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
