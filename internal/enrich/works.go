// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/juanceresa/BigQuery/internal/normalize"
	"github.com/juanceresa/BigQuery/pkg/types"
)

var (
	// ErrNotMatched is returned for investigators without a resolved author.
	ErrNotMatched = errors.New("investigator has no resolved author")

	// ErrSurnameMismatch is returned when none of the investigator's
	// surnames appears in the author's display name.
	ErrSurnameMismatch = errors.New("surname not found in author display name")
)

// AuthorSource fetches author profiles and their works.
type AuthorSource interface {
	GetAuthor(ctx context.Context, id string) (types.CandidateAuthor, error)
	AuthorWorks(ctx context.Context, authorID string) ([]types.Work, error)
}

// WorksSummary totals the works of one matched author.
type WorksSummary struct {
	InvestigatorID string `json:"ID" yaml:"ID"`
	AuthorID       string `json:"author_id" yaml:"author_id"`
	DisplayName    string `json:"display_name" yaml:"display_name"`
	Works          int    `json:"works" yaml:"works"`
	Citations      int    `json:"citations" yaml:"citations"`
}

// WorksResult is the summary plus every work fetched.
type WorksResult struct {
	Summary WorksSummary
	Works   []types.Work
}

// FillSummary counts the outcome of a FillAll batch.
type FillSummary struct {
	Filled     int
	Unmatched  int
	Mismatched int
	Failed     int
}

// Total returns the number of investigators processed.
func (s FillSummary) Total() int {
	return s.Filled + s.Unmatched + s.Mismatched + s.Failed
}

// SurnameMatches reports whether any surname of inv, accent- and
// case-insensitively, is contained in displayName.
func SurnameMatches(inv types.Investigator, displayName string) bool {
	display := normalize.Name(displayName)
	if display == "" {
		return false
	}
	for _, s := range inv.Surnames() {
		if n := normalize.Name(s); n != "" && strings.Contains(display, n) {
			return true
		}
	}
	return false
}

// FillWorks fetches the author resolved for inv, checks the surname against
// the profile, and pages through all of the author's works.
func FillWorks(ctx context.Context, src AuthorSource, inv types.Investigator) (WorksResult, error) {
	authorID := types.Deref(inv.AlexID)
	if authorID == "" {
		authorID = types.Deref(inv.AuthorID)
	}
	if authorID == "" {
		return WorksResult{}, ErrNotMatched
	}

	author, err := src.GetAuthor(ctx, authorID)
	if err != nil {
		return WorksResult{}, fmt.Errorf("fetching author %s: %w", authorID, err)
	}
	if !SurnameMatches(inv, author.DisplayName) {
		return WorksResult{}, fmt.Errorf("%s: %w", author.DisplayName, ErrSurnameMismatch)
	}

	works, err := src.AuthorWorks(ctx, author.ID)
	if err != nil {
		return WorksResult{}, fmt.Errorf("fetching works of %s: %w", author.ID, err)
	}
	res := WorksResult{
		Summary: WorksSummary{
			InvestigatorID: inv.ID,
			AuthorID:       author.ID,
			DisplayName:    author.DisplayName,
			Works:          len(works),
		},
		Works: works,
	}
	for _, w := range works {
		res.Summary.Citations += w.CitedByCount
	}
	return res, nil
}

// FillAll runs FillWorks for every investigator, printing per-item status
// to w. It continues after individual failures and stops only when ctx is
// done.
func FillAll(ctx context.Context, src AuthorSource, investigators []types.Investigator, w io.Writer) ([]WorksResult, FillSummary, error) {
	var (
		results []WorksResult
		summary FillSummary
	)
	for _, inv := range investigators {
		if err := ctx.Err(); err != nil {
			return results, summary, err
		}
		res, err := FillWorks(ctx, src, inv)
		switch {
		case errors.Is(err, ErrNotMatched):
			summary.Unmatched++
			continue
		case errors.Is(err, ErrSurnameMismatch):
			fmt.Fprintf(w, "mismatch: %s (%v)\n", inv.ID, err)
			summary.Mismatched++
			continue
		case err != nil:
			fmt.Fprintf(w, "failed:  %s (%v)\n", inv.ID, err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "filled:  %s (%d works, %d citations)\n", inv.ID, res.Summary.Works, res.Summary.Citations)
		summary.Filled++
		results = append(results, res)
	}
	fmt.Fprintf(w, "\nWorks summary: %d filled, %d unmatched, %d mismatched, %d failed (total: %d)\n",
		summary.Filled, summary.Unmatched, summary.Mismatched, summary.Failed, summary.Total())
	return results, summary, nil
}
