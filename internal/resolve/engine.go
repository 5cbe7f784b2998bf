// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve gathers OpenAlex author candidates for investigators by
// name search, accepting candidates through an ordered list of rules: exact
// or alternate name, institution membership, then shared topic.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/juanceresa/BigQuery/internal/logging"
	"github.com/juanceresa/BigQuery/internal/normalize"
	"github.com/juanceresa/BigQuery/pkg/types"
)

// ErrNoName is returned for investigators without any name field.
var ErrNoName = errors.New("investigator has no name")

// InstitutionResolver maps a free-text institution to an OpenAlex id.
type InstitutionResolver interface {
	Resolve(ctx context.Context, raw string) (types.InstitutionRef, bool)
}

// Observer receives engine events. metrics.Recorder implements it.
type Observer interface {
	Classified(classification string)
	Investigator(outcome string, took time.Duration)
}

// Outcome labels.
const (
	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// RunSummary counts investigators by outcome.
type RunSummary struct {
	Matched   int
	Unmatched int
	Skipped   int
	Failed    int
}

// Total returns the number of investigators processed.
func (s RunSummary) Total() int {
	return s.Matched + s.Unmatched + s.Skipped + s.Failed
}

func (s *RunSummary) add(outcome string) {
	switch outcome {
	case OutcomeMatched:
		s.Matched++
	case OutcomeUnmatched:
		s.Unmatched++
	case OutcomeSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

// Engine resolves investigators to gathered candidates. The institution
// resolver and the accumulator are owned by the caller and may be shared by
// several engines.
type Engine struct {
	retriever    *Retriever
	institutions InstitutionResolver
	acc          *Accumulator
	rules        []Rule
	workers      int
	logger       *logging.Logger
	observer     Observer
}

// NewEngine returns a sequential engine using the default rules.
// institutions may be nil, in which case the institution rule never fires.
func NewEngine(searcher AuthorSearcher, institutions InstitutionResolver, acc *Accumulator, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}
	if acc == nil {
		acc = NewAccumulator()
	}
	return &Engine{
		retriever:    NewRetriever(searcher, logger),
		institutions: institutions,
		acc:          acc,
		rules:        DefaultRules(),
		workers:      1,
		logger:       logger,
	}
}

// WithWorkers sets the number of investigators resolved concurrently.
func (e *Engine) WithWorkers(n int) *Engine {
	if n < 1 {
		n = 1
	}
	e.workers = n
	return e
}

// WithObserver attaches o to the engine.
func (e *Engine) WithObserver(o Observer) *Engine {
	e.observer = o
	return e
}

// Accumulator returns the engine's gathered candidates.
func (e *Engine) Accumulator() *Accumulator {
	return e.acc
}

// Queries returns the name queries tried for inv: given name with first
// surname, then the full display name, without duplicates.
func Queries(inv types.Investigator) []string {
	var out []string
	seen := make(map[string]bool)
	for _, q := range []string{
		strings.TrimSpace(inv.Name + " " + inv.Surname1),
		strings.TrimSpace(inv.DisplayName()),
	} {
		key := normalize.Name(q)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}

// Evaluate picks at most one candidate for the investigator. The rules are
// tried in priority order and, for each rule, candidates in retrieval
// order; the first hit wins. Candidates already gathered for the
// investigator are skipped.
func (e *Engine) Evaluate(investigatorID, query string, candidates []types.CandidateAuthor, ev Evidence) (types.GatheredCandidate, bool) {
	best := -1
	bestClass := types.Rejected
	for i, c := range candidates {
		if e.acc.Has(investigatorID, c.ID) {
			continue
		}
		class := Classify(e.rules, c, ev)
		if class == types.Rejected {
			e.observe(class)
			continue
		}
		if best < 0 || class < bestClass {
			best, bestClass = i, class
		}
	}
	if best < 0 {
		return types.GatheredCandidate{}, false
	}
	e.observe(bestClass)
	return types.GatheredCandidate{
		InvestigatorID: investigatorID,
		Query:          query,
		Class:          bestClass,
		Candidate:      candidates[best],
	}, true
}

// ResolveInvestigator gathers candidates for inv across its query variants
// and returns those gathered so far. It returns ErrNoName when inv carries
// no name at all.
func (e *Engine) ResolveInvestigator(ctx context.Context, inv types.Investigator) ([]types.GatheredCandidate, error) {
	if !inv.HasName() {
		return nil, ErrNoName
	}

	var instID string
	if e.institutions != nil {
		if ref, ok := e.institutions.Resolve(ctx, inv.Institution); ok {
			instID = ref.ID
		}
	}

	local := normalize.Name(inv.DisplayName())
	for _, q := range Queries(inv) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidates := e.retriever.Fetch(ctx, q, instID, inv.Country)
		ev := Evidence{Name: local, InstitutionID: instID, Gathered: e.acc.Get(inv.ID)}
		g, ok := e.Evaluate(inv.ID, q, candidates, ev)
		if !ok {
			continue
		}
		e.acc.Add(g)
		e.logger.Debug("candidate gathered",
			"investigator", inv.ID,
			"candidate", g.Candidate.ID,
			"classification", g.Class.String(),
			"query", q,
		)
	}
	return e.acc.Get(inv.ID), nil
}

// Run resolves every investigator, printing failures to w and returning a
// summary. Failures are isolated: one investigator never stops the others.
// Only context cancellation aborts the run.
func (e *Engine) Run(ctx context.Context, investigators []types.Investigator, w io.Writer) (RunSummary, error) {
	var (
		mu      sync.Mutex
		summary RunSummary
	)
	record := func(inv types.Investigator, outcome string, err error) {
		mu.Lock()
		defer mu.Unlock()
		summary.add(outcome)
		switch outcome {
		case OutcomeFailed:
			fmt.Fprintf(w, "failed:  %s (%v)\n", inv.ID, err)
		case OutcomeSkipped:
			fmt.Fprintf(w, "skipped: %s (no name)\n", inv.ID)
		}
	}

	process := func(inv types.Investigator) {
		start := time.Now()
		outcome := OutcomeUnmatched
		gathered, err := e.ResolveInvestigator(ctx, inv)
		switch {
		case errors.Is(err, ErrNoName):
			outcome = OutcomeSkipped
		case err != nil:
			outcome = OutcomeFailed
			e.logger.Warn("investigator failed", "investigator", inv.ID, "error", err)
		case len(gathered) > 0:
			outcome = OutcomeMatched
		}
		record(inv, outcome, err)
		if e.observer != nil {
			e.observer.Investigator(outcome, time.Since(start))
		}
	}

	if e.workers <= 1 {
		for _, inv := range investigators {
			if ctx.Err() != nil {
				break
			}
			process(inv)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.workers)
		for _, inv := range investigators {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				process(inv)
				return nil
			})
		}
		_ = g.Wait()
	}

	fmt.Fprintf(w, "\nResolve summary: %d matched, %d unmatched, %d skipped, %d failed (total: %d)\n",
		summary.Matched, summary.Unmatched, summary.Skipped, summary.Failed, summary.Total())
	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("resolve interrupted: %w", err)
	}
	return summary, nil
}

func (e *Engine) observe(c types.Classification) {
	if e.observer != nil {
		e.observer.Classified(c.String())
	}
}
