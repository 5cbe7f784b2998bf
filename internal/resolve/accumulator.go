// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"sync"

	"github.com/juanceresa/BigQuery/pkg/types"
)

// Accumulator holds the candidates gathered per investigator id for one run.
// It is safe for concurrent use.
type Accumulator struct {
	mu    sync.RWMutex
	byID  map[string][]types.GatheredCandidate
	order []string
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{byID: make(map[string][]types.GatheredCandidate)}
}

// Add records g unless the same candidate is already gathered for the
// investigator. It reports whether g was added.
func (a *Accumulator) Add(g types.GatheredCandidate) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	list, seen := a.byID[g.InvestigatorID]
	for _, existing := range list {
		if existing.Candidate.ID == g.Candidate.ID {
			return false
		}
	}
	if !seen {
		a.order = append(a.order, g.InvestigatorID)
	}
	a.byID[g.InvestigatorID] = append(list, g)
	return true
}

// Get returns a copy of the candidates gathered for id.
func (a *Accumulator) Get(id string) []types.GatheredCandidate {
	a.mu.RLock()
	defer a.mu.RUnlock()
	list := a.byID[id]
	out := make([]types.GatheredCandidate, len(list))
	copy(out, list)
	return out
}

// Has reports whether candidateID is already gathered for id.
func (a *Accumulator) Has(id, candidateID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, g := range a.byID[id] {
		if g.Candidate.ID == candidateID {
			return true
		}
	}
	return false
}

// Len returns the number of investigators with at least one candidate.
func (a *Accumulator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.order)
}
