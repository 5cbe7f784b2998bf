// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package institution maps free-text institution strings to OpenAlex
// institution identifiers. Strings are corrected through an alias table,
// stripped of qualifiers and resolved through a run-scoped cache so each
// canonical string costs at most one external search.
package institution

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/juanceresa/BigQuery/internal/logging"
	"github.com/juanceresa/BigQuery/pkg/types"
)

// Searcher finds institutions by name, best match first.
type Searcher interface {
	SearchInstitutions(ctx context.Context, name string) ([]types.InstitutionRef, error)
}

// Observer receives cache and lookup events. metrics.Recorder implements it.
type Observer interface {
	InstitutionLookup(outcome string)
}

type entry struct {
	ref   types.InstitutionRef
	found bool
}

// Cache holds resolved institutions for one run. It is safe for concurrent
// use; concurrent misses on the same key share a single search.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) get(key string) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *Cache) put(key string, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
}

// Resolver resolves institution strings through a Searcher and a Cache.
type Resolver struct {
	searcher Searcher
	aliases  *AliasTable
	cache    *Cache
	logger   *logging.Logger
	observer Observer
}

// NewResolver returns a Resolver. A nil aliases uses the built-in table, a
// nil cache gets a fresh one and a nil logger discards output.
func NewResolver(searcher Searcher, aliases *AliasTable, cache *Cache, logger *logging.Logger) *Resolver {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	if cache == nil {
		cache = NewCache()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Resolver{searcher: searcher, aliases: aliases, cache: cache, logger: logger}
}

// WithObserver sets the event observer and returns r.
func (r *Resolver) WithObserver(o Observer) *Resolver {
	r.observer = o
	return r
}

// Resolve returns the institution for raw and whether one was found.
// A blank string, an empty search result and a search failure all report
// not found; failures are logged and left uncached so a later call may try
// again.
func (r *Resolver) Resolve(ctx context.Context, raw string) (types.InstitutionRef, bool) {
	key := Canonical(raw, r.aliases)
	if key == "" {
		return types.InstitutionRef{}, false
	}

	if e, ok := r.cache.get(key); ok {
		r.observe("hit")
		return e.ref, e.found
	}

	v, err, _ := r.cache.group.Do(key, func() (any, error) {
		// Another flight may have filled the key between get and Do.
		if e, ok := r.cache.get(key); ok {
			r.observe("hit")
			return e, nil
		}
		r.observe("lookup")
		refs, err := r.searcher.SearchInstitutions(ctx, key)
		if err != nil {
			return entry{}, err
		}
		e := entry{}
		if len(refs) > 0 {
			e = entry{ref: refs[0], found: true}
		}
		r.cache.put(key, e)
		return e, nil
	})
	if err != nil {
		r.observe("error")
		r.logger.Warn("institution search failed", "institution", key, "error", err)
		return types.InstitutionRef{}, false
	}

	e := v.(entry)
	if !e.found {
		r.observe("not_found")
		r.logger.Debug("institution not found", "institution", key)
	}
	return e.ref, e.found
}

func (r *Resolver) observe(outcome string) {
	if r.observer != nil {
		r.observer.InstitutionLookup(outcome)
	}
}
