// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

import (
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ResponseCache stores raw API responses by request key.
type ResponseCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Close() error
}

// BadgerCache is a ResponseCache persisted in a Badger directory. Entries
// expire after the configured TTL.
type BadgerCache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenBadgerCache opens or creates a cache in dir.
func OpenBadgerCache(dir string, ttl time.Duration) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening response cache %s: %w", dir, err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &BadgerCache{db: db, ttl: ttl}, nil
}

// Get returns the cached value for key. Read errors count as a miss.
func (c *BadgerCache) Get(key string) ([]byte, bool) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores value under key with the cache TTL.
func (c *BadgerCache) Set(key string, value []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(c.ttl))
	})
}

// Close releases the database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
