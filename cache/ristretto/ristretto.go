package ristretto

import (
	"fmt"
	"time"

	"github.com/caasmo/phtunnel/cache"
	"github.com/dgraph-io/ristretto/v2"
)

// Cache adapts a ristretto cache with string keys to cache.Cache.
type Cache[V any] struct {
	cache *ristretto.Cache[string, V]
}

func (rc *Cache[V]) Get(key string) (V, bool) {
	return rc.cache.Get(key)
}

func (rc *Cache[V]) Set(key string, value V, cost int64) bool {
	return rc.cache.Set(key, value, cost)
}

func (rc *Cache[V]) SetWithTTL(key string, value V, cost int64, ttl time.Duration) bool {
	return rc.cache.SetWithTTL(key, value, cost, ttl)
}

func (rc *Cache[V]) Clear() {
	rc.cache.Clear()
}

// Close stops the cache goroutines.
func (rc *Cache[V]) Close() {
	rc.cache.Close()
}

type sizing struct {
	numCounters int64
	maxCost     int64
}

// Entries cost 1, so MaxCost is the number of entries kept. NumCounters
// follows the ristretto guideline of 10x the expected number of entries.
var levels = map[string]sizing{
	"small":      {numCounters: 1e5, maxCost: 1e4},
	"medium":     {numCounters: 1e6, maxCost: 1e5},
	"large":      {numCounters: 1e7, maxCost: 1e6},
	"very-large": {numCounters: 1e8, maxCost: 1e7},
}

// New creates a cache sized by level: small, medium, large or very-large.
func New[V any](level string) (cache.Cache[string, V], error) {
	s, ok := levels[level]
	if !ok {
		return nil, fmt.Errorf("ristretto: unknown cache level %q", level)
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: s.numCounters,
		MaxCost:     s.maxCost,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}

	return &Cache[V]{cache: c}, nil
}
