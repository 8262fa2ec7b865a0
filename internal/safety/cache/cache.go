// Package cache holds resolved safety data in memory so repeated scans of
// the same ingredient do not hit the hazard provider again.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
)

// Store is the cache contract the resolver depends on.
type Store interface {
	Get(key string) *domain.SafetyInfo
	Set(key string, info *domain.SafetyInfo)
	Clear()
}

type entry struct {
	info       *domain.SafetyInfo
	insertedAt time.Time
}

// SafetyCache is an in-memory TTL cache keyed by normalized identifier.
// Expiry is checked lazily on read; there is no background sweep.
type SafetyCache struct {
	ttl   time.Duration
	clock clockwork.Clock

	mu      sync.RWMutex
	entries map[string]entry
}

// New creates a cache whose entries live for ttl. A nil clock means the
// real wall clock.
func New(ttl time.Duration, clock clockwork.Clock) *SafetyCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SafetyCache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry),
	}
}

// Get returns a copy of the cached info, or nil when the key was never
// cached or has expired.
func (c *SafetyCache) Get(key string) *domain.SafetyInfo {
	k := domain.CacheKey(key)

	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()
	if !ok {
		return nil
	}

	if c.clock.Since(e.insertedAt) > c.ttl {
		c.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the entry.
		if cur, ok := c.entries[k]; ok && cur.insertedAt.Equal(e.insertedAt) {
			delete(c.entries, k)
		}
		c.mu.Unlock()
		return nil
	}

	return e.info.Clone()
}

// Set stores a copy of info. An entry stamped later than this write is
// kept (last writer wins by timestamp).
func (c *SafetyCache) Set(key string, info *domain.SafetyInfo) {
	if info == nil {
		return
	}
	k := domain.CacheKey(key)
	now := c.clock.Now()
	stored := info.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.entries[k]; ok && cur.insertedAt.After(now) {
		return
	}
	c.entries[k] = entry{info: stored, insertedAt: now}
}

// Clear drops every entry.
func (c *SafetyCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included until read.
func (c *SafetyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Nop is used when local caching is disabled.
type Nop struct{}

func (Nop) Get(string) *domain.SafetyInfo  { return nil }
func (Nop) Set(string, *domain.SafetyInfo) {}
func (Nop) Clear()                         {}
