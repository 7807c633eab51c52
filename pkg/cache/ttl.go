// Package cache provides the two-tier memoization layer for resolved binder
// content: a short-TTL recency tier in front of a bounded LRU frequency
// tier, composed by Manager with promotion, warming, and access-pattern
// driven prefetching.
package cache

import (
	"sync"
	"time"
)

// ttlEntry is one value in the TTL tier with its expiry deadline.
type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a string-keyed cache whose entries expire a fixed duration after
// each write. Safe for concurrent use. Expired entries are dropped lazily on
// Get and in bulk by Cleanup.
type TTL[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]ttlEntry[V]
}

// NewTTL creates a TTL cache with the given per-entry lifetime.
func NewTTL[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{
		ttl:     ttl,
		entries: make(map[string]ttlEntry[V]),
	}
}

// Get returns the fresh value for key. An expired entry is removed and
// reported as a miss.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}

	return entry.value, true
}

// Set writes a value, restarting its expiry clock.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = ttlEntry[V]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Delete removes key. Reports whether it was present.
func (c *TTL[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Len returns the number of physically held entries, including any expired
// ones not yet swept.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Clear empties the cache and returns the number of entries removed.
func (c *TTL[V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]ttlEntry[V])
	return n
}

// Cleanup sweeps all expired entries and returns how many were removed.
func (c *TTL[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}

	return removed
}
