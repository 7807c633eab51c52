package cache

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/inkwellhq/binder/pkg/logger"
)

const (
	// DefaultTTL is the lifetime of entries in the recency tier.
	DefaultTTL = 5 * time.Minute

	// DefaultLRUCapacity bounds the frequency tier.
	DefaultLRUCapacity = 500

	// prefetchFanout is the maximum number of co-accessed keys considered by
	// PrefetchRelated.
	prefetchFanout = 5

	// warmConcurrency bounds simultaneous loader calls during warming.
	warmConcurrency = 4
)

// Loader fetches the value for a key on behalf of warming, prefetching, and
// read-through callers. Loaders may fail; the manager recovers per key.
type Loader[V any] func(ctx context.Context, key string) (V, error)

// Config holds Manager settings. Zero values fall back to defaults.
type Config struct {
	// TTL is the entry lifetime in the recency tier.
	TTL time.Duration

	// LRUCapacity is the entry bound of the frequency tier.
	LRUCapacity int

	// Logger receives warm/prefetch diagnostics. Defaults to a nop logger.
	Logger *slog.Logger
}

// Stats is a point-in-time view of cache effectiveness.
//
// Size sums both tiers, so a key promoted into the TTL tier while still held
// by the LRU tier counts twice. That is deliberate: Size reflects physical
// occupancy, not logical key count.
type Stats struct {
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	Size      int     `json:"size"`
	HitRate   float64 `json:"hit_rate"`

	PrefetchHits   uint64 `json:"prefetch_hits"`
	PrefetchMisses uint64 `json:"prefetch_misses"`
	Prefetched     uint64 `json:"prefetched"`
}

// Manager composes the TTL and LRU tiers into one logical cache.
//
// Reads check the TTL tier first; an LRU hit is promoted back into the TTL
// tier so a frequency-qualified key re-enters the fast recency tier cheaply.
// Writes go through to both tiers. Every access feeds the pattern tracker
// that drives HotKeys and PrefetchRelated.
type Manager[V any] struct {
	ttl    *TTL[V]
	lru    *LRU[V]
	logger *slog.Logger

	tracker *tracker

	hits           atomic.Uint64
	misses         atomic.Uint64
	evictions      atomic.Uint64
	prefetchHits   atomic.Uint64
	prefetchMisses atomic.Uint64
	prefetched     atomic.Uint64
}

// NewManager creates a two-tier cache manager.
func NewManager[V any](c Config) *Manager[V] {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.LRUCapacity <= 0 {
		c.LRUCapacity = DefaultLRUCapacity
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	return &Manager[V]{
		ttl:     NewTTL[V](c.TTL),
		lru:     NewLRU[V](c.LRUCapacity),
		logger:  c.Logger,
		tracker: newTracker(),
	}
}

// Get returns the cached value for key. A TTL-tier hit is the fast path; an
// LRU-tier hit promotes the value into the TTL tier first. Both outcomes
// record the access pattern.
func (m *Manager[V]) Get(key string) (V, bool) {
	if value, ok := m.ttl.Get(key); ok {
		m.hits.Add(1)
		m.tracker.record(key)
		return value, true
	}

	if value, ok := m.lru.Get(key); ok {
		m.ttl.Set(key, value)
		m.hits.Add(1)
		m.tracker.record(key)
		return value, true
	}

	m.misses.Add(1)
	var zero V
	return zero, false
}

// Set writes the value through to both tiers and records the access pattern.
func (m *Manager[V]) Set(key string, value V) {
	m.ttl.Set(key, value)
	if evicted := m.lru.Set(key, value); evicted {
		m.evictions.Add(1)
	}
	m.tracker.record(key)
}

// Contains reports whether key is resident in either tier, without recording
// an access or promoting.
func (m *Manager[V]) Contains(key string) bool {
	if _, ok := m.ttl.Get(key); ok {
		return true
	}
	return m.lru.Contains(key)
}

// Invalidate removes key from both tiers. The eviction counter increments
// whether or not the key was present.
func (m *Manager[V]) Invalidate(key string) {
	m.ttl.Delete(key)
	m.lru.Delete(key)
	m.evictions.Add(1)
}

// Clear empties both tiers, counting every removed entry as an eviction.
func (m *Manager[V]) Clear() {
	removed := m.ttl.Clear() + m.lru.Clear()
	m.evictions.Add(uint64(removed))
}

// CleanupExpired sweeps expired entries out of the TTL tier and returns the
// removed count, which is also added to the eviction counter.
func (m *Manager[V]) CleanupExpired() int {
	removed := m.ttl.Cleanup()
	m.evictions.Add(uint64(removed))
	return removed
}

// Stats returns current counters. HitRate is 0 until the first request.
func (m *Manager[V]) Stats() Stats {
	hits := m.hits.Load()
	misses := m.misses.Load()

	rate := 0.0
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}

	return Stats{
		Hits:           hits,
		Misses:         misses,
		Evictions:      m.evictions.Load(),
		Size:           m.ttl.Len() + m.lru.Len(),
		HitRate:        rate,
		PrefetchHits:   m.prefetchHits.Load(),
		PrefetchMisses: m.prefetchMisses.Load(),
		Prefetched:     m.prefetched.Load(),
	}
}

// Warm loads and caches each key via the loader. Loads run on a bounded set
// of worker goroutines so one slow loader never stalls the caller's peers. A
// failed key is logged, skipped, and does not fail the call: partial warming
// is a success. Returns the number of keys warmed.
func (m *Manager[V]) Warm(ctx context.Context, keys []string, load Loader[V]) int {
	var warmed atomic.Uint64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)

	for _, key := range keys {
		g.Go(func() error {
			value, err := load(ctx, key)
			if err != nil {
				m.logger.Warn("cache warm failed for key", "key", key, "error", err)
				return nil
			}

			m.Set(key, value)
			warmed.Add(1)
			return nil
		})
	}

	// Workers never return errors; Wait only fences completion.
	_ = g.Wait()

	return int(warmed.Load())
}

// PrefetchRelated loads the keys historically co-accessed with key (at most
// the first five). Keys already resident count as prefetch hits and are
// skipped; the rest are loaded and cached. A failed load increments the
// prefetch-miss counter and is otherwise ignored. Returns the number of keys
// newly prefetched.
func (m *Manager[V]) PrefetchRelated(ctx context.Context, key string, load Loader[V]) int {
	fetched := 0
	for _, related := range m.tracker.related(key, prefetchFanout) {
		if m.Contains(related) {
			m.prefetchHits.Add(1)
			continue
		}

		m.prefetched.Add(1)
		value, err := load(ctx, related)
		if err != nil {
			m.prefetchMisses.Add(1)
			m.logger.Debug("prefetch failed for key", "key", related, "error", err)
			continue
		}

		m.Set(related, value)
		fetched++
	}

	return fetched
}

// HotKeys returns up to limit keys ordered by descending access frequency.
func (m *Manager[V]) HotKeys(limit int) []string {
	return m.tracker.hot(limit)
}

// RecentKeys returns up to limit keys ordered by most recent access.
func (m *Manager[V]) RecentKeys(limit int) []string {
	return m.tracker.recent(limit)
}

// UpdateCoAccessPatterns overwrites the co-access lists used by
// PrefetchRelated, wholesale, per key. Fed by an external usage analyzer.
func (m *Manager[V]) UpdateCoAccessPatterns(coAccess map[string][]string) {
	m.tracker.setRelated(coAccess)
}
