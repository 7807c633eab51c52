package cache

import (
	"sort"
	"sync"
	"time"
)

// coAccessWindow is how far apart two accesses may be and still count as
// co-accessed.
const coAccessWindow = 60 * time.Second

// pattern is the per-key usage record backing prefetch decisions.
type pattern struct {
	frequency  int
	lastAccess time.Time

	// coAccess holds other keys touched within the sliding window of an
	// access to this key, deduped, in first-observed order.
	coAccess []string
}

// recentAccess is one entry in the tracker's global sliding window.
type recentAccess struct {
	key string
	at  time.Time
}

// tracker records access patterns across all cache keys: per-key frequency,
// last-access time, and which keys tend to be requested close together.
type tracker struct {
	mu       sync.Mutex
	patterns map[string]*pattern
	window   []recentAccess
}

func newTracker() *tracker {
	return &tracker{
		patterns: make(map[string]*pattern),
	}
}

// record notes an access to key: bumps its frequency, refreshes its
// last-access time, and links it both ways with every distinct key seen
// inside the sliding window.
func (t *tracker) record(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()

	p := t.patterns[key]
	if p == nil {
		p = &pattern{}
		t.patterns[key] = p
	}
	p.frequency++
	p.lastAccess = now

	// Drop window entries older than the co-access horizon.
	cutoff := now.Add(-coAccessWindow)
	keep := t.window[:0]
	for _, a := range t.window {
		if a.at.After(cutoff) {
			keep = append(keep, a)
		}
	}
	t.window = keep

	for _, a := range t.window {
		if a.key == key {
			continue
		}
		appendUnique(&p.coAccess, a.key)
		if other := t.patterns[a.key]; other != nil {
			appendUnique(&other.coAccess, key)
		}
	}

	t.window = append(t.window, recentAccess{key: key, at: now})
}

// related returns up to limit co-accessed keys for key, in recorded order.
func (t *tracker) related(key string, limit int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.patterns[key]
	if p == nil || limit <= 0 {
		return nil
	}

	n := min(limit, len(p.coAccess))
	related := make([]string, n)
	copy(related, p.coAccess[:n])
	return related
}

// setRelated overwrites co-access lists wholesale, as supplied by an
// external usage analyzer. Keys absent from patterns are created so prefetch
// can act on them before their first recorded access.
func (t *tracker) setRelated(coAccess map[string][]string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, related := range coAccess {
		p := t.patterns[key]
		if p == nil {
			p = &pattern{}
			t.patterns[key] = p
		}
		p.coAccess = append([]string(nil), related...)
	}
}

// hot returns up to limit keys ordered by descending access frequency.
// Frequency ties break by key name for determinism.
func (t *tracker) hot(limit int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	keys := make([]string, 0, len(t.patterns))
	for key := range t.patterns {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		fi, fj := t.patterns[keys[i]].frequency, t.patterns[keys[j]].frequency
		if fi != fj {
			return fi > fj
		}
		return keys[i] < keys[j]
	})

	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

// recent returns up to limit keys ordered by most recent access.
func (t *tracker) recent(limit int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	keys := make([]string, 0, len(t.patterns))
	for key := range t.patterns {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		ti, tj := t.patterns[keys[i]].lastAccess, t.patterns[keys[j]].lastAccess
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return keys[i] < keys[j]
	})

	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func appendUnique(list *[]string, key string) {
	for _, k := range *list {
		if k == key {
			return
		}
	}
	*list = append(*list, key)
}
