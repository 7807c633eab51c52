package cache

import (
	"container/list"
	"sync"
)

// lruEntry is the payload carried by each element of the recency list.
type lruEntry[V any] struct {
	key   string
	value V
}

// LRU is a string-keyed cache with a fixed capacity that evicts the least
// recently used entry when full. Safe for concurrent use.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	items    map[string]*list.Element
}

// NewLRU creates an LRU cache holding at most capacity entries.
// Capacities below one are clamped to one.
func NewLRU[V any](capacity int) *LRU[V] {
	if capacity < 1 {
		capacity = 1
	}

	return &LRU[V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	c.order.MoveToFront(elem)
	return elem.Value.(*lruEntry[V]).value, true
}

// Set writes a value, marking it most recently used. When the cache is over
// capacity the least recently used entry is dropped; Set reports whether an
// eviction happened.
func (c *LRU[V]) Set(key string, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*lruEntry[V]).value = value
		c.order.MoveToFront(elem)
		return false
	}

	c.items[key] = c.order.PushFront(&lruEntry[V]{key: key, value: value})

	if c.order.Len() <= c.capacity {
		return false
	}

	oldest := c.order.Back()
	if oldest == nil {
		return false
	}
	c.order.Remove(oldest)
	delete(c.items, oldest.Value.(*lruEntry[V]).key)
	return true
}

// Delete removes key. Reports whether it was present.
func (c *LRU[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false
	}

	c.order.Remove(elem)
	delete(c.items, key)
	return true
}

// Contains reports whether key is cached, without touching recency order.
func (c *LRU[V]) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	return ok
}

// Len returns the number of cached entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}

// Clear empties the cache and returns the number of entries removed.
func (c *LRU[V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.order.Len()
	c.order.Init()
	c.items = make(map[string]*list.Element)
	return n
}
