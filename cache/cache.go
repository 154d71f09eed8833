// Package cache provides generic, thread-safe caches with metrics, evicting
// by access count so hot query results stay resident.
package cache

import (
	"sync"
	"sync/atomic"
)

// Cache is a generic thread-safe cache with built-in metrics. When full, the
// entry with the lowest access count is evicted, so frequently requested
// values survive one-off lookups.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	items    map[K]*entry[V]
	capacity int

	// Metrics (lock-free using atomics)
	hits   atomic.Uint64
	misses atomic.Uint64
	evicts atomic.Uint64
	sets   atomic.Uint64
}

// entry holds a cached value and its access count, used for eviction.
type entry[V any] struct {
	value    V
	accesses uint64
}

// New creates a new Cache with the specified capacity.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = 100
	}
	return &Cache[K, V]{
		items:    make(map[K]*entry[V], capacity),
		capacity: capacity,
	}
}

// Get retrieves a value from the cache. A hit increments the entry's access
// count; the cached value is returned unchanged.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	c.hits.Add(1)
	e.accesses++
	return e.value, true
}

// Set adds or updates a value. If the cache is at capacity, the entry with
// the lowest access count is evicted first.
func (c *Cache[K, V]) Set(key K, value V) {
	c.sets.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		return
	}

	if len(c.items) >= c.capacity {
		c.evictColdest()
	}
	c.items[key] = &entry[V]{value: value}
}

// evictColdest removes the entry with the lowest access count.
// Must be called with mu held.
func (c *Cache[K, V]) evictColdest() {
	var coldestKey K
	coldest := ^uint64(0)
	found := false
	for k, e := range c.items {
		if e.accesses < coldest {
			coldest = e.accesses
			coldestKey = k
			found = true
		}
	}
	if found {
		delete(c.items, coldestKey)
		c.evicts.Add(1)
	}
}

// GetOrSet returns the existing value for key if present. Otherwise it calls
// fn to compute the value, stores it, and returns it. This is atomic with
// respect to the cache.
func (c *Cache[K, V]) GetOrSet(key K, fn func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.hits.Add(1)
		e.accesses++
		return e.value
	}

	c.misses.Add(1)
	value := fn()

	if len(c.items) >= c.capacity {
		c.evictColdest()
	}
	c.items[key] = &entry[V]{value: value}
	c.sets.Add(1)
	return value
}

// Delete removes an item from the cache.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len returns the current number of items in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all items from the cache.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*entry[V], c.capacity)
}

// Accesses returns the access count recorded for key, for eviction
// inspection.
func (c *Cache[K, V]) Accesses(key K) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return 0, false
	}
	return e.accesses, true
}

// Stats holds cache statistics.
type Stats struct {
	Size     int
	Capacity int
	Hits     uint64
	Misses   uint64
	Evicts   uint64
	Sets     uint64
	HitRate  float64
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	size := len(c.items)
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Size:     size,
		Capacity: c.capacity,
		Hits:     hits,
		Misses:   misses,
		Evicts:   c.evicts.Load(),
		Sets:     c.sets.Load(),
		HitRate:  hitRate,
	}
}
