// Package cache provides the in-memory TTL + LRU memo used for short-lived
// lookup answers (DoH responses, RDAP documents). It is process-local and
// never persisted; the durable scan cache lives in adapters/store.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// entry represents a cached item with metadata
type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	element   *list.Element // for LRU tracking
}

// Stats counts lookups since creation.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// MemoryCache is a typed in-memory LRU cache with per-item TTL.
type MemoryCache[V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*entry[V]
	lruList  *list.List
	stats    Stats
	now      func() time.Time
}

// New creates a cache holding at most capacity items; the least recently used
// item is evicted when full.
//
// Example:
//
//	answers := cache.New[[]domain.DNSRecord](512)
func New[V any](capacity int) *MemoryCache[V] {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryCache[V]{
		capacity: capacity,
		items:    make(map[string]*entry[V]),
		lruList:  list.New(),
		now:      time.Now,
	}
}

// WithClock replaces the time source (tests).
func (c *MemoryCache[V]) WithClock(now func() time.Time) *MemoryCache[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Get returns the value for key if present and not expired.
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	if c.expired(e) {
		c.deleteEntry(e)
		c.stats.Misses++
		return zero, false
	}

	c.lruList.MoveToFront(e.element)
	c.stats.Hits++
	return e.value, true
}

// Set stores value under key. A ttl of 0 never expires.
func (c *MemoryCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	if existing, ok := c.items[key]; ok {
		existing.value = value
		existing.expiresAt = expiresAt
		c.lruList.MoveToFront(existing.element)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictLRU()
	}

	e := &entry[V]{key: key, value: value, expiresAt: expiresAt}
	e.element = c.lruList.PushFront(e)
	c.items[key] = e
}

// Delete removes key.
func (c *MemoryCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.deleteEntry(e)
	}
}

// Clear removes all values and resets the stats.
func (c *MemoryCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry[V])
	c.lruList.Init()
	c.stats = Stats{}
}

// Size returns the number of stored items, expired ones included until swept.
func (c *MemoryCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of items.
func (c *MemoryCache[V]) Capacity() int {
	return c.capacity
}

// Stats returns hit / miss counters.
func (c *MemoryCache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// CleanExpired sweeps expired items and returns how many were removed.
func (c *MemoryCache[V]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, e := range c.items {
		if c.expired(e) {
			c.deleteEntry(e)
			removed++
		}
	}
	return removed
}

// StartCleanupWorker sweeps expired items every interval until the returned
// stop function is called.
func (c *MemoryCache[V]) StartCleanupWorker(interval time.Duration) func() {
	stop := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.CleanExpired()
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(stop) }) }
}

// Must be called with c.mu held.
func (c *MemoryCache[V]) expired(e *entry[V]) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

// Must be called with c.mu held.
func (c *MemoryCache[V]) evictLRU() {
	if back := c.lruList.Back(); back != nil {
		c.deleteEntry(back.Value.(*entry[V]))
	}
}

// Must be called with c.mu held.
func (c *MemoryCache[V]) deleteEntry(e *entry[V]) {
	delete(c.items, e.key)
	c.lruList.Remove(e.element)
}
