// Package cache provides an in-process LRU cache with per-entry TTL.
//
// It backs the weather client and the plant characteristic inferrer, both of
// which memoize expensive outbound API calls. Entries are evicted on capacity
// pressure (least recently used first) and lazily on expiry.
package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// LRU is an LRU cache with TTL support. Safe for concurrent use.
type LRU struct {
	capacity   int
	defaultTTL time.Duration
	mu         sync.Mutex

	entries map[string]*entry
	order   *list.List // Doubly linked list for LRU ordering
}

type entry struct {
	key       string
	value     any
	expiresAt time.Time
	element   *list.Element
}

// NewLRU creates a new LRU cache.
func NewLRU(capacity int, defaultTTL time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 256
	}
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}

	return &LRU{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		entries:    make(map[string]*entry),
		order:      list.New(),
	}
}

// Get retrieves a value from the cache.
func (c *LRU) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		c.removeEntry(e)
		return nil, false
	}

	c.order.MoveToFront(e.element)
	return e.value, true
}

// Set stores a value in the cache. A non-positive ttl uses the default.
func (c *LRU) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(e.element)
		return
	}

	for len(c.entries) >= c.capacity {
		c.evictOldest()
	}

	e := &entry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	e.element = c.order.PushFront(e)
	c.entries[key] = e
}

// Invalidate removes entries matching the pattern.
// Supports a trailing * wildcard (e.g. "current:*").
func (c *LRU) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !strings.HasSuffix(pattern, "*") {
		if e, ok := c.entries[pattern]; ok {
			c.removeEntry(e)
			return 1
		}
		return 0
	}

	prefix := strings.TrimSuffix(pattern, "*")
	count := 0
	for key, e := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.removeEntry(e)
			count++
		}
	}
	return count
}

// Size returns the number of entries in the cache.
func (c *LRU) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes all entries from the cache.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.order.Init()
}

// evictOldest removes the least recently used entry.
// Must be called with lock held.
func (c *LRU) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.removeEntry(oldest.Value.(*entry))
}

// removeEntry removes an entry from the cache.
// Must be called with lock held.
func (c *LRU) removeEntry(e *entry) {
	c.order.Remove(e.element)
	delete(c.entries, e.key)
}
