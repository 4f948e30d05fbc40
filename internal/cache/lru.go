// Package cache provides a small thread-safe LRU cache with optional entry
// expiry.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// LRU holds at most maxEntries values. When ttl is positive, an entry older
// than ttl is treated as absent and dropped on the next lookup or Purge.
type LRU[K comparable, V any] struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[K]*node[K, V]
	head    *node[K, V] // most recently used
	tail    *node[K, V] // least recently used
}

type node[K comparable, V any] struct {
	key     K
	value   V
	addedAt time.Time
	prev    *node[K, V]
	next    *node[K, V]
}

// New creates a cache. maxEntries below 1 is treated as 1; a nil clock uses
// the real clock.
func New[K comparable, V any](maxEntries int, ttl time.Duration, clock clockwork.Clock) *LRU[K, V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LRU[K, V]{
		maxEntries: max(maxEntries, 1),
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[K]*node[K, V]),
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.expired(n, c.clock.Now()) {
		c.drop(n)
		var zero V
		return zero, false
	}
	c.moveToFront(n)
	return n.value, true
}

// Peek returns the value for key without changing its recency.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok || c.expired(n, c.clock.Now()) {
		var zero V
		return zero, false
	}
	return n.value, true
}

// Put stores value under key, replacing and refreshing any existing entry,
// and evicts the least recently used entry when the cache is full.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if n, ok := c.entries[key]; ok {
		n.value = value
		n.addedAt = now
		c.moveToFront(n)
		return
	}

	n := &node[K, V]{key: key, value: value, addedAt: now}
	c.entries[key] = n
	c.addToFront(n)

	if len(c.entries) > c.maxEntries {
		c.drop(c.tail)
	}
}

// Remove deletes key and reports whether it was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if ok {
		c.drop(n)
	}
	return ok
}

// Purge drops every expired entry and returns how many were dropped.
func (c *LRU[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	dropped := 0
	for n := c.tail; n != nil; {
		prev := n.prev
		if c.expired(n, now) {
			c.drop(n)
			dropped++
		}
		n = prev
	}
	return dropped
}

// Len returns the number of entries, including expired ones not yet purged.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the keys from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.entries))
	for n := c.head; n != nil; n = n.next {
		keys = append(keys, n.key)
	}
	return keys
}

func (c *LRU[K, V]) expired(n *node[K, V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(n.addedAt) >= c.ttl
}

func (c *LRU[K, V]) drop(n *node[K, V]) {
	delete(c.entries, n.key)
	c.unlink(n)
}

func (c *LRU[K, V]) moveToFront(n *node[K, V]) {
	if n == c.head {
		return
	}
	c.unlink(n)
	c.addToFront(n)
}

func (c *LRU[K, V]) addToFront(n *node[K, V]) {
	n.next = c.head
	n.prev = nil
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *LRU[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
