package cache

import (
	"container/list"
	"sync"
	"time"
)

// Bounded is a fixed-capacity map with per-entry TTL and FIFO-by-insertion eviction.
// Overwriting an existing key refreshes its value and timestamp but keeps its position.
type Bounded[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List
	items    map[K]*list.Element
	now      func() time.Time
}

type boundedEntry[K comparable, V any] struct {
	key      K
	value    V
	storedAt time.Time
}

// NewBounded creates a cache holding at most capacity entries, each valid for ttl
func NewBounded[K comparable, V any](capacity int, ttl time.Duration) *Bounded[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Bounded[K, V]{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[K]*list.Element),
		now:      time.Now,
	}
}

// WithClock replaces the time source; used by tests
func (c *Bounded[K, V]) WithClock(now func() time.Time) *Bounded[K, V] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

// Get returns the value for key if present and younger than the TTL.
// Expired entries are removed on access.
func (c *Bounded[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	entry := el.Value.(*boundedEntry[K, V])
	if c.ttl > 0 && c.now().Sub(entry.storedAt) >= c.ttl {
		c.order.Remove(el)
		delete(c.items, key)
		return zero, false
	}
	return entry.value, true
}

// Set stores value under key and returns the number of entries evicted to stay within capacity
func (c *Bounded[K, V]) Set(key K, value V) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		entry := el.Value.(*boundedEntry[K, V])
		entry.value = value
		entry.storedAt = c.now()
		return 0
	}

	c.items[key] = c.order.PushBack(&boundedEntry[K, V]{key: key, value: value, storedAt: c.now()})

	evicted := 0
	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*boundedEntry[K, V]).key)
		evicted++
	}
	return evicted
}

// Delete removes key
func (c *Bounded[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

// Purge drops every entry
func (c *Bounded[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[K]*list.Element)
}

// Len returns the number of stored entries, expired ones included
func (c *Bounded[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Capacity returns the configured maximum size
func (c *Bounded[K, V]) Capacity() int {
	return c.capacity
}
