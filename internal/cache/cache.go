// SPDX-License-Identifier: MIT

// Package cache provides an in-memory TTL cache with eviction callbacks.
package cache

import (
	"sync"
	"time"
)

// Stats holds cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Sets        int64
	Evictions   int64 // expired entries removed by Get or the janitor
	CurrentSize int
}

// EvictFunc is called, outside the cache lock, for every entry removed by
// expiry, Delete or Clear.
type EvictFunc[V any] func(key string, value V, expired bool)

type entry[V any] struct {
	value      V
	ttl        time.Duration
	expiration time.Time
}

func (e *entry[V]) expiredAt(now time.Time) bool {
	return now.After(e.expiration)
}

// Memory is a thread-safe TTL cache. With sliding expiry every Get pushes the
// entry's deadline out by its TTL.
type Memory[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	stats   Stats
	sliding bool
	onEvict EvictFunc[V]
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// Option configures a Memory cache.
type Option[V any] func(*Memory[V])

// WithSliding refreshes an entry's expiry on every successful Get.
func WithSliding[V any]() Option[V] {
	return func(c *Memory[V]) { c.sliding = true }
}

// WithOnEvict registers fn for removed entries.
func WithOnEvict[V any](fn EvictFunc[V]) Option[V] {
	return func(c *Memory[V]) { c.onEvict = fn }
}

// NewMemory creates a cache. A positive cleanupInterval starts a janitor
// goroutine that must be released with Stop.
func NewMemory[V any](cleanupInterval time.Duration, opts ...Option[V]) *Memory[V] {
	c := &Memory[V]{
		entries: make(map[string]*entry[V]),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	} else {
		close(c.done)
	}
	return c
}

// Get returns the live value for key.
func (c *Memory[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	now := c.now()
	if e.expiredAt(now) {
		delete(c.entries, key)
		c.stats.Misses++
		c.stats.Evictions++
		c.mu.Unlock()
		c.evicted(key, e.value, true)
		var zero V
		return zero, false
	}
	if c.sliding {
		e.expiration = now.Add(e.ttl)
	}
	c.stats.Hits++
	v := e.value
	c.mu.Unlock()
	return v, true
}

// Set stores value under key for ttl. A replaced value is not passed to the
// eviction callback.
func (c *Memory[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry[V]{value: value, ttl: ttl, expiration: c.now().Add(ttl)}
	c.stats.Sets++
}

// Delete removes key.
func (c *Memory[V]) Delete(key string) {
	c.mu.Lock()
	e, ok := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()
	if ok {
		c.evicted(key, e.value, false)
	}
}

// Clear removes every entry.
func (c *Memory[V]) Clear() {
	c.mu.Lock()
	old := c.entries
	c.entries = make(map[string]*entry[V])
	c.mu.Unlock()
	for k, e := range old {
		c.evicted(k, e.value, false)
	}
}

// Len returns the number of stored entries, expired or not.
func (c *Memory[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the counters.
func (c *Memory[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.CurrentSize = len(c.entries)
	return s
}

// DeleteExpired removes expired entries and returns how many it removed.
func (c *Memory[V]) DeleteExpired() int {
	now := c.now()
	c.mu.Lock()
	var gone []evicted[V]
	for k, e := range c.entries {
		if e.expiredAt(now) {
			delete(c.entries, k)
			gone = append(gone, evicted[V]{key: k, value: e.value})
		}
	}
	c.stats.Evictions += int64(len(gone))
	c.mu.Unlock()
	for _, g := range gone {
		c.evicted(g.key, g.value, true)
	}
	return len(gone)
}

// Stop releases the janitor. Entries stay in place.
func (c *Memory[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

type evicted[V any] struct {
	key   string
	value V
}

func (c *Memory[V]) evicted(key string, v V, expired bool) {
	if c.onEvict != nil {
		c.onEvict(key, v, expired)
	}
}

func (c *Memory[V]) janitor(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.DeleteExpired()
		case <-c.stop:
			return
		}
	}
}
