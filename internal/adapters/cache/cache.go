// Package cache provides a small TTL cache for catalog lookup responses.
// It replaces ad-hoc global maps with expiry timestamps: every entry is a
// (value, insertedAt) pair, and the TTL policy is configured per cache.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Default cache configuration constants.
const (
	defaultTTL     = 5 * time.Minute
	defaultMaxSize = 1000
)

// Option applies a configuration option to a Cache.
type Option func(*settings)

type settings struct {
	ttl     time.Duration
	maxSize int
	clock   clockwork.Clock
}

// WithTTL sets how long entries stay valid.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxSize bounds the number of live entries; the stalest entry is
// evicted on overflow. maxSize <= 0 means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(s *settings) {
		s.maxSize = maxSize
	}
}

// WithClock injects the time source, letting tests advance expiry without
// sleeping.
func WithClock(clock clockwork.Clock) Option {
	return func(s *settings) {
		if clock != nil {
			s.clock = clock
		}
	}
}

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Cache is a concurrency-safe map of string keys to values with a fixed
// TTL. Zero value is not usable; construct with New.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	maxSize int
	clock   clockwork.Clock
}

// New creates a cache with the given options.
func New[V any](opts ...Option) *Cache[V] {
	s := settings{
		ttl:     defaultTTL,
		maxSize: defaultMaxSize,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     s.ttl,
		maxSize: s.maxSize,
		clock:   s.clock,
	}
}

// Get returns the live value for key. Expired entries are treated as
// absent and dropped lazily.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if c.clock.Since(e.insertedAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry.
		if cur, still := c.entries[key]; still && c.clock.Since(cur.insertedAt) >= c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, refreshing its insertion time.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictStalest()
	}
	c.entries[key] = entry[V]{value: value, insertedAt: c.clock.Now()}
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// evictStalest removes the entry with the oldest insertion time. Must be
// called with c.mu held for writing.
func (c *Cache[V]) evictStalest() {
	var (
		stalest string
		oldest  time.Time
		found   bool
	)
	for k, e := range c.entries {
		if !found || e.insertedAt.Before(oldest) {
			stalest, oldest, found = k, e.insertedAt, true
		}
	}
	if found {
		delete(c.entries, stalest)
	}
}
