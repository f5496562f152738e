// Package cache provides the demo-grade in-process structures wrapped
// around widget serving: a time-bounded response cache and a
// fixed-window rate limiter. Neither is a durability or correctness
// boundary.
package cache

import (
	"sync"
	"time"
)

// entry is one cached value with its expiry deadline.
type entry struct {
	value     any
	expiresAt time.Time
}

// TTL is a key-value cache with per-entry time-to-live and lazy
// expiry: stale entries are dropped on Get, not by a sweeper.
type TTL struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	data map[string]entry
}

// NewTTL creates a cache whose entries expire after ttl.
func NewTTL(ttl time.Duration) *TTL {
	return NewTTLWithClock(ttl, time.Now)
}

// NewTTLWithClock creates a cache with an injectable clock for tests.
func NewTTLWithClock(ttl time.Duration, now func() time.Time) *TTL {
	return &TTL{
		ttl:  ttl,
		now:  now,
		data: make(map[string]entry),
	}
}

// Get returns the cached value for key, or (nil, false) when absent or
// expired. Expired entries are removed on access.
func (c *TTL) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.data, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, resetting its expiry deadline.
func (c *TTL) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = entry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Len returns the number of stored entries, including any not yet
// lazily expired.
func (c *TTL) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
