package cache

import (
	"sync"
	"time"
)

// window tracks request count for one key's current window.
type window struct {
	count     int
	startedAt time.Time
}

// RateLimiter is a fixed-window per-key request counter. The first
// request for a key opens its window; once the window elapses the next
// request opens a fresh one.
type RateLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	data map[string]*window
}

// NewRateLimiter allows max requests per key per window duration.
func NewRateLimiter(max int, windowDur time.Duration) *RateLimiter {
	return NewRateLimiterWithClock(max, windowDur, time.Now)
}

// NewRateLimiterWithClock creates a limiter with an injectable clock.
func NewRateLimiterWithClock(max int, windowDur time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		max:    max,
		window: windowDur,
		now:    now,
		data:   make(map[string]*window),
	}
}

// Allow records a request for key and reports whether it is within the
// limit.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	w, ok := r.data[key]
	if !ok || now.Sub(w.startedAt) > r.window {
		r.data[key] = &window{count: 1, startedAt: now}
		return true
	}

	if w.count >= r.max {
		return false
	}
	w.count++
	return true
}
