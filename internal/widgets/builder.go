// Package widgets assembles the finance widget payloads served by the
// HTTP API from stored posts and the velocity engine.
package widgets

import (
	"context"
	"fmt"
	"time"

	"social-velocity-lab/internal/catalog"
	"social-velocity-lab/internal/domain"
	"social-velocity-lab/internal/storage"
	"social-velocity-lab/internal/velocity"
)

const defaultLookback = 7 * 24 * time.Hour

// Builder computes widget payloads on demand. It is safe for concurrent
// use; all state lives in the post store.
type Builder struct {
	posts    storage.PostStore
	engine   *velocity.Engine
	lookback time.Duration
	now      func() time.Time
}

// NewBuilder creates a builder reading posts from the given store.
func NewBuilder(posts storage.PostStore) *Builder {
	return NewBuilderAt(posts, time.Now)
}

// NewBuilderAt creates a builder with a fixed clock for deterministic
// output and tests.
func NewBuilderAt(posts storage.PostStore, now func() time.Time) *Builder {
	return &Builder{
		posts:    posts,
		engine:   velocity.NewEngineAt(now),
		lookback: defaultLookback,
		now:      now,
	}
}

// tickerState is the derived velocity state for one ticker at the
// current hour.
type tickerState struct {
	ticker   string
	today    domain.HourlyProfile
	baseline domain.HourlyProfile
	weekdays int
	hour     int
	result   domain.VelocityResult
	metrics  domain.VelocityMetrics
	mentions int // today's total post count
}

// loadState fetches the ticker's recent posts and computes its velocity
// state at the current UTC hour.
func (b *Builder) loadState(ctx context.Context, ticker string) (*tickerState, error) {
	now := b.now().UTC()
	since := now.Add(-b.lookback).UnixMilli()

	posts, err := b.posts.GetByTickerSince(ctx, ticker, since)
	if err != nil {
		return nil, fmt.Errorf("load posts for %s: %w", ticker, err)
	}

	today, baseline, weekdays := b.engine.ComputeHourlyBaselines(posts, len(posts))
	hour := now.Hour()

	counts := make([]int, hour+1)
	copy(counts, today[:hour+1])

	return &tickerState{
		ticker:   ticker,
		today:    today,
		baseline: baseline,
		weekdays: weekdays,
		hour:     hour,
		result:   b.engine.VelocityAt(today, baseline, hour),
		metrics:  velocity.ComputeMetrics(today[hour], baseline[hour], counts),
		mentions: today.Total(),
	}, nil
}

// hourlyVelocities scores every hour up to and including the current
// one with the chart formula.
func (s *tickerState) hourlyVelocities() []float64 {
	vs := make([]float64, s.hour+1)
	for h := 0; h <= s.hour; h++ {
		vs[h] = velocity.Score(s.today[h], s.baseline[h])
	}
	return vs
}

// hourLabel formats an hour-of-day as "HH:00".
func hourLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// generatedAt formats the build timestamp for payloads.
func (b *Builder) generatedAt() string {
	return b.now().UTC().Format(time.RFC3339)
}

// peersOf returns up to max category peers for a ticker.
func peersOf(ticker string, max int) []string {
	peers := catalog.Peers(ticker)
	if len(peers) > max {
		peers = peers[:max]
	}
	return peers
}
