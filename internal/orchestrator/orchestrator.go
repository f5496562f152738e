// Package orchestrator coordinates the hourly snapshot pipeline:
// load posts → compute velocity state → persist snapshots.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"social-velocity-lab/internal/catalog"
	"social-velocity-lab/internal/domain"
	"social-velocity-lab/internal/idhash"
	"social-velocity-lab/internal/storage"
	"social-velocity-lab/internal/velocity"
)

const defaultLookback = 7 * 24 * time.Hour

// Orchestrator computes and persists one velocity snapshot per tracked
// ticker for the current UTC hour. Re-running within the same hour is a
// no-op: duplicates are skipped, not errors.
type Orchestrator struct {
	postStore     storage.PostStore
	snapshotStore storage.SnapshotStore
	tickers       []string
	lookback      time.Duration
	clock         func() time.Time
	verbose       bool
}

// Options for creating Orchestrator.
type Options struct {
	PostStore     storage.PostStore
	SnapshotStore storage.SnapshotStore

	// Tickers to snapshot. Defaults to the full catalog.
	Tickers []string

	// Lookback bounds how much post history feeds the baselines.
	Lookback time.Duration

	// Clock for deterministic runs. Defaults to time.Now.
	Clock func() time.Time

	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	tickers := opts.Tickers
	if len(tickers) == 0 {
		tickers = catalog.AllTickers()
	}

	lookback := opts.Lookback
	if lookback == 0 {
		lookback = defaultLookback
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Orchestrator{
		postStore:     opts.PostStore,
		snapshotStore: opts.SnapshotStore,
		tickers:       tickers,
		lookback:      lookback,
		clock:         clock,
		verbose:       opts.Verbose,
	}
}

// RunResult contains results from one snapshot run.
type RunResult struct {
	TickersProcessed  int
	SnapshotsCreated  int
	DuplicatesSkipped int
	Errors            []string
}

// Run computes and stores snapshots for every tracked ticker at the
// current hour. Per-ticker failures are collected, not fatal.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	now := o.clock().UTC()
	hourStart := now.Truncate(time.Hour)
	since := now.Add(-o.lookback).UnixMilli()
	engine := velocity.NewEngineAt(o.clock)

	o.log("Snapshot run for hour %s, %d tickers", hourStart.Format(time.RFC3339), len(o.tickers))

	for _, ticker := range o.tickers {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.TickersProcessed++

		snap, err := o.buildSnapshot(ctx, engine, ticker, now, hourStart, since)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", ticker, err))
			continue
		}

		err = o.snapshotStore.InsertBulk(ctx, []*domain.VelocitySnapshot{snap})
		switch {
		case err == nil:
			result.SnapshotsCreated++
		case errors.Is(err, storage.ErrDuplicateKey):
			result.DuplicatesSkipped++
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("%s: store snapshot: %v", ticker, err))
		}
	}

	o.log("Snapshot run done: %d created, %d duplicates, %d errors",
		result.SnapshotsCreated, result.DuplicatesSkipped, len(result.Errors))
	return result, nil
}

// buildSnapshot computes one ticker's velocity state at the given hour.
func (o *Orchestrator) buildSnapshot(ctx context.Context, engine *velocity.Engine, ticker string, now, hourStart time.Time, since int64) (*domain.VelocitySnapshot, error) {
	posts, err := o.postStore.GetByTickerSince(ctx, ticker, since)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}

	today, baseline, weekdays := engine.ComputeHourlyBaselines(posts, len(posts))
	hour := now.Hour()
	res := engine.VelocityAt(today, baseline, hour)

	counts := make([]int, hour+1)
	copy(counts, today[:hour+1])
	m := velocity.ComputeMetrics(today[hour], baseline[hour], counts)

	return &domain.VelocitySnapshot{
		ID:               idhash.ComputeSnapshotID(ticker, hourStart.UnixMilli()),
		Ticker:           ticker,
		HourStartMs:      hourStart.UnixMilli(),
		Hour:             hour,
		Actual:           res.Actual,
		Baseline:         res.Baseline,
		Velocity:         m.Velocity,
		BaselineRatio:    m.BaselineRatio,
		Signal:           string(m.Signal),
		Trend:            string(m.Trend),
		WeekdaysObserved: weekdays,
		CreatedAtMs:      now.UnixMilli(),
	}, nil
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
