// Package velocity computes normalized social-activity scores against
// hourly baselines built from historical weekday post counts.
package velocity

import (
	"math"
	"time"

	"social-velocity-lab/internal/domain"
)

// fallbackDivisor normalizes total post count to an expected per-hour
// rate when an hour has no historical weekday samples (3 days x 24h).
const fallbackDivisor = 72

// Engine converts timestamped posts into hourly baselines and velocity
// scores. It is stateless apart from the clock and safe for concurrent
// use.
type Engine struct {
	now func() time.Time
}

// NewEngine creates an engine using the system clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineAt creates an engine with a fixed clock, for deterministic
// computation and tests.
func NewEngineAt(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Timestamp layouts accepted from post records, tried in order.
// All values are interpreted as UTC.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp resolves a raw post timestamp to UTC. The second
// return is false when the value is missing or unparseable; such
// records are excluded from all computations.
func ParseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ComputeHourlyBaselines buckets posts by UTC hour-of-day and returns
// today's actual counts, the expected per-hour baseline, and the
// number of historical weekdays that contributed to it.
//
// Date groups are classified as today, weekend (UTC Sat/Sun), or
// historical weekday. Weekend groups are excluded from baseline
// accumulation entirely. Hours with no weekday samples fall back to
// totalCount/72; every baseline hour is floored at 1 so downstream
// ratios never divide by zero.
func (e *Engine) ComputeHourlyBaselines(posts []*domain.Post, totalCount int) (today, baseline domain.HourlyProfile, weekdaysObserved int) {
	todayKey := e.now().UTC().Format("2006-01-02")

	// Group per-hour histograms by calendar date, dropping records
	// with unresolvable timestamps.
	byDate := make(map[string]*domain.HourlyProfile)
	for _, p := range posts {
		if p == nil {
			continue
		}
		ts, ok := ParseTimestamp(p.CreatedAt)
		if !ok {
			continue
		}
		key := ts.Format("2006-01-02")
		hist, exists := byDate[key]
		if !exists {
			hist = &domain.HourlyProfile{}
			byDate[key] = hist
		}
		hist[ts.Hour()]++
	}

	// Accumulate historical weekday samples per hour. Each weekday
	// date contributes one sample for every hour, zeros included.
	var sums [24]int
	for key, hist := range byDate {
		if key == todayKey {
			today = *hist
			continue
		}
		date, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		weekdaysObserved++
		for h := 0; h < 24; h++ {
			sums[h] += hist[h]
		}
	}

	fallback := fallbackBaseline(totalCount)
	for h := 0; h < 24; h++ {
		if weekdaysObserved > 0 {
			mean := float64(sums[h]) / float64(weekdaysObserved)
			baseline[h] = maxInt(1, int(math.Round(mean)))
		} else {
			baseline[h] = fallback
		}
	}
	return today, baseline, weekdaysObserved
}

// VelocityAt returns the full velocity state for one hour of the given
// profiles, scored with the baseline-centered formula. Trend is
// classified from today's counts up to and including the hour.
func (e *Engine) VelocityAt(today, baseline domain.HourlyProfile, hour int) domain.VelocityResult {
	if hour < 0 || hour > 23 {
		return domain.VelocityResult{
			Hour:     hour,
			Velocity: neutralVelocity,
			Signal:   domain.SignalNormal,
			Trend:    domain.TrendStable,
		}
	}
	actual := today[hour]
	base := baseline[hour]
	counts := make([]int, hour+1)
	copy(counts, today[:hour+1])

	m := ComputeMetrics(actual, base, counts)
	return domain.VelocityResult{
		Hour:     hour,
		Actual:   actual,
		Baseline: base,
		Velocity: Score(actual, base),
		Signal:   m.Signal,
		Trend:    m.Trend,
	}
}

// fallbackBaseline is the totalCount/72 heuristic, floored at 1.
func fallbackBaseline(totalCount int) int {
	if totalCount < 0 {
		totalCount = 0
	}
	return maxInt(1, int(math.Round(float64(totalCount)/fallbackDivisor)))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
