package velocity

import (
	"social-velocity-lab/internal/domain"
)

// neutralVelocity is the safe default returned when inputs are out of
// range: quiet-but-normal rather than an error.
const neutralVelocity = 5.0

// Score maps actual-vs-baseline activity onto the 0-10 chart scale.
// ratio = actual / max(baseline, 1); velocity = 2.5 + ratio*2.5.
// At ratio 1 the score is the 5.0 midpoint, at ratio 0 it bottoms out
// at 2.5 (quiet but present), and it saturates at 10 from ratio 3 up.
//
// This is deliberately a different linear mapping than ComputeMetrics
// uses; the two formulas serve different call sites and are kept as
// distinct operations.
func Score(actual, baseline int) float64 {
	if actual < 0 || baseline < 0 {
		return neutralVelocity
	}
	ratio := float64(actual) / float64(maxInt(baseline, 1))
	return clamp(2.5+ratio*2.5, 0, 10)
}

// ComputeMetrics scores current activity against a baseline with the
// ratio*5 mapping and classifies signal and trend. historicalCounts is
// an optional chronological series used only for trend classification.
// Malformed (negative) inputs degrade to the neutral result instead of
// erroring.
func ComputeMetrics(currentCount, baselineCount int, historicalCounts []int) domain.VelocityMetrics {
	if currentCount < 0 || baselineCount < 0 {
		return domain.VelocityMetrics{
			Velocity:      neutralVelocity,
			Trend:         domain.TrendStable,
			Signal:        domain.SignalNormal,
			BaselineRatio: 1,
		}
	}

	ratio := float64(currentCount) / float64(maxInt(baselineCount, 1))
	return domain.VelocityMetrics{
		Velocity:      clamp(ratio*5, 0, 10),
		Trend:         classifyTrend(historicalCounts),
		Signal:        classifySignal(ratio),
		BaselineRatio: ratio,
	}
}

// classifySignal maps a baseline ratio to its ordinal signal.
// Evaluated in fixed priority order; first match wins.
func classifySignal(ratio float64) domain.Signal {
	switch {
	case ratio > 2.0:
		return domain.SignalVeryHigh
	case ratio > 1.5:
		return domain.SignalHighActivity
	case ratio > 1.2:
		return domain.SignalElevated
	case ratio < 0.8:
		return domain.SignalLow
	default:
		return domain.SignalNormal
	}
}

// classifyTrend compares the mean of the last 3 counts against the
// mean of the 3 before them. Fewer than 3 recent entries, or fewer
// than 3 earlier entries, yields stable.
func classifyTrend(counts []int) domain.Trend {
	n := len(counts)
	if n < 3 {
		return domain.TrendStable
	}

	avgRecent := meanInts(counts[n-3:])
	avgEarlier := avgRecent
	if n >= 6 {
		avgEarlier = meanInts(counts[n-6 : n-3])
	}

	switch {
	case avgRecent > avgEarlier*1.1:
		return domain.TrendAccelerating
	case avgRecent < avgEarlier*0.9:
		return domain.TrendDecelerating
	default:
		return domain.TrendStable
	}
}

// classifyTrendFloats is classifyTrend over an already-derived float
// series (e.g. hourly velocities).
func classifyTrendFloats(values []float64) domain.Trend {
	n := len(values)
	if n < 3 {
		return domain.TrendStable
	}

	avgRecent := meanFloats(values[n-3:])
	avgEarlier := avgRecent
	if n >= 6 {
		avgEarlier = meanFloats(values[n-6 : n-3])
	}

	switch {
	case avgRecent > avgEarlier*1.1:
		return domain.TrendAccelerating
	case avgRecent < avgEarlier*0.9:
		return domain.TrendDecelerating
	default:
		return domain.TrendStable
	}
}

// TrendFromVelocities classifies trend from a chronological velocity
// series, recent 3 hours against the 3 before.
func TrendFromVelocities(velocities []float64) domain.Trend {
	return classifyTrendFloats(velocities)
}

func meanInts(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

func meanFloats(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
