package domain

// HourlyProfile maps hour-of-day (0-23, UTC) to a post count.
type HourlyProfile [24]int

// Total returns the sum of all 24 hourly counts.
func (p HourlyProfile) Total() int {
	sum := 0
	for _, c := range p {
		sum += c
	}
	return sum
}

// Signal classifies actual-vs-baseline activity, ordered low to high.
type Signal string

const (
	SignalLow          Signal = "LOW"
	SignalNormal       Signal = "NORMAL"
	SignalElevated     Signal = "ELEVATED"
	SignalHighActivity Signal = "HIGH_ACTIVITY"
	SignalVeryHigh     Signal = "VERY_HIGH"
)

// Trend classifies short-window activity direction.
type Trend string

const (
	TrendAccelerating Trend = "accelerating"
	TrendDecelerating Trend = "decelerating"
	TrendStable       Trend = "stable"
)

// VelocityResult is the derived velocity state for a specific hour.
type VelocityResult struct {
	Hour     int     // hour-of-day (0-23, UTC)
	Actual   int     // observed post count for the hour
	Baseline int     // expected post count for the hour
	Velocity float64 // normalized 0-10 score
	Signal   Signal
	Trend    Trend
}

// VelocityMetrics is the output of the ratio*5 scoring path.
type VelocityMetrics struct {
	Velocity      float64 // normalized 0-10 score
	Trend         Trend
	Signal        Signal
	BaselineRatio float64 // current / max(baseline, 1)
}
