package domain

// VelocitySnapshot is a persisted velocity observation for one ticker
// at one hour. Corresponds to velocity_snapshots table in ClickHouse.
type VelocitySnapshot struct {
	ID               string  // deterministic snapshot identifier
	Ticker           string  // normalized ticker
	HourStartMs      int64   // UTC hour boundary, Unix milliseconds
	Hour             int     // hour-of-day (0-23, UTC)
	Actual           int     // observed post count
	Baseline         int     // expected post count
	Velocity         float64 // 0-10 score
	BaselineRatio    float64
	Signal           string
	Trend            string
	WeekdaysObserved int   // historical weekdays backing the baseline
	CreatedAtMs      int64 // snapshot creation timestamp (ms)
}
