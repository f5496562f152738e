package widgets

import (
	"context"
	"math"

	"social-velocity-lab/internal/domain"
	"social-velocity-lab/internal/velocity"
)

// Hour-over-hour velocity deltas above these magnitudes raise alerts.
const (
	spikeThreshold = 2.0
	surgeThreshold = 3.5
)

// AccelerationAlerts builds the acceleration-alerts payload: every
// hour-over-hour velocity jump of today that crossed a threshold.
func (b *Builder) AccelerationAlerts(ctx context.Context, ticker string) (*domain.AccelerationAlertsData, error) {
	state, err := b.loadState(ctx, ticker)
	if err != nil {
		return nil, err
	}

	vs := state.hourlyVelocities()

	var alerts []domain.AccelerationAlert
	for h := 1; h < len(vs); h++ {
		delta := vs[h] - vs[h-1]
		kind := classifyAlert(delta)
		if kind == "" {
			continue
		}
		alerts = append(alerts, domain.AccelerationAlert{
			Time:             hourLabel(h),
			Hour:             h,
			Magnitude:        math.Abs(delta),
			Type:             kind,
			PreviousVelocity: vs[h-1],
			CurrentVelocity:  vs[h],
		})
	}

	var current float64
	if len(vs) >= 2 {
		current = vs[len(vs)-1] - vs[len(vs)-2]
	}

	return &domain.AccelerationAlertsData{
		Ticker:              ticker,
		Alerts:              alerts,
		CurrentAcceleration: current,
		Trend:               velocity.TrendFromVelocities(vs),
		GeneratedAt:         b.generatedAt(),
	}, nil
}

// classifyAlert maps a velocity delta to an alert kind, or "" when the
// move is below every threshold.
func classifyAlert(delta float64) string {
	switch {
	case delta >= surgeThreshold:
		return domain.AlertSurge
	case delta >= spikeThreshold:
		return domain.AlertSpike
	case delta <= -spikeThreshold:
		return domain.AlertDrop
	default:
		return ""
	}
}
