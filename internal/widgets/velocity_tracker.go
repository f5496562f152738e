package widgets

import (
	"context"

	"social-velocity-lab/internal/catalog"
	"social-velocity-lab/internal/domain"
	"social-velocity-lab/internal/velocity"
)

const maxTrackerPeers = 5

// VelocityTracker builds the velocity-tracker payload: the ticker's
// hourly chart for today plus a velocity summary of its category peers.
func (b *Builder) VelocityTracker(ctx context.Context, ticker string) (*domain.VelocityTrackerData, error) {
	state, err := b.loadState(ctx, ticker)
	if err != nil {
		return nil, err
	}

	hourly := make([]domain.HourlyPoint, 0, state.hour+1)
	for h := 0; h <= state.hour; h++ {
		hourly = append(hourly, domain.HourlyPoint{
			Time:     hourLabel(h),
			Hour:     h,
			Actual:   state.today[h],
			Baseline: state.baseline[h],
			Velocity: velocity.Score(state.today[h], state.baseline[h]),
		})
	}

	var peers []domain.PeerVelocity
	for _, peer := range peersOf(ticker, maxTrackerPeers) {
		ps, err := b.loadState(ctx, peer)
		if err != nil {
			return nil, err
		}
		peers = append(peers, domain.PeerVelocity{
			Ticker:         peer,
			Velocity:       ps.metrics.Velocity,
			Trend:          ps.metrics.Trend,
			Mentions:       ps.mentions,
			HourlyVelocity: ps.hourlyVelocities(),
		})
	}

	// Headline velocity and trend come from the hourly chart series,
	// not the raw counts: per-hour baselines vary, so the two differ.
	vs := state.hourlyVelocities()

	return &domain.VelocityTrackerData{
		Ticker:          ticker,
		Category:        catalog.Category(ticker),
		CurrentVelocity: vs[len(vs)-1],
		CurrentActual:   state.result.Actual,
		CurrentBaseline: state.result.Baseline,
		BaselineRatio:   state.metrics.BaselineRatio,
		Trend:           velocity.TrendFromVelocities(vs),
		Signal:          state.metrics.Signal,
		HourlyData:      hourly,
		CategoryPeers:   peers,
		GeneratedAt:     b.generatedAt(),
	}, nil
}
