package widgets

import (
	"context"

	"social-velocity-lab/internal/domain"
	"social-velocity-lab/internal/velocity"
)

// PortfolioAggregator builds the portfolio-aggregator payload: the
// velocity state of each holding plus a portfolio-level summary scored
// over the summed counts.
func (b *Builder) PortfolioAggregator(ctx context.Context, holdings []string) (*domain.PortfolioAggregatorData, error) {
	var (
		rows          []domain.HoldingVelocity
		sumVelocity   float64
		totalMentions int
		sumActual     int
		sumBaseline   int
	)

	for _, ticker := range holdings {
		state, err := b.loadState(ctx, ticker)
		if err != nil {
			return nil, err
		}
		rows = append(rows, domain.HoldingVelocity{
			Ticker:        ticker,
			Velocity:      state.metrics.Velocity,
			BaselineRatio: state.metrics.BaselineRatio,
			Mentions:      state.mentions,
			Signal:        state.metrics.Signal,
			Trend:         state.metrics.Trend,
		})
		sumVelocity += state.metrics.Velocity
		totalMentions += state.mentions
		sumActual += state.result.Actual
		sumBaseline += state.result.Baseline
	}

	avg := 0.0
	signal := domain.SignalNormal
	if len(rows) > 0 {
		avg = sumVelocity / float64(len(rows))
		signal = velocity.ComputeMetrics(sumActual, sumBaseline, nil).Signal
	}

	return &domain.PortfolioAggregatorData{
		Holdings:      rows,
		AvgVelocity:   avg,
		TotalMentions: totalMentions,
		Signal:        signal,
		GeneratedAt:   b.generatedAt(),
	}, nil
}
