package widgets

import (
	"context"
	"math"
	"sort"

	"social-velocity-lab/internal/domain"
)

const maxRadarPeers = 8

// CorrelationRadar builds the correlation-radar payload: category peers
// ranked by how closely their hourly mention pattern tracks the
// ticker's today.
func (b *Builder) CorrelationRadar(ctx context.Context, ticker string) (*domain.CorrelationRadarData, error) {
	state, err := b.loadState(ctx, ticker)
	if err != nil {
		return nil, err
	}

	base := hourlyCounts(state)

	var peers []domain.CorrelatedTicker
	for _, peer := range peersOf(ticker, maxRadarPeers) {
		ps, err := b.loadState(ctx, peer)
		if err != nil {
			return nil, err
		}
		peers = append(peers, domain.CorrelatedTicker{
			Ticker:      peer,
			Correlation: pearson(base, hourlyCounts(ps)),
			Velocity:    ps.metrics.Velocity,
			Mentions:    ps.mentions,
		})
	}

	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Correlation > peers[j].Correlation
	})

	return &domain.CorrelationRadarData{
		Ticker:      ticker,
		Peers:       peers,
		GeneratedAt: b.generatedAt(),
	}, nil
}

// hourlyCounts returns today's counts up to and including the current hour.
func hourlyCounts(s *tickerState) []float64 {
	counts := make([]float64, s.hour+1)
	for h := 0; h <= s.hour; h++ {
		counts[h] = float64(s.today[h])
	}
	return counts
}

// pearson computes the Pearson correlation coefficient of two equal
// length series. Returns 0 when either series has no variance.
func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
