package widgets

import (
	"context"
	"sort"

	"social-velocity-lab/internal/catalog"
	"social-velocity-lab/internal/domain"
)

const maxRisingTickers = 10

// RisingTickers builds the rising-tickers payload: tickers ranked by
// how far above baseline they currently run. An empty category ranks
// the whole catalog.
func (b *Builder) RisingTickers(ctx context.Context, category string) (*domain.RisingTickersData, error) {
	var candidates []string
	if category == "" {
		candidates = catalog.AllTickers()
	} else {
		candidates = catalog.CategoryMembers(category)
	}

	var tickers []domain.RisingTicker
	for _, ticker := range candidates {
		state, err := b.loadState(ctx, ticker)
		if err != nil {
			return nil, err
		}
		tickers = append(tickers, domain.RisingTicker{
			Ticker:        ticker,
			Category:      catalog.Category(ticker),
			Velocity:      state.metrics.Velocity,
			BaselineRatio: state.metrics.BaselineRatio,
			Mentions:      state.mentions,
			Signal:        state.metrics.Signal,
			Trend:         state.metrics.Trend,
		})
	}

	sort.Slice(tickers, func(i, j int) bool {
		if tickers[i].BaselineRatio != tickers[j].BaselineRatio {
			return tickers[i].BaselineRatio > tickers[j].BaselineRatio
		}
		return tickers[i].Mentions > tickers[j].Mentions
	})
	if len(tickers) > maxRisingTickers {
		tickers = tickers[:maxRisingTickers]
	}

	return &domain.RisingTickersData{
		Category:    category,
		Tickers:     tickers,
		GeneratedAt: b.generatedAt(),
	}, nil
}
