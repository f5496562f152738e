package widgets

import (
	"context"
	"sort"

	"social-velocity-lab/internal/catalog"
	"social-velocity-lab/internal/domain"
)

// CategoryHeatmap builds the category-heatmap payload: every catalog
// category with per-ticker velocity cells, hottest categories first.
func (b *Builder) CategoryHeatmap(ctx context.Context) (*domain.CategoryHeatmapData, error) {
	var categories []domain.CategoryHeat

	for _, name := range catalog.Categories() {
		members := catalog.CategoryMembers(name)

		var tickers []domain.TickerHeat
		sum := 0.0
		for _, ticker := range members {
			state, err := b.loadState(ctx, ticker)
			if err != nil {
				return nil, err
			}
			tickers = append(tickers, domain.TickerHeat{
				Ticker:   ticker,
				Velocity: state.metrics.Velocity,
				Mentions: state.mentions,
				Trend:    state.metrics.Trend,
			})
			sum += state.metrics.Velocity
		}

		avg := 0.0
		if len(tickers) > 0 {
			avg = sum / float64(len(tickers))
		}

		sort.Slice(tickers, func(i, j int) bool {
			return tickers[i].Velocity > tickers[j].Velocity
		})

		categories = append(categories, domain.CategoryHeat{
			Name:        name,
			AvgVelocity: avg,
			Tickers:     tickers,
		})
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i].AvgVelocity > categories[j].AvgVelocity
	})

	return &domain.CategoryHeatmapData{
		Categories:  categories,
		GeneratedAt: b.generatedAt(),
	}, nil
}
