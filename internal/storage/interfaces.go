package storage

import (
	"context"

	"social-velocity-lab/internal/domain"
)

// PostStore provides access to posts storage.
type PostStore interface {
	// Insert adds a new post. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, p *domain.Post) error

	// InsertBulk adds multiple posts atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, posts []*domain.Post) error

	// GetByID retrieves a post by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Post, error)

	// GetByTicker retrieves all posts for a ticker, ordered by created_at_ms ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.Post, error)

	// GetByTickerSince retrieves posts for a ticker with created_at_ms >= since,
	// ordered by created_at_ms ASC.
	GetByTickerSince(ctx context.Context, ticker string, since int64) ([]*domain.Post, error)

	// CountByTicker returns the number of stored posts for a ticker.
	CountByTicker(ctx context.Context, ticker string) (int, error)
}

// SnapshotStore provides access to velocity_snapshots storage.
type SnapshotStore interface {
	// InsertBulk adds multiple snapshots. Fails entire batch on duplicate (ticker, hour_start_ms).
	InsertBulk(ctx context.Context, snapshots []*domain.VelocitySnapshot) error

	// GetByTicker retrieves all snapshots for a ticker, ordered by hour_start_ms ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.VelocitySnapshot, error)

	// GetByTickerSince retrieves snapshots for a ticker with hour_start_ms >= since,
	// ordered by hour_start_ms ASC.
	GetByTickerSince(ctx context.Context, ticker string, since int64) ([]*domain.VelocitySnapshot, error)
}
