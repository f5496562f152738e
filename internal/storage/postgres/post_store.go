package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"social-velocity-lab/internal/domain"
	"social-velocity-lab/internal/storage"
)

// PostStore implements storage.PostStore using PostgreSQL.
type PostStore struct {
	pool *Pool
}

// NewPostStore creates a new PostStore.
func NewPostStore(pool *Pool) *PostStore {
	return &PostStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PostStore = (*PostStore)(nil)

const insertPostQuery = `
	INSERT INTO posts (
		id, ticker, body, author, created_at_raw, created_at_ms,
		retweets, replies, quotes, impressions, stored_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// Insert adds a new post. Returns ErrDuplicateKey if the ID exists.
func (s *PostStore) Insert(ctx context.Context, p *domain.Post) error {
	if p == nil || p.ID == "" || p.Ticker == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertPostQuery,
		p.ID,
		p.Ticker,
		p.Text,
		p.Author,
		p.CreatedAt,
		p.CreatedAtMs,
		p.Retweets,
		p.Replies,
		p.Quotes,
		p.Impressions,
		p.StoredAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// InsertBulk adds multiple posts atomically. Fails entire batch on any duplicate.
func (s *PostStore) InsertBulk(ctx context.Context, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range posts {
		if p == nil || p.ID == "" || p.Ticker == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, insertPostQuery,
			p.ID,
			p.Ticker,
			p.Text,
			p.Author,
			p.CreatedAt,
			p.CreatedAtMs,
			p.Retweets,
			p.Replies,
			p.Quotes,
			p.Impressions,
			p.StoredAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert post in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves a post by its ID. Returns ErrNotFound if not exists.
func (s *PostStore) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query := `
		SELECT id, ticker, body, author, created_at_raw, created_at_ms,
		       retweets, replies, quotes, impressions, stored_at
		FROM posts
		WHERE id = $1
	`

	var p domain.Post
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Ticker,
		&p.Text,
		&p.Author,
		&p.CreatedAt,
		&p.CreatedAtMs,
		&p.Retweets,
		&p.Replies,
		&p.Quotes,
		&p.Impressions,
		&p.StoredAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get post by id: %w", err)
	}
	return &p, nil
}

// GetByTicker retrieves all posts for a ticker, ordered by created_at_ms ASC.
func (s *PostStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.Post, error) {
	query := `
		SELECT id, ticker, body, author, created_at_raw, created_at_ms,
		       retweets, replies, quotes, impressions, stored_at
		FROM posts
		WHERE ticker = $1
		ORDER BY created_at_ms ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("get posts by ticker: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// GetByTickerSince retrieves posts for a ticker with created_at_ms >= since.
func (s *PostStore) GetByTickerSince(ctx context.Context, ticker string, since int64) ([]*domain.Post, error) {
	query := `
		SELECT id, ticker, body, author, created_at_raw, created_at_ms,
		       retweets, replies, quotes, impressions, stored_at
		FROM posts
		WHERE ticker = $1 AND created_at_ms >= $2
		ORDER BY created_at_ms ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker, since)
	if err != nil {
		return nil, fmt.Errorf("get posts by ticker since: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// CountByTicker returns the number of stored posts for a ticker.
func (s *PostStore) CountByTicker(ctx context.Context, ticker string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM posts WHERE ticker = $1`, ticker).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts by ticker: %w", err)
	}
	return count, nil
}

// scanPosts scans multiple rows into a slice of Post.
func scanPosts(rows pgx.Rows) ([]*domain.Post, error) {
	var posts []*domain.Post

	for rows.Next() {
		var p domain.Post

		err := rows.Scan(
			&p.ID,
			&p.Ticker,
			&p.Text,
			&p.Author,
			&p.CreatedAt,
			&p.CreatedAtMs,
			&p.Retweets,
			&p.Replies,
			&p.Quotes,
			&p.Impressions,
			&p.StoredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan post row: %w", err)
		}

		posts = append(posts, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post rows: %w", err)
	}

	return posts, nil
}
