package ingestion

import (
	"context"
	"errors"
	"log"
	"time"

	"social-velocity-lab/internal/catalog"
	"social-velocity-lab/internal/domain"
	"social-velocity-lab/internal/idhash"
	"social-velocity-lab/internal/observability"
	"social-velocity-lab/internal/storage"
	"social-velocity-lab/internal/velocity"
)

// Runner consumes a post source, validates each post and stores them in
// batches. Duplicate posts (same ID) are skipped, not errors: feed
// replays after a reconnect re-deliver recent posts.
type Runner struct {
	source        PostSource
	postStore     storage.PostStore
	resolver      TickerResolver
	batchSize     int
	flushInterval time.Duration
	logger        *log.Logger
	now           func() time.Time
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Source    PostSource
	PostStore storage.PostStore

	// Resolver validates tickers outside the static catalog. Optional:
	// nil keeps every post with a non-empty normalized ticker.
	Resolver TickerResolver

	BatchSize     int           // Default: 50 posts per flush
	FlushInterval time.Duration // Default: 5s - flush partial batches periodically
	Logger        *log.Logger
	Now           func() time.Time
}

// NewRunner creates a new ingestion runner.
func NewRunner(opts RunnerOptions) *Runner {
	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = 50
	}

	flushInterval := opts.FlushInterval
	if flushInterval == 0 {
		flushInterval = 5 * time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Runner{
		source:        opts.Source,
		postStore:     opts.PostStore,
		resolver:      opts.Resolver,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        logger,
		now:           now,
	}
}

// Run starts continuous ingestion. It blocks until context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Println("Starting ingestion runner...")

	posts, err := r.source.Subscribe(ctx)
	if err != nil {
		return err
	}
	r.logger.Printf("Subscribed to post feed, batch size: %d, flush interval: %v", r.batchSize, r.flushInterval)

	flushTicker := time.NewTicker(r.flushInterval)
	defer flushTicker.Stop()

	var batch []*domain.Post

	for {
		select {
		case <-ctx.Done():
			r.flush(context.Background(), batch)
			r.logger.Println("Ingestion runner stopping...")
			return ctx.Err()

		case raw, ok := <-posts:
			if !ok {
				r.flush(context.Background(), batch)
				r.logger.Println("Post feed closed")
				return nil
			}

			observability.RecordPostReceived()
			post, ok := r.prepare(ctx, raw)
			if !ok {
				continue
			}

			batch = append(batch, post)
			if len(batch) >= r.batchSize {
				r.flush(ctx, batch)
				batch = nil
			}

		case <-flushTicker.C:
			if len(batch) > 0 {
				r.flush(ctx, batch)
				batch = nil
			}
		}
	}
}

// prepare validates a raw post and converts it to a domain post.
// Posts without a ticker are dropped; posts without an ID get a
// deterministic one so replays deduplicate.
func (r *Runner) prepare(ctx context.Context, raw *RawPost) (*domain.Post, bool) {
	if raw == nil {
		observability.RecordPostDropped("nil")
		return nil, false
	}

	ticker := catalog.Normalize(raw.Ticker)
	if ticker == "" {
		observability.RecordPostDropped("no_ticker")
		return nil, false
	}
	if r.resolver != nil && len(r.resolver.CompanyNames(ctx, ticker)) == 0 {
		observability.RecordPostDropped("unknown_ticker")
		return nil, false
	}

	id := raw.ID
	if id == "" {
		id = idhash.ComputePostID(ticker, raw.Author, raw.CreatedAt, raw.Text)
	}

	var createdAtMs int64
	if ts, ok := velocity.ParseTimestamp(raw.CreatedAt); ok {
		createdAtMs = ts.UnixMilli()
	}

	return &domain.Post{
		ID:          id,
		Ticker:      ticker,
		Text:        raw.Text,
		Author:      raw.Author,
		CreatedAt:   raw.CreatedAt,
		CreatedAtMs: createdAtMs,
		Retweets:    raw.Retweets,
		Replies:     raw.Replies,
		Quotes:      raw.Quotes,
		Impressions: raw.Impressions,
		StoredAt:    r.now().UnixMilli(),
	}, true
}

// flush stores a batch. The bulk path is atomic; when it hits a
// duplicate the batch falls back to per-post inserts so fresh posts
// still land while replayed ones are skipped.
func (r *Runner) flush(ctx context.Context, batch []*domain.Post) {
	if len(batch) == 0 {
		return
	}

	err := r.postStore.InsertBulk(ctx, batch)
	if err == nil {
		observability.RecordPostsStored(len(batch), float64(r.now().Unix()))
		return
	}
	if !errors.Is(err, storage.ErrDuplicateKey) {
		r.logger.Printf("[ingest] bulk insert failed: %v", err)
		observability.RecordPostDropped("store_error")
		return
	}

	stored := 0
	for _, post := range batch {
		err := r.postStore.Insert(ctx, post)
		switch {
		case err == nil:
			stored++
		case errors.Is(err, storage.ErrDuplicateKey):
			observability.RecordPostDropped("duplicate")
		default:
			r.logger.Printf("[ingest] insert %s failed: %v", post.ID, err)
			observability.RecordPostDropped("store_error")
		}
	}
	if stored > 0 {
		observability.RecordPostsStored(stored, float64(r.now().Unix()))
	}
}
