package memory

import (
	"context"
	"sort"
	"sync"

	"social-velocity-lab/internal/domain"
	"social-velocity-lab/internal/storage"
)

// PostStore is an in-memory implementation of storage.PostStore.
type PostStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Post // keyed by post ID
}

// NewPostStore creates a new in-memory post store.
func NewPostStore() *PostStore {
	return &PostStore{
		data: make(map[string]*domain.Post),
	}
}

// Insert adds a new post. Returns ErrDuplicateKey if the ID exists.
func (s *PostStore) Insert(_ context.Context, p *domain.Post) error {
	if p == nil || p.ID == "" || p.Ticker == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.ID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *p
	s.data[p.ID] = &copy
	return nil
}

// InsertBulk adds multiple posts atomically. Fails entire batch on any duplicate.
func (s *PostStore) InsertBulk(_ context.Context, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track IDs in this batch to detect intra-batch duplicates
	batchIDs := make(map[string]struct{}, len(posts))

	// First pass: check for duplicates (existing + intra-batch)
	for _, p := range posts {
		if p == nil || p.ID == "" || p.Ticker == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[p.ID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchIDs[p.ID]; exists {
			return storage.ErrDuplicateKey
		}
		batchIDs[p.ID] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range posts {
		copy := *p
		s.data[p.ID] = &copy
	}

	return nil
}

// GetByID retrieves a post by its ID. Returns ErrNotFound if not exists.
func (s *PostStore) GetByID(_ context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	copy := *p
	return &copy, nil
}

// GetByTicker retrieves all posts for a ticker, ordered by created_at_ms ASC.
func (s *PostStore) GetByTicker(_ context.Context, ticker string) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Post
	for _, p := range s.data {
		if p.Ticker == ticker {
			copy := *p
			result = append(result, &copy)
		}
	}

	sortPosts(result)
	return result, nil
}

// GetByTickerSince retrieves posts for a ticker with created_at_ms >= since.
func (s *PostStore) GetByTickerSince(_ context.Context, ticker string, since int64) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Post
	for _, p := range s.data {
		if p.Ticker == ticker && p.CreatedAtMs >= since {
			copy := *p
			result = append(result, &copy)
		}
	}

	sortPosts(result)
	return result, nil
}

// CountByTicker returns the number of stored posts for a ticker.
func (s *PostStore) CountByTicker(_ context.Context, ticker string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, p := range s.data {
		if p.Ticker == ticker {
			count++
		}
	}
	return count, nil
}

// sortPosts orders posts by created_at_ms ASC, breaking ties by ID.
func sortPosts(posts []*domain.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAtMs != posts[j].CreatedAtMs {
			return posts[i].CreatedAtMs < posts[j].CreatedAtMs
		}
		return posts[i].ID < posts[j].ID
	})
}

var _ storage.PostStore = (*PostStore)(nil)
