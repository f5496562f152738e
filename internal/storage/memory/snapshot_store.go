package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"social-velocity-lab/internal/domain"
	"social-velocity-lab/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.VelocitySnapshot // keyed by composite key
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[string]*domain.VelocitySnapshot),
	}
}

// snapshotKey generates a unique key for a snapshot.
func snapshotKey(ticker string, hourStartMs int64) string {
	return fmt.Sprintf("%s|%d", ticker, hourStartMs)
}

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate (ticker, hour_start_ms).
func (s *SnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.VelocitySnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(snapshots))

	// First pass: check for duplicates (existing + intra-batch)
	for _, snap := range snapshots {
		if snap == nil || snap.Ticker == "" {
			return storage.ErrInvalidInput
		}
		key := snapshotKey(snap.Ticker, snap.HourStartMs)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, snap := range snapshots {
		key := snapshotKey(snap.Ticker, snap.HourStartMs)
		copy := *snap
		s.data[key] = &copy
	}

	return nil
}

// GetByTicker retrieves all snapshots for a ticker, ordered by hour_start_ms ASC.
func (s *SnapshotStore) GetByTicker(_ context.Context, ticker string) ([]*domain.VelocitySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.VelocitySnapshot
	for _, snap := range s.data {
		if snap.Ticker == ticker {
			copy := *snap
			result = append(result, &copy)
		}
	}

	sortSnapshots(result)
	return result, nil
}

// GetByTickerSince retrieves snapshots for a ticker with hour_start_ms >= since.
func (s *SnapshotStore) GetByTickerSince(_ context.Context, ticker string, since int64) ([]*domain.VelocitySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.VelocitySnapshot
	for _, snap := range s.data {
		if snap.Ticker == ticker && snap.HourStartMs >= since {
			copy := *snap
			result = append(result, &copy)
		}
	}

	sortSnapshots(result)
	return result, nil
}

// sortSnapshots orders snapshots by hour_start_ms ASC.
func sortSnapshots(snapshots []*domain.VelocitySnapshot) {
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].HourStartMs < snapshots[j].HourStartMs
	})
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
