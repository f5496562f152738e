package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"social-velocity-lab/internal/domain"
	"social-velocity-lab/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate (ticker, hour_start_ms).
func (s *SnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.VelocitySnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		ticker      string
		hourStartMs int64
	}
	seen := make(map[key]struct{})
	for _, snap := range snapshots {
		if snap == nil || snap.Ticker == "" {
			return storage.ErrInvalidInput
		}
		k := key{snap.Ticker, snap.HourStartMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, snap := range snapshots {
		exists, err := s.exists(ctx, snap.Ticker, snap.HourStartMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO velocity_snapshots (
			id, ticker, hour_start_ms, hour, actual, baseline,
			velocity, baseline_ratio, signal, trend, weekdays_observed, created_at_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			snap.ID, snap.Ticker, uint64(snap.HourStartMs), uint8(snap.Hour),
			uint32(snap.Actual), uint32(snap.Baseline),
			snap.Velocity, snap.BaselineRatio, snap.Signal, snap.Trend,
			uint8(snap.WeekdaysObserved), uint64(snap.CreatedAtMs),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTicker retrieves all snapshots for a ticker, ordered by hour_start_ms ASC.
func (s *SnapshotStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.VelocitySnapshot, error) {
	query := `
		SELECT id, ticker, hour_start_ms, hour, actual, baseline,
		       velocity, baseline_ratio, signal, trend, weekdays_observed, created_at_ms
		FROM velocity_snapshots
		WHERE ticker = ?
		ORDER BY hour_start_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("query by ticker: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// GetByTickerSince retrieves snapshots for a ticker with hour_start_ms >= since.
func (s *SnapshotStore) GetByTickerSince(ctx context.Context, ticker string, since int64) ([]*domain.VelocitySnapshot, error) {
	query := `
		SELECT id, ticker, hour_start_ms, hour, actual, baseline,
		       velocity, baseline_ratio, signal, trend, weekdays_observed, created_at_ms
		FROM velocity_snapshots
		WHERE ticker = ? AND hour_start_ms >= ?
		ORDER BY hour_start_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker, uint64(since))
	if err != nil {
		return nil, fmt.Errorf("query by ticker since: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// exists checks if a snapshot with the given key exists.
func (s *SnapshotStore) exists(ctx context.Context, ticker string, hourStartMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM velocity_snapshots
		WHERE ticker = ? AND hour_start_ms = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, ticker, uint64(hourStartMs)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanSnapshots scans multiple rows.
func scanSnapshots(rows driver.Rows) ([]*domain.VelocitySnapshot, error) {
	var snapshots []*domain.VelocitySnapshot

	for rows.Next() {
		var snap domain.VelocitySnapshot
		var hourStartMs, createdAtMs uint64
		var hour, weekdaysObserved uint8
		var actual, baseline uint32

		err := rows.Scan(
			&snap.ID, &snap.Ticker, &hourStartMs, &hour, &actual, &baseline,
			&snap.Velocity, &snap.BaselineRatio, &snap.Signal, &snap.Trend,
			&weekdaysObserved, &createdAtMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		snap.HourStartMs = int64(hourStartMs)
		snap.Hour = int(hour)
		snap.Actual = int(actual)
		snap.Baseline = int(baseline)
		snap.WeekdaysObserved = int(weekdaysObserved)
		snap.CreatedAtMs = int64(createdAtMs)
		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snapshots, nil
}
