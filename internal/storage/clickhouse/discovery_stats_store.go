package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/storage"
)

// DiscoveryStatsStore implements storage.DiscoveryStatsStore using ClickHouse.
// MergeTree does not enforce keys, so duplicates are checked before insert.
type DiscoveryStatsStore struct {
	conn *Conn
}

// NewDiscoveryStatsStore creates a new DiscoveryStatsStore.
func NewDiscoveryStatsStore(conn *Conn) *DiscoveryStatsStore {
	return &DiscoveryStatsStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DiscoveryStatsStore = (*DiscoveryStatsStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (run_id, dex_label).
func (s *DiscoveryStatsStore) InsertBulk(ctx context.Context, points []*domain.DiscoveryStatsPoint) error {
	if len(points) == 0 {
		return nil
	}

	type key struct {
		runID    string
		dexLabel domain.DexLabel
	}
	seen := make(map[key]struct{})
	for _, p := range points {
		if p == nil || p.RunID == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.RunID, p.DexLabel}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for k := range seen {
		exists, err := s.exists(ctx, k.runID, k.dexLabel)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO discovery_stats (
			run_id, timestamp_ms, dex_label, markets_included, markets_excluded, routes
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.RunID, uint64(p.TimestampMs), string(p.DexLabel),
			uint32(p.MarketsIncluded), uint32(p.MarketsExcluded), uint32(p.Routes),
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

// GetByRunID retrieves the points of a run, ordered by dex label.
func (s *DiscoveryStatsStore) GetByRunID(ctx context.Context, runID string) ([]*domain.DiscoveryStatsPoint, error) {
	query := `
		SELECT run_id, timestamp_ms, dex_label, markets_included, markets_excluded, routes
		FROM discovery_stats
		WHERE run_id = ?
		ORDER BY dex_label ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run id: %w", err)
	}
	defer rows.Close()

	return scanDiscoveryStats(rows)
}

// GetByTimeRange retrieves points within [start, end] (inclusive).
func (s *DiscoveryStatsStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.DiscoveryStatsPoint, error) {
	query := `
		SELECT run_id, timestamp_ms, dex_label, markets_included, markets_excluded, routes
		FROM discovery_stats
		WHERE timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC, dex_label ASC, run_id ASC
	`

	rows, err := s.conn.Query(ctx, query, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanDiscoveryStats(rows)
}

// exists checks if a point with the given key exists.
func (s *DiscoveryStatsStore) exists(ctx context.Context, runID string, label domain.DexLabel) (bool, error) {
	query := `
		SELECT count(*) FROM discovery_stats
		WHERE run_id = ? AND dex_label = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, runID, string(label)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanDiscoveryStats scans multiple rows.
func scanDiscoveryStats(rows driver.Rows) ([]*domain.DiscoveryStatsPoint, error) {
	var points []*domain.DiscoveryStatsPoint

	for rows.Next() {
		var p domain.DiscoveryStatsPoint
		var timestampMs uint64
		var label string
		var included, excluded, routes uint32

		if err := rows.Scan(&p.RunID, &timestampMs, &label, &included, &excluded, &routes); err != nil {
			return nil, fmt.Errorf("scan discovery stats row: %w", err)
		}

		p.TimestampMs = int64(timestampMs)
		p.DexLabel = domain.DexLabel(label)
		p.MarketsIncluded = int(included)
		p.MarketsExcluded = int(excluded)
		p.Routes = int(routes)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discovery stats rows: %w", err)
	}

	return points, nil
}
