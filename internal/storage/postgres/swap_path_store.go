package postgres

import (
	"context"
	"fmt"

	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/storage"
)

// SwapPathStore implements storage.SwapPathStore using PostgreSQL.
// Legs are stored as JSONB, route ids as TEXT[].
type SwapPathStore struct {
	pool *Pool
}

// NewSwapPathStore creates a new SwapPathStore.
func NewSwapPathStore(pool *Pool) *SwapPathStore {
	return &SwapPathStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SwapPathStore = (*SwapPathStore)(nil)

// InsertBulk adds the paths of a run atomically, numbering them in slice order.
func (s *SwapPathStore) InsertBulk(ctx context.Context, runID string, paths []domain.SwapPath) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(paths) == 0 {
		return nil
	}
	for _, p := range paths {
		if p.ID == "" || len(p.Routes) == 0 {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Continue numbering after paths already stored for the run
	var next int
	err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(seq) + 1, 0) FROM swap_paths WHERE run_id = $1`, runID).Scan(&next)
	if err != nil {
		return fmt.Errorf("query next seq: %w", err)
	}

	query := `
		INSERT INTO swap_paths (run_id, path_id, seq, hops, route_ids, legs)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for i, p := range paths {
		_, err := tx.Exec(ctx, query,
			runID,
			p.ID,
			next+i,
			p.Hops,
			p.RouteIDs,
			p.Routes,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert swap path: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRunID retrieves the paths of a run in insertion order.
func (s *SwapPathStore) GetByRunID(ctx context.Context, runID string) ([]domain.SwapPath, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT path_id, hops, route_ids, legs
		FROM swap_paths
		WHERE run_id = $1
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query swap paths: %w", err)
	}
	defer rows.Close()

	result := make([]domain.SwapPath, 0)
	for rows.Next() {
		var p domain.SwapPath
		if err := rows.Scan(&p.ID, &p.Hops, &p.RouteIDs, &p.Routes); err != nil {
			return nil, fmt.Errorf("scan swap path: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// NewStores returns PostgreSQL-backed run, snapshot and path stores.
// Stats are left to the caller (ClickHouse or memory).
func NewStores(pool *Pool, stats storage.DiscoveryStatsStore) storage.Stores {
	return storage.Stores{
		Runs:      NewRunStore(pool),
		Snapshots: NewMarketSnapshotStore(pool),
		Paths:     NewSwapPathStore(pool),
		Stats:     stats,
	}
}
