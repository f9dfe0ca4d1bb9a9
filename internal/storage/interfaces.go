package storage

import (
	"context"

	"solana-arb-lab/internal/domain"
)

// Stores groups the stores a discovery pass writes to.
type Stores struct {
	Runs      RunStore
	Snapshots MarketSnapshotStore
	Paths     SwapPathStore
	Stats     DiscoveryStatsStore
}

// RunStore provides access to discovery_runs storage.
type RunStore interface {
	// Insert adds a run summary. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.DiscoveryRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.DiscoveryRun, error)

	// GetLatest retrieves the run with the greatest started_at. Returns ErrNotFound if empty.
	GetLatest(ctx context.Context) (*domain.DiscoveryRun, error)

	// GetByTimeRange retrieves runs started within [start, end] (inclusive), ordered by started_at ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.DiscoveryRun, error)
}

// MarketSnapshotStore provides access to market_snapshots storage.
type MarketSnapshotStore interface {
	// InsertBulk adds snapshots atomically. Fails entire batch on duplicate (run_id, pool_address).
	InsertBulk(ctx context.Context, snapshots []*domain.MarketSnapshot) error

	// GetByRunID retrieves all snapshots of a run, ordered by pool address.
	GetByRunID(ctx context.Context, runID string) ([]*domain.MarketSnapshot, error)
}

// SwapPathStore provides access to swap_paths storage.
type SwapPathStore interface {
	// InsertBulk adds the paths of a run atomically, preserving their order.
	// Fails entire batch on duplicate (run_id, path_id).
	InsertBulk(ctx context.Context, runID string, paths []domain.SwapPath) error

	// GetByRunID retrieves the paths of a run in insertion order.
	GetByRunID(ctx context.Context, runID string) ([]domain.SwapPath, error)
}

// DiscoveryStatsStore provides access to discovery_stats storage.
type DiscoveryStatsStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (run_id, dex_label).
	InsertBulk(ctx context.Context, points []*domain.DiscoveryStatsPoint) error

	// GetByRunID retrieves the points of a run, ordered by dex label.
	GetByRunID(ctx context.Context, runID string) ([]*domain.DiscoveryStatsPoint, error)

	// GetByTimeRange retrieves points within [start, end] (inclusive), ordered by timestamp, dex label.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.DiscoveryStatsPoint, error)
}
