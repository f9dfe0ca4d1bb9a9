package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

const runColumns = `
	run_id, base_token, started_at, finished_at, markets_total, markets_included, markets_excluded,
	routes_total, paths_one_hop, paths_two_hop, status, error
`

// Insert adds a run summary. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.DiscoveryRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `INSERT INTO discovery_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.pool.Exec(ctx, query,
		r.RunID,
		r.BaseToken,
		r.StartedAt,
		r.FinishedAt,
		r.MarketsTotal,
		r.MarketsIncluded,
		r.MarketsExcluded,
		r.RoutesTotal,
		r.PathsOneHop,
		r.PathsTwoHop,
		string(r.Status),
		r.Error,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert discovery run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.DiscoveryRun, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM discovery_runs WHERE run_id = $1`, runID)
	return scanRun(row)
}

// GetLatest retrieves the most recently started run.
func (s *RunStore) GetLatest(ctx context.Context) (*domain.DiscoveryRun, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+`
		FROM discovery_runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT 1`)
	return scanRun(row)
}

// GetByTimeRange retrieves runs started within [start, end] (inclusive).
func (s *RunStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.DiscoveryRun, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+runColumns+`
		FROM discovery_runs
		WHERE started_at >= $1 AND started_at <= $2
		ORDER BY started_at ASC, run_id ASC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("query runs by time range: %w", err)
	}
	defer rows.Close()

	var runs []*domain.DiscoveryRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*domain.DiscoveryRun, error) {
	var r domain.DiscoveryRun
	var status string
	err := row.Scan(
		&r.RunID,
		&r.BaseToken,
		&r.StartedAt,
		&r.FinishedAt,
		&r.MarketsTotal,
		&r.MarketsIncluded,
		&r.MarketsExcluded,
		&r.RoutesTotal,
		&r.PathsOneHop,
		&r.PathsTwoHop,
		&status,
		&r.Error,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan discovery run: %w", err)
	}
	r.Status = domain.RunStatus(status)
	return &r, nil
}
