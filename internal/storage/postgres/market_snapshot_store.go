package postgres

import (
	"context"
	"fmt"

	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/storage"
)

// MarketSnapshotStore implements storage.MarketSnapshotStore using PostgreSQL.
type MarketSnapshotStore struct {
	pool *Pool
}

// NewMarketSnapshotStore creates a new MarketSnapshotStore.
func NewMarketSnapshotStore(pool *Pool) *MarketSnapshotStore {
	return &MarketSnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MarketSnapshotStore = (*MarketSnapshotStore)(nil)

// InsertBulk adds snapshots atomically. Fails entire batch on any duplicate.
func (s *MarketSnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.MarketSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	for _, snap := range snapshots {
		if snap == nil || snap.RunID == "" || snap.Market.ID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO market_snapshots (
			run_id, pool_address, dex_label, token_mint_a, token_mint_b, fee, liquidity, included
		) VALUES ($1, $2, $3, $4, $5, $6, $7::text::numeric, $8)
	`

	for _, snap := range snapshots {
		m := snap.Market
		_, err := tx.Exec(ctx, query,
			snap.RunID,
			m.ID,
			string(m.DexLabel),
			m.TokenMintA,
			m.TokenMintB,
			int64(m.Fee),
			numericArg(m.Liquidity),
			snap.Included,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert market snapshot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRunID retrieves all snapshots of a run, ordered by pool address.
func (s *MarketSnapshotStore) GetByRunID(ctx context.Context, runID string) ([]*domain.MarketSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT run_id, pool_address, dex_label, token_mint_a, token_mint_b, fee, liquidity::text, included
		FROM market_snapshots
		WHERE run_id = $1
		ORDER BY pool_address ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query market snapshots: %w", err)
	}
	defer rows.Close()

	var result []*domain.MarketSnapshot
	for rows.Next() {
		var snap domain.MarketSnapshot
		var label string
		var fee int64
		var liquidity *string
		err := rows.Scan(
			&snap.RunID,
			&snap.Market.ID,
			&label,
			&snap.Market.TokenMintA,
			&snap.Market.TokenMintB,
			&fee,
			&liquidity,
			&snap.Included,
		)
		if err != nil {
			return nil, fmt.Errorf("scan market snapshot: %w", err)
		}
		snap.Market.DexLabel = domain.DexLabel(label)
		snap.Market.Fee = uint64(fee)
		if snap.Market.Liquidity, err = parseNumeric(liquidity); err != nil {
			return nil, err
		}
		result = append(result, &snap)
	}
	return result, rows.Err()
}
