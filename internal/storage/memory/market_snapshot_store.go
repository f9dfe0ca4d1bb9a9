package memory

import (
	"context"
	"sort"
	"sync"

	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/storage"
)

// MarketSnapshotStore is an in-memory implementation of storage.MarketSnapshotStore.
type MarketSnapshotStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.MarketSnapshot // run_id -> pool address -> snapshot
}

// NewMarketSnapshotStore creates a new in-memory market snapshot store.
func NewMarketSnapshotStore() *MarketSnapshotStore {
	return &MarketSnapshotStore{
		data: make(map[string]map[string]*domain.MarketSnapshot),
	}
}

func copySnapshot(s *domain.MarketSnapshot) *domain.MarketSnapshot {
	cp := *s
	if s.Market.Liquidity != nil {
		liq := *s.Market.Liquidity
		cp.Market.Liquidity = &liq
	}
	return &cp
}

// InsertBulk adds snapshots atomically. Fails entire batch on any duplicate.
func (s *MarketSnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.MarketSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct{ runID, pool string }
	batchKeys := make(map[key]struct{}, len(snapshots))

	for _, snap := range snapshots {
		if snap == nil || snap.RunID == "" || snap.Market.ID == "" {
			return storage.ErrInvalidInput
		}
		k := key{snap.RunID, snap.Market.ID}
		if _, exists := s.data[k.runID][k.pool]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	for _, snap := range snapshots {
		run, ok := s.data[snap.RunID]
		if !ok {
			run = make(map[string]*domain.MarketSnapshot)
			s.data[snap.RunID] = run
		}
		run[snap.Market.ID] = copySnapshot(snap)
	}

	return nil
}

// GetByRunID retrieves all snapshots of a run, ordered by pool address.
func (s *MarketSnapshotStore) GetByRunID(_ context.Context, runID string) ([]*domain.MarketSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MarketSnapshot
	for _, snap := range s.data[runID] {
		result = append(result, copySnapshot(snap))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Market.ID < result[j].Market.ID
	})

	return result, nil
}

var _ storage.MarketSnapshotStore = (*MarketSnapshotStore)(nil)
