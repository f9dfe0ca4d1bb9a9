package memory

import (
	"context"
	"sort"
	"sync"

	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/storage"
)

// DiscoveryStatsStore is an in-memory implementation of storage.DiscoveryStatsStore.
type DiscoveryStatsStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DiscoveryStatsPoint // keyed by run_id|dex_label
}

// NewDiscoveryStatsStore creates a new in-memory discovery stats store.
func NewDiscoveryStatsStore() *DiscoveryStatsStore {
	return &DiscoveryStatsStore{
		data: make(map[string]*domain.DiscoveryStatsPoint),
	}
}

func statsKey(runID string, label domain.DexLabel) string {
	return runID + "|" + string(label)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate (run_id, dex_label).
func (s *DiscoveryStatsStore) InsertBulk(_ context.Context, points []*domain.DiscoveryStatsPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.RunID == "" {
			return storage.ErrInvalidInput
		}
		key := statsKey(p.RunID, p.DexLabel)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		copy := *p
		s.data[statsKey(p.RunID, p.DexLabel)] = &copy
	}
	return nil
}

// GetByRunID retrieves the points of a run, ordered by dex label.
func (s *DiscoveryStatsStore) GetByRunID(_ context.Context, runID string) ([]*domain.DiscoveryStatsPoint, error) {
	return s.collect(func(p *domain.DiscoveryStatsPoint) bool {
		return p.RunID == runID
	}), nil
}

// GetByTimeRange retrieves points within [start, end] (inclusive).
func (s *DiscoveryStatsStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.DiscoveryStatsPoint, error) {
	return s.collect(func(p *domain.DiscoveryStatsPoint) bool {
		return p.TimestampMs >= start && p.TimestampMs <= end
	}), nil
}

func (s *DiscoveryStatsStore) collect(match func(*domain.DiscoveryStatsPoint) bool) []*domain.DiscoveryStatsPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DiscoveryStatsPoint
	for _, p := range s.data {
		if match(p) {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TimestampMs != result[j].TimestampMs {
			return result[i].TimestampMs < result[j].TimestampMs
		}
		if result[i].DexLabel != result[j].DexLabel {
			return result[i].DexLabel < result[j].DexLabel
		}
		return result[i].RunID < result[j].RunID
	})
	return result
}

var _ storage.DiscoveryStatsStore = (*DiscoveryStatsStore)(nil)

// NewStores returns a fresh set of in-memory stores.
func NewStores() storage.Stores {
	return storage.Stores{
		Runs:      NewRunStore(),
		Snapshots: NewMarketSnapshotStore(),
		Paths:     NewSwapPathStore(),
		Stats:     NewDiscoveryStatsStore(),
	}
}
