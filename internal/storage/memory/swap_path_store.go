package memory

import (
	"context"
	"sync"

	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/storage"
)

// SwapPathStore is an in-memory implementation of storage.SwapPathStore.
type SwapPathStore struct {
	mu   sync.RWMutex
	data map[string][]domain.SwapPath // run_id -> paths in insertion order
}

// NewSwapPathStore creates a new in-memory swap path store.
func NewSwapPathStore() *SwapPathStore {
	return &SwapPathStore{
		data: make(map[string][]domain.SwapPath),
	}
}

func copyPath(p domain.SwapPath) domain.SwapPath {
	routes := make([]domain.Route, len(p.Routes))
	copy(routes, p.Routes)
	ids := make([]string, len(p.RouteIDs))
	copy(ids, p.RouteIDs)
	return domain.SwapPath{ID: p.ID, Hops: p.Hops, Routes: routes, RouteIDs: ids}
}

// InsertBulk adds the paths of a run atomically. Fails entire batch on any duplicate.
func (s *SwapPathStore) InsertBulk(_ context.Context, runID string, paths []domain.SwapPath) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(paths) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{}, len(s.data[runID])+len(paths))
	for _, p := range s.data[runID] {
		existing[p.ID] = struct{}{}
	}
	for _, p := range paths {
		if p.ID == "" || len(p.Routes) == 0 {
			return storage.ErrInvalidInput
		}
		if _, exists := existing[p.ID]; exists {
			return storage.ErrDuplicateKey
		}
		existing[p.ID] = struct{}{}
	}

	for _, p := range paths {
		s.data[runID] = append(s.data[runID], copyPath(p))
	}
	return nil
}

// GetByRunID retrieves the paths of a run in insertion order.
func (s *SwapPathStore) GetByRunID(_ context.Context, runID string) ([]domain.SwapPath, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.data[runID]
	result := make([]domain.SwapPath, len(stored))
	for i, p := range stored {
		result[i] = copyPath(p)
	}
	return result, nil
}

var _ storage.SwapPathStore = (*SwapPathStore)(nil)
