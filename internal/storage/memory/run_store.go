package memory

import (
	"context"
	"sort"
	"sync"

	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DiscoveryRun
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.DiscoveryRun),
	}
}

// Insert adds a run summary. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, r *domain.DiscoveryRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *r
	s.data[r.RunID] = &copy
	return nil
}

// GetByID retrieves a run by its ID.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.DiscoveryRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[runID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *r
	return &copy, nil
}

// GetLatest retrieves the most recently started run. Ties break on run_id.
func (s *RunStore) GetLatest(_ context.Context) (*domain.DiscoveryRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.DiscoveryRun
	for _, r := range s.data {
		if latest == nil || r.StartedAt > latest.StartedAt ||
			(r.StartedAt == latest.StartedAt && r.RunID > latest.RunID) {
			latest = r
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	copy := *latest
	return &copy, nil
}

// GetByTimeRange retrieves runs started within [start, end] (inclusive).
func (s *RunStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.DiscoveryRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DiscoveryRun
	for _, r := range s.data {
		if r.StartedAt >= start && r.StartedAt <= end {
			copy := *r
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartedAt != result[j].StartedAt {
			return result[i].StartedAt < result[j].StartedAt
		}
		return result[i].RunID < result[j].RunID
	})

	return result, nil
}

var _ storage.RunStore = (*RunStore)(nil)
