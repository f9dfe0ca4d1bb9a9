package markets

import (
	"context"

	"solana-arb-lab/internal/domain"
)

// Source provides venue listings from an external source.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Fetch returns the current listings. A source may report several venues.
	Fetch(ctx context.Context) ([]domain.Dex, error)
}

// StaticSource serves fixed listings. Used in tests and for fixtures.
type StaticSource struct {
	name string
	dexs []domain.Dex
}

var _ Source = (*StaticSource)(nil)

// NewStaticSource creates a source that always returns dexs.
func NewStaticSource(name string, dexs ...domain.Dex) *StaticSource {
	return &StaticSource{name: name, dexs: dexs}
}

// Name returns the source name.
func (s *StaticSource) Name() string {
	return s.name
}

// Fetch returns a copy of the configured listings.
func (s *StaticSource) Fetch(ctx context.Context) ([]domain.Dex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Dex, len(s.dexs))
	for i, dex := range s.dexs {
		out[i] = copyDex(dex)
	}
	return out, nil
}

func copyDex(dex domain.Dex) domain.Dex {
	pairs := make(map[string][]domain.Market, len(dex.PairToMarkets))
	for key, ms := range dex.PairToMarkets {
		cp := make([]domain.Market, len(ms))
		copy(cp, ms)
		pairs[key] = cp
	}
	return domain.Dex{Label: dex.Label, PairToMarkets: pairs}
}
