package arbitrage

import (
	"fmt"
	"sort"

	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/idhash"
)

// DefaultMaxHops is the default hop budget: 1-hop and 2-hop cycles.
const DefaultMaxHops = 2

// RouteIndex maps a token to the routes leaving it, in input order.
type RouteIndex map[string][]domain.Route

// NewRouteIndex indexes routes by TokenIn.
func NewRouteIndex(routes []domain.Route) RouteIndex {
	index := make(RouteIndex)
	for _, r := range routes {
		index[r.TokenIn] = append(index[r.TokenIn], r)
	}
	return index
}

// GenerateSwapPaths returns every cycle of 1..maxHops hops that leaves baseToken and returns to it.
// A path never reuses a pool and every leg starts at the previous leg's output token.
// Paths are ordered by hop count, then by search order.
func GenerateSwapPaths(routes []domain.Route, baseToken string, maxHops int) ([]domain.SwapPath, error) {
	if baseToken == "" {
		return nil, ErrEmptyTokenUniverse
	}
	if maxHops < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxHops, maxHops)
	}

	s := &pathSearch{
		index:   NewRouteIndex(routes),
		base:    baseToken,
		maxLegs: maxHops + 1,
		used:    make(map[string]struct{}),
	}

	for _, start := range s.index[baseToken] {
		s.used[start.PoolAddress] = struct{}{}
		s.expand([]domain.Route{start})
		delete(s.used, start.PoolAddress)
	}

	sort.SliceStable(s.paths, func(i, j int) bool {
		return s.paths[i].Hops < s.paths[j].Hops
	})

	return s.paths, nil
}

// pathSearch is the state of one depth-first expansion.
type pathSearch struct {
	index   RouteIndex
	base    string
	maxLegs int
	used    map[string]struct{} // pools on the current branch
	paths   []domain.SwapPath
}

// expand extends the branch ending in legs by one leg.
// A branch closes when a leg returns to base and is dropped when the hop budget is spent.
func (s *pathSearch) expand(legs []domain.Route) {
	last := legs[len(legs)-1]

	for _, next := range s.index[last.TokenOut] {
		if _, reused := s.used[next.PoolAddress]; reused {
			continue
		}
		if next.TokenOut == s.base {
			s.emit(append(legs, next))
			continue
		}
		if len(legs)+1 >= s.maxLegs {
			continue
		}

		s.used[next.PoolAddress] = struct{}{}
		s.expand(append(legs, next))
		delete(s.used, next.PoolAddress)
	}
}

func (s *pathSearch) emit(legs []domain.Route) {
	routes := make([]domain.Route, len(legs))
	copy(routes, legs)

	ids := make([]string, len(routes))
	for i, r := range routes {
		ids[i] = r.ID
	}

	s.paths = append(s.paths, domain.SwapPath{
		ID:       idhash.ComputePathID(ids),
		Hops:     len(routes) - 1,
		Routes:   routes,
		RouteIDs: ids,
	})
}
