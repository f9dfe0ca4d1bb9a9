package arbitrage

import (
	"sort"

	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/idhash"
)

// BuildRoutes expands every market into its two directed routes.
// Pools are visited in sorted address order so the output is reproducible;
// route ids depend only on (pool address, direction).
func BuildRoutes(markets map[string]domain.Market) ([]domain.Route, error) {
	pools := make([]string, 0, len(markets))
	for pool := range markets {
		pools = append(pools, pool)
	}
	sort.Strings(pools)

	routes := make([]domain.Route, 0, 2*len(pools))
	for _, pool := range pools {
		m := markets[pool]
		routes = append(routes,
			domain.Route{
				ID:          idhash.ComputeRouteID(m.ID, true),
				Dex:         m.DexLabel,
				PoolAddress: m.ID,
				Token0to1:   true,
				TokenIn:     m.TokenMintA,
				TokenOut:    m.TokenMintB,
				Fee:         m.Fee,
			},
			domain.Route{
				ID:          idhash.ComputeRouteID(m.ID, false),
				Dex:         m.DexLabel,
				PoolAddress: m.ID,
				Token0to1:   false,
				TokenIn:     m.TokenMintB,
				TokenOut:    m.TokenMintA,
				Fee:         m.Fee,
			},
		)
	}

	if len(routes) == 0 {
		return nil, ErrNoRoutesGenerated
	}
	return routes, nil
}
