package arbitrage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/idhash"
)

func TestBuildRoutes_ReversePairs(t *testing.T) {
	in := marketMap(
		raydium("p2", usdc, bonk, 5000),
		raydium("p1", base, usdc, 5000),
	)

	routes, err := BuildRoutes(in)
	require.NoError(t, err)
	require.Len(t, routes, 4)

	// Sorted by pool, forward direction first
	assert.Equal(t, "p1", routes[0].PoolAddress)
	assert.True(t, routes[0].Token0to1)
	assert.False(t, routes[1].Token0to1)
	assert.Equal(t, "p2", routes[2].PoolAddress)

	for i := 0; i < len(routes); i += 2 {
		fwd, rev := routes[i], routes[i+1]
		assert.Equal(t, fwd.PoolAddress, rev.PoolAddress)
		assert.Equal(t, fwd.TokenIn, rev.TokenOut)
		assert.Equal(t, fwd.TokenOut, rev.TokenIn)
		assert.Equal(t, fwd.Fee, rev.Fee)
		assert.Equal(t, fwd.Dex, rev.Dex)
		assert.NotEqual(t, fwd.ID, rev.ID)

		m := in[fwd.PoolAddress]
		assert.Equal(t, m.TokenMintA, fwd.TokenIn)
		assert.Equal(t, m.TokenMintB, fwd.TokenOut)
		assert.Equal(t, idhash.ComputeRouteID(fwd.PoolAddress, true), fwd.ID)
	}
}

func TestBuildRoutes_Empty(t *testing.T) {
	routes, err := BuildRoutes(map[string]domain.Market{})
	assert.Nil(t, routes)
	assert.ErrorIs(t, err, ErrNoRoutesGenerated)
}

func TestBuildRoutes_StableIDs(t *testing.T) {
	in := marketMap(raydium("p1", base, usdc, 5000), raydium("p2", usdc, bonk, 5000))

	first, err := BuildRoutes(in)
	require.NoError(t, err)
	second, err := BuildRoutes(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
