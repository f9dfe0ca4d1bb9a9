package markets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-arb-lab/internal/domain"
)

const listingJSON = `{
  "dexes": [
    {
      "label": "RAYDIUM",
      "pairs": {
        "So11111111111111111111111111111111111111112/EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": [
          {
            "id": "58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2",
            "token_mint_a": "So11111111111111111111111111111111111111112",
            "token_mint_b": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
            "fee": 25,
            "liquidity": 15000
          }
        ]
      }
    },
    {
      "label": "ORCA",
      "pairs": {
        "So11111111111111111111111111111111111111112/EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": [
          {
            "id": "EGZ7tiLeH62TPV1gL8WwbXGzEPa9zmcpVnnkPKKnrE2U",
            "token_mint_a": "So11111111111111111111111111111111111111112",
            "token_mint_b": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
            "fee": 30,
            "liquidity": null
          }
        ]
      }
    }
  ]
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFileSource_Fetch(t *testing.T) {
	src := NewFileSource(writeFile(t, "listing.json", listingJSON))

	dexs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, dexs, 2)

	assert.Equal(t, domain.DexRaydium, dexs[0].Label)
	key := domain.PairKey(domain.MintWSOL, domain.MintUSDC)
	require.Len(t, dexs[0].PairToMarkets[key], 1)

	m := dexs[0].PairToMarkets[key][0]
	assert.Equal(t, "58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2", m.ID)
	assert.Equal(t, uint64(25), m.Fee)
	require.NotNil(t, m.Liquidity)
	assert.Equal(t, uint64(15000), *m.Liquidity)

	assert.Equal(t, domain.DexOrca, dexs[1].Label)
	assert.Nil(t, dexs[1].PairToMarkets[key][0].Liquidity)
}

func TestFileSource_RereadsOnFetch(t *testing.T) {
	path := writeFile(t, "listing.json", `{"dexes": []}`)
	src := NewFileSource(path)

	dexs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, dexs)

	require.NoError(t, os.WriteFile(path, []byte(listingJSON), 0o644))
	dexs, err = src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, dexs, 2)
}

func TestFileSource_Errors(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background())
	assert.Error(t, err)

	_, err = NewFileSource(writeFile(t, "bad.json", `{"dexes": [`)).Fetch(context.Background())
	assert.Error(t, err)

	_, err = NewFileSource(writeFile(t, "nolabel.json", `{"dexes": [{"pairs": {}}]}`)).Fetch(context.Background())
	assert.Error(t, err)
}

func TestLoadTokens(t *testing.T) {
	path := writeFile(t, "tokens.json", `[
		{"address": "So11111111111111111111111111111111111111112", "symbol": "SOL", "decimals": 9},
		{"address": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "symbol": "USDC", "decimals": 6}
	]`)

	tokens, err := LoadTokens(path)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, domain.Token{Address: domain.MintWSOL, Symbol: "SOL", Decimals: 9}, tokens[0])

	_, err = LoadTokens(writeFile(t, "noaddr.json", `[{"symbol": "X"}]`))
	assert.Error(t, err)
}

func TestStaticSource_CopiesListings(t *testing.T) {
	liq := uint64(1)
	dex := domain.Dex{
		Label: domain.DexRaydium,
		PairToMarkets: map[string][]domain.Market{
			"k": {{ID: "p1", TokenMintA: "a", TokenMintB: "b", Liquidity: &liq}},
		},
	}
	src := NewStaticSource("static", dex)

	first, err := src.Fetch(context.Background())
	require.NoError(t, err)
	first[0].PairToMarkets["k"][0].ID = "mutated"

	second, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p1", second[0].PairToMarkets["k"][0].ID)
	assert.Equal(t, "static", src.Name())
}
