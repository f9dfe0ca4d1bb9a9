package domain

// DexLabel identifies a venue (and pool type) a market belongs to.
type DexLabel string

const (
	DexOrca           DexLabel = "ORCA"
	DexOrcaWhirlpools DexLabel = "ORCA_WHIRLPOOLS"
	DexRaydium        DexLabel = "RAYDIUM"
	DexRaydiumCLMM    DexLabel = "RAYDIUM_CLMM"
)

// String returns the string representation of DexLabel.
func (d DexLabel) String() string {
	return string(d)
}

// IsValid checks if the label is a known venue.
func (d DexLabel) IsValid() bool {
	switch d {
	case DexOrca, DexOrcaWhirlpools, DexRaydium, DexRaydiumCLMM:
		return true
	}
	return false
}

// Market represents a single liquidity pool trading two tokens.
// Markets are never mutated after the aggregator produces them.
type Market struct {
	ID         string   `json:"id"`           // pool address, identity key
	DexLabel   DexLabel `json:"dex_label"`    // venue
	TokenMintA string   `json:"token_mint_a"` // first mint
	TokenMintB string   `json:"token_mint_b"` // second mint, != TokenMintA
	Fee        uint64   `json:"fee"`          // swap fee in venue units
	Liquidity  *uint64  `json:"liquidity"`    // venue liquidity figure (nullable)
}

// IsValid reports whether the market has an identity and two distinct mints.
func (m Market) IsValid() bool {
	return m.ID != "" && m.TokenMintA != "" && m.TokenMintB != "" && m.TokenMintA != m.TokenMintB
}

// Dex is one venue listing: pair key -> pools trading that pair.
// A pair may have several pools, e.g. one per fee tier.
type Dex struct {
	Label         DexLabel            `json:"label"`
	PairToMarkets map[string][]Market `json:"pairs"`
}

// PairKey builds the listing key for a token pair.
func PairKey(mintA, mintB string) string {
	return mintA + "/" + mintB
}
