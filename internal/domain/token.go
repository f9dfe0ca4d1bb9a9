package domain

// Token is a token of interest for path discovery.
// Only Address participates in discovery; Symbol and Decimals are carried for reporting.
type Token struct {
	Address  string `json:"address"`  // mint address (base58)
	Symbol   string `json:"symbol"`   // display symbol, optional
	Decimals int    `json:"decimals"` // mint decimals, optional
}

// Well-known mint addresses.
const (
	// MintWSOL is the Wrapped SOL mint address.
	MintWSOL = "So11111111111111111111111111111111111111112"
	// MintUSDC is the USDC mint address.
	MintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// TokenAddresses returns the set of addresses in tokens.
func TokenAddresses(tokens []Token) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t.Address] = struct{}{}
	}
	return set
}
