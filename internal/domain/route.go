package domain

// Route is one swap direction of a market: a directed edge TokenIn -> TokenOut.
// Every market yields exactly two routes sharing PoolAddress and Fee.
type Route struct {
	ID          string   `json:"id"`           // deterministic hash of (pool, direction)
	Dex         DexLabel `json:"dex"`          // venue of the pool
	PoolAddress string   `json:"pool_address"` // originating market ID
	Token0to1   bool     `json:"token_0to1"`   // true when TokenIn is the market's TokenMintA
	TokenIn     string   `json:"token_in"`
	TokenOut    string   `json:"token_out"`
	Fee         uint64   `json:"fee"`
}
