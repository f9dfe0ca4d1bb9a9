package domain

// DiscoveryRun summarizes one discovery pass.
// Corresponds to discovery_runs table in PostgreSQL.
type DiscoveryRun struct {
	RunID           string // PRIMARY KEY, deterministic hash
	BaseToken       string // anchor mint
	StartedAt       int64  // Unix timestamp in milliseconds
	FinishedAt      int64  // Unix timestamp in milliseconds
	MarketsTotal    int    // aggregated markets
	MarketsIncluded int    // markets passing the liquidity policy
	MarketsExcluded int    // markets rejected by the liquidity policy
	RoutesTotal     int    // directed routes built
	PathsOneHop     int
	PathsTwoHop     int
	Status          RunStatus
	Error           string // failure reason, empty on success
}

// RunStatus is the outcome of a discovery pass.
type RunStatus string

const (
	RunStatusOK       RunStatus = "OK"
	RunStatusNoRoutes RunStatus = "NO_ROUTES"
	RunStatusFailed   RunStatus = "FAILED"
)

// DiscoveryStatsPoint holds per-venue counters of one discovery pass.
// Corresponds to discovery_stats table in ClickHouse.
type DiscoveryStatsPoint struct {
	RunID           string   // discovery run identifier
	TimestampMs     int64    // run start, Unix ms
	DexLabel        DexLabel // venue
	MarketsIncluded int
	MarketsExcluded int
	Routes          int
}

// MarketSnapshot records one aggregated market as seen by a discovery pass.
// Corresponds to market_snapshots table in PostgreSQL.
type MarketSnapshot struct {
	RunID    string
	Market   Market
	Included bool // passed the liquidity policy
}
