package reporting

import "time"

// Report represents the summary of one discovery pass.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	BaseToken   string // symbol when known, mint otherwise
	Status      string
	Error       string
	StartedAt   int64 // Unix ms
	FinishedAt  int64 // Unix ms

	// Market Summary
	Markets MarketSummary

	// Venue breakdown (sorted by dex label)
	Venues []VenueRow

	// Paths in discovery order
	Paths []PathRow

	// History window ending at this run
	RecentRuns  []RunRow // most recent first
	VenueTrends []VenueTrendRow
}

// MarketSummary contains the counters of a pass.
type MarketSummary struct {
	Total       int
	Included    int
	Excluded    int
	Routes      int
	PathsOneHop int
	PathsTwoHop int
}

// VenueRow represents one row in the venue table.
type VenueRow struct {
	DexLabel string
	Included int
	Excluded int
	Routes   int
}

// PathRow represents one swap path in the CSV and the path table.
type PathRow struct {
	PathID string
	Hops   int
	Tokens []string // symbols or mints, base at both ends
	Pools  []string
	Dexes  []string
	Fees   []uint64
}
