package reporting

import (
	"context"
	"time"

	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/storage"
)

// Generator produces reports from stored data.
type Generator struct {
	runStore   storage.RunStore
	pathStore  storage.SwapPathStore
	statsStore storage.DiscoveryStatsStore
	symbols    map[string]string // mint -> symbol
	window     time.Duration     // history covered by the recent runs section; 0 disables it
	now        func() time.Time  // Injectable clock for deterministic output
}

// DefaultHistoryWindow is the history covered by the recent runs section.
const DefaultHistoryWindow = 24 * time.Hour

// NewGenerator creates a new report generator.
func NewGenerator(
	runStore storage.RunStore,
	pathStore storage.SwapPathStore,
	statsStore storage.DiscoveryStatsStore,
) *Generator {
	return &Generator{
		runStore:   runStore,
		pathStore:  pathStore,
		statsStore: statsStore,
		symbols:    make(map[string]string),
		window:     DefaultHistoryWindow,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithHistory sets the window of earlier passes summarized next to a run. 0 disables it.
func (g *Generator) WithHistory(window time.Duration) *Generator {
	g.window = window
	return g
}

// WithTokens sets the token universe used to print symbols instead of mints.
func (g *Generator) WithTokens(tokens []domain.Token) *Generator {
	for _, t := range tokens {
		if t.Symbol != "" {
			g.symbols[t.Address] = t.Symbol
		}
	}
	return g
}

// Generate produces the report of a run.
// Returns storage.ErrNotFound if the run does not exist.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	return g.generate(ctx, run)
}

// GenerateLatest produces the report of the most recent run.
func (g *Generator) GenerateLatest(ctx context.Context) (*Report, error) {
	run, err := g.runStore.GetLatest(ctx)
	if err != nil {
		return nil, err
	}
	return g.generate(ctx, run)
}

func (g *Generator) generate(ctx context.Context, run *domain.DiscoveryRun) (*Report, error) {
	points, err := g.statsStore.GetByRunID(ctx, run.RunID)
	if err != nil {
		return nil, err
	}

	paths, err := g.pathStore.GetByRunID(ctx, run.RunID)
	if err != nil {
		return nil, err
	}

	recent, trends, err := g.history(ctx, run)
	if err != nil {
		return nil, err
	}

	venues := make([]VenueRow, 0, len(points))
	for _, p := range points {
		venues = append(venues, VenueRow{
			DexLabel: string(p.DexLabel),
			Included: p.MarketsIncluded,
			Excluded: p.MarketsExcluded,
			Routes:   p.Routes,
		})
	}

	return &Report{
		GeneratedAt: g.now(),
		RunID:       run.RunID,
		BaseToken:   g.symbol(run.BaseToken),
		Status:      string(run.Status),
		Error:       run.Error,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
		Markets: MarketSummary{
			Total:       run.MarketsTotal,
			Included:    run.MarketsIncluded,
			Excluded:    run.MarketsExcluded,
			Routes:      run.RoutesTotal,
			PathsOneHop: run.PathsOneHop,
			PathsTwoHop: run.PathsTwoHop,
		},
		Venues:      venues,
		Paths:       g.PathRows(paths),
		RecentRuns:  recent,
		VenueTrends: trends,
	}, nil
}

// PathRows converts swap paths into report rows, keeping their order.
func (g *Generator) PathRows(paths []domain.SwapPath) []PathRow {
	rows := make([]PathRow, 0, len(paths))
	for _, p := range paths {
		row := PathRow{
			PathID: p.ID,
			Hops:   p.Hops,
			Pools:  p.Pools(),
			Dexes:  make([]string, len(p.Routes)),
			Fees:   make([]uint64, len(p.Routes)),
		}
		for _, mint := range p.Tokens() {
			row.Tokens = append(row.Tokens, g.symbol(mint))
		}
		for i, r := range p.Routes {
			row.Dexes[i] = string(r.Dex)
			row.Fees[i] = r.Fee
		}
		rows = append(rows, row)
	}
	return rows
}

func (g *Generator) symbol(mint string) string {
	if s, ok := g.symbols[mint]; ok {
		return s
	}
	return mint
}
