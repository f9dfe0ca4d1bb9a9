package reporting

import (
	"context"
	"fmt"
	"sort"

	"solana-arb-lab/internal/domain"
)

// maxRecentRuns caps the recent runs table.
const maxRecentRuns = 20

// RunRow summarizes one earlier pass in the recent runs table.
type RunRow struct {
	RunID     string
	StartedAt int64 // Unix ms
	Status    string
	Included  int
	Routes    int
	Paths     int
}

// VenueTrendRow aggregates the per-venue counters of the passes in the history window.
type VenueTrendRow struct {
	DexLabel    string
	Passes      int
	MinIncluded int
	MaxIncluded int
	AvgIncluded float64
	AvgRoutes   float64
}

// history loads the runs and venue points started within the window ending at run.
// Runs come most recent first; venue trends are ordered by dex label.
func (g *Generator) history(ctx context.Context, run *domain.DiscoveryRun) ([]RunRow, []VenueTrendRow, error) {
	if g.window <= 0 {
		return nil, nil, nil
	}
	start := run.StartedAt - g.window.Milliseconds()

	runs, err := g.runStore.GetByTimeRange(ctx, start, run.StartedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("load recent runs: %w", err)
	}
	points, err := g.statsStore.GetByTimeRange(ctx, start, run.StartedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("load venue history: %w", err)
	}

	recent := make([]RunRow, 0, min(len(runs), maxRecentRuns))
	for i := len(runs) - 1; i >= 0 && len(recent) < maxRecentRuns; i-- {
		r := runs[i]
		recent = append(recent, RunRow{
			RunID:     r.RunID,
			StartedAt: r.StartedAt,
			Status:    string(r.Status),
			Included:  r.MarketsIncluded,
			Routes:    r.RoutesTotal,
			Paths:     r.PathsOneHop + r.PathsTwoHop,
		})
	}

	return recent, venueTrends(points), nil
}

func venueTrends(points []*domain.DiscoveryStatsPoint) []VenueTrendRow {
	byDex := make(map[string]*VenueTrendRow)
	routes := make(map[string]int)
	for _, p := range points {
		label := string(p.DexLabel)
		row, ok := byDex[label]
		if !ok {
			row = &VenueTrendRow{DexLabel: label, MinIncluded: p.MarketsIncluded, MaxIncluded: p.MarketsIncluded}
			byDex[label] = row
		}
		row.Passes++
		row.MinIncluded = min(row.MinIncluded, p.MarketsIncluded)
		row.MaxIncluded = max(row.MaxIncluded, p.MarketsIncluded)
		row.AvgIncluded += float64(p.MarketsIncluded)
		routes[label] += p.Routes
	}

	trends := make([]VenueTrendRow, 0, len(byDex))
	for label, row := range byDex {
		row.AvgIncluded /= float64(row.Passes)
		row.AvgRoutes = float64(routes[label]) / float64(row.Passes)
		trends = append(trends, *row)
	}
	sort.Slice(trends, func(i, j int) bool {
		return trends[i].DexLabel < trends[j].DexLabel
	})
	return trends
}
