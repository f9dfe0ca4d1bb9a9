package reporting

import (
	"fmt"
	"strings"
	"time"
)

// maxPathRows caps the path table; the CSV carries the full list.
const maxPathRows = 50

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Discovery Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: `%s` | Base token: %s | Status: %s\n\n", r.RunID, r.BaseToken, r.Status))
	if r.Error != "" {
		sb.WriteString(fmt.Sprintf("**Error:** %s\n\n", r.Error))
	}

	// Market Summary
	sb.WriteString("## Market Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Aggregated Markets | %d |\n", r.Markets.Total))
	sb.WriteString(fmt.Sprintf("| Included Markets | %d |\n", r.Markets.Included))
	sb.WriteString(fmt.Sprintf("| Excluded Markets | %d |\n", r.Markets.Excluded))
	sb.WriteString(fmt.Sprintf("| Routes | %d |\n", r.Markets.Routes))
	sb.WriteString(fmt.Sprintf("| 1 Hop Paths | %d |\n", r.Markets.PathsOneHop))
	sb.WriteString(fmt.Sprintf("| 2 Hop Paths | %d |\n", r.Markets.PathsTwoHop))
	sb.WriteString(fmt.Sprintf("| Duration (ms) | %d |\n", r.FinishedAt-r.StartedAt))
	sb.WriteString("\n")

	// Venues
	sb.WriteString("## Venues\n\n")
	if len(r.Venues) > 0 {
		sb.WriteString("| Venue | Included | Excluded | Routes |\n")
		sb.WriteString("|-------|----------|----------|--------|\n")
		for _, v := range r.Venues {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d |\n", v.DexLabel, v.Included, v.Excluded, v.Routes))
		}
	} else {
		sb.WriteString("No venue data available.\n")
	}
	sb.WriteString("\n")

	// Paths
	sb.WriteString("## Swap Paths\n\n")
	if len(r.Paths) > 0 {
		sb.WriteString("| Hops | Tokens | Venues | Path |\n")
		sb.WriteString("|------|--------|--------|------|\n")
		for i, p := range r.Paths {
			if i == maxPathRows {
				break
			}
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | `%s` |\n",
				p.Hops, strings.Join(p.Tokens, " → "), strings.Join(p.Dexes, ", "), shortID(p.PathID)))
		}
		if len(r.Paths) > maxPathRows {
			sb.WriteString(fmt.Sprintf("\n%d more paths in swap_paths.csv.\n", len(r.Paths)-maxPathRows))
		}
	} else {
		sb.WriteString("No swap paths found.\n")
	}
	sb.WriteString("\n")

	// History
	if len(r.RecentRuns) > 0 {
		sb.WriteString("## Recent Runs\n\n")
		sb.WriteString("| Started | Run | Status | Included | Routes | Paths |\n")
		sb.WriteString("|---------|-----|--------|----------|--------|-------|\n")
		for _, run := range r.RecentRuns {
			sb.WriteString(fmt.Sprintf("| %s | `%s` | %s | %d | %d | %d |\n",
				time.UnixMilli(run.StartedAt).UTC().Format(time.RFC3339), shortID(run.RunID),
				run.Status, run.Included, run.Routes, run.Paths))
		}
		sb.WriteString("\n")
	}
	if len(r.VenueTrends) > 0 {
		sb.WriteString("## Venue Trends\n\n")
		sb.WriteString("| Venue | Passes | Included (min/avg/max) | Avg Routes |\n")
		sb.WriteString("|-------|--------|------------------------|------------|\n")
		for _, v := range r.VenueTrends {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d / %.1f / %d | %.1f |\n",
				v.DexLabel, v.Passes, v.MinIncluded, v.AvgIncluded, v.MaxIncluded, v.AvgRoutes))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
