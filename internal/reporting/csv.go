package reporting

import (
	"fmt"
	"strings"
)

// RenderPathsCSV renders swap paths as CSV string.
// List columns are joined with '>' in leg order.
func RenderPathsCSV(paths []PathRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("path_id,hops,tokens,pools,dexes,fees\n")

	// Rows
	for _, p := range paths {
		fees := make([]string, len(p.Fees))
		for i, f := range p.Fees {
			fees[i] = fmt.Sprintf("%d", f)
		}
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%s,%s,%s\n",
			p.PathID,
			p.Hops,
			strings.Join(p.Tokens, ">"),
			strings.Join(p.Pools, ">"),
			strings.Join(p.Dexes, ">"),
			strings.Join(fees, ">"),
		))
	}

	return sb.String()
}
