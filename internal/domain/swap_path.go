package domain

// SwapPath is a closed cycle of routes starting and ending at the base token.
// A 1-hop path has two routes (out and back), a 2-hop path has three.
type SwapPath struct {
	ID       string   // deterministic hash of RouteIDs
	Hops     int      // len(Routes) - 1
	Routes   []Route  // ordered legs
	RouteIDs []string // parallel to Routes
}

// Pools returns the pool addresses of the path legs, in order.
func (p SwapPath) Pools() []string {
	pools := make([]string, len(p.Routes))
	for i, r := range p.Routes {
		pools[i] = r.PoolAddress
	}
	return pools
}

// Tokens returns the token sequence visited by the path, base token at both ends.
func (p SwapPath) Tokens() []string {
	if len(p.Routes) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(p.Routes)+1)
	tokens = append(tokens, p.Routes[0].TokenIn)
	for _, r := range p.Routes {
		tokens = append(tokens, r.TokenOut)
	}
	return tokens
}
