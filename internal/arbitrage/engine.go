package arbitrage

import (
	"context"
	"log"

	"solana-arb-lab/internal/domain"
)

// Config holds the parameters of one path calculation.
type Config struct {
	BaseToken string       // anchor mint every path starts and ends at
	Policy    FilterPolicy // nil means DefaultFilterPolicy
	MaxHops   int          // 0 means DefaultMaxHops
	Logger    *log.Logger  // nil disables logging
}

// Result is the output of a calculation.
type Result struct {
	MarketsTotal int
	Included     map[string]domain.Market // pool address -> market, for pricing downstream
	Excluded     []string
	Routes       []domain.Route
	Paths        []domain.SwapPath
}

// PathsByHops counts paths per hop count.
func (r *Result) PathsByHops() map[int]int {
	counts := make(map[int]int)
	for _, p := range r.Paths {
		counts[p.Hops]++
	}
	return counts
}

// Calculate runs filter -> route builder -> path generator over aggregated markets.
// Each stage consumes the full output of the previous one; the first error aborts.
func Calculate(markets map[string]domain.Market, cfg Config) (*Result, error) {
	if cfg.BaseToken == "" {
		return nil, ErrEmptyTokenUniverse
	}
	policy := cfg.Policy
	if policy == nil {
		policy = DefaultFilterPolicy()
	}
	maxHops := cfg.MaxHops
	if maxHops == 0 {
		maxHops = DefaultMaxHops
	}

	filtered, err := FilterMarkets(markets, policy)
	if err != nil {
		return nil, err
	}
	cfg.logf("Included markets: %d", len(filtered.Included))
	cfg.logf("Excluded markets: %d", len(filtered.Excluded))

	routes, err := BuildRoutes(filtered.Included)
	if err != nil {
		return nil, err
	}

	paths, err := GenerateSwapPaths(routes, cfg.BaseToken, maxHops)
	if err != nil {
		return nil, err
	}

	result := &Result{
		MarketsTotal: len(markets),
		Included:     filtered.Included,
		Excluded:     filtered.Excluded,
		Routes:       routes,
		Paths:        paths,
	}
	for hops := 1; hops <= maxHops; hops++ {
		cfg.logf("%d hop swap paths: %d", hops, result.PathsByHops()[hops])
	}

	return result, nil
}

// Discover aggregates the sources of agg restricted to tokens and runs Calculate.
// The base token must be one of tokens.
func Discover(ctx context.Context, agg *Aggregator, tokens []domain.Token, cfg Config) (*Result, error) {
	if err := ValidateBaseToken(tokens, cfg.BaseToken); err != nil {
		return nil, err
	}

	markets, err := agg.Aggregate(ctx, tokens)
	if err != nil {
		return nil, err
	}
	cfg.logf("Aggregated markets: %d", len(markets))

	return Calculate(markets, cfg)
}

// ValidateBaseToken checks the token universe is non-empty and contains base.
func ValidateBaseToken(tokens []domain.Token, base string) error {
	if len(tokens) == 0 || base == "" {
		return ErrEmptyTokenUniverse
	}
	if _, ok := domain.TokenAddresses(tokens)[base]; !ok {
		return ErrUnknownBaseToken
	}
	return nil
}

func (c Config) logf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}
