package arbitrage

import (
	"fmt"
	"os"
	"sort"

	"github.com/sugawarayuuta/sonnet"

	"solana-arb-lab/internal/domain"
)

// RuleMode selects how a venue's markets are filtered.
type RuleMode string

const (
	// RuleExclude always excludes the venue's markets.
	RuleExclude RuleMode = "exclude"
	// RuleMinLiquidity includes a market iff its liquidity is >= MinLiquidity.
	RuleMinLiquidity RuleMode = "min_liquidity"
)

// LiquidityRule is the filter rule of one venue.
type LiquidityRule struct {
	Mode         RuleMode `json:"mode"`
	MinLiquidity uint64   `json:"min_liquidity"`
}

// FilterPolicy maps each supported venue to its liquidity rule.
type FilterPolicy map[domain.DexLabel]LiquidityRule

// Default liquidity thresholds.
const (
	// WhirlpoolMinLiquidity is ~$2,000 in fixed point with 6 implied decimals.
	WhirlpoolMinLiquidity uint64 = 2_000_000_000
	// RaydiumMinLiquidity is $2,000 as reported by the venue.
	RaydiumMinLiquidity uint64 = 2_000
)

// DefaultFilterPolicy returns the built-in venue policy.
// ORCA and RAYDIUM_CLMM report no comparable liquidity figure and are excluded.
func DefaultFilterPolicy() FilterPolicy {
	return FilterPolicy{
		domain.DexOrca:           {Mode: RuleExclude},
		domain.DexOrcaWhirlpools: {Mode: RuleMinLiquidity, MinLiquidity: WhirlpoolMinLiquidity},
		domain.DexRaydiumCLMM:    {Mode: RuleExclude},
		domain.DexRaydium:        {Mode: RuleMinLiquidity, MinLiquidity: RaydiumMinLiquidity},
	}
}

// Validate checks every rule has a known mode.
func (p FilterPolicy) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: no rules", ErrInvalidPolicy)
	}
	for label, rule := range p {
		switch rule.Mode {
		case RuleExclude, RuleMinLiquidity:
		default:
			return fmt.Errorf("%w: venue %s has unknown mode %q", ErrInvalidPolicy, label, rule.Mode)
		}
	}
	return nil
}

// LoadFilterPolicy reads a JSON policy file: {"<DEX_LABEL>": {"mode": ..., "min_liquidity": ...}}.
func LoadFilterPolicy(path string) (FilterPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	var raw map[string]LiquidityRule
	if err := sonnet.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode policy file: %w", err)
	}

	policy := make(FilterPolicy, len(raw))
	for label, rule := range raw {
		policy[domain.DexLabel(label)] = rule
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

// FilterResult partitions aggregated markets.
type FilterResult struct {
	Included map[string]domain.Market // pool address -> market
	Excluded []string                 // pool addresses, sorted
}

// FilterMarkets partitions markets into included and excluded sets according to policy.
// Returns ErrUnsupportedVenueLabel for a venue without a rule and ErrMissingLiquidityData
// for a min_liquidity venue market without a liquidity figure; no partial result then.
func FilterMarkets(markets map[string]domain.Market, policy FilterPolicy) (*FilterResult, error) {
	keys := make([]string, 0, len(markets))
	for key := range markets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := &FilterResult{
		Included: make(map[string]domain.Market),
		Excluded: make([]string, 0),
	}

	for _, key := range keys {
		m := markets[key]
		rule, ok := policy[m.DexLabel]
		if !ok {
			return nil, fmt.Errorf("%w: %q (pool %s)", ErrUnsupportedVenueLabel, m.DexLabel, key)
		}

		switch rule.Mode {
		case RuleExclude:
			result.Excluded = append(result.Excluded, key)
		case RuleMinLiquidity:
			if m.Liquidity == nil {
				return nil, fmt.Errorf("%w: pool %s (%s)", ErrMissingLiquidityData, key, m.DexLabel)
			}
			if *m.Liquidity >= rule.MinLiquidity {
				result.Included[key] = m
			} else {
				result.Excluded = append(result.Excluded, key)
			}
		default:
			return nil, fmt.Errorf("%w: venue %s has unknown mode %q", ErrInvalidPolicy, m.DexLabel, rule.Mode)
		}
	}

	return result, nil
}
