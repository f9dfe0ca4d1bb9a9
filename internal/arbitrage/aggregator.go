package arbitrage

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/markets"
)

// Aggregator merges the listings of several venue sources into one market set.
type Aggregator struct {
	sources []markets.Source
}

// NewAggregator creates an aggregator over sources. Source order is merge order.
func NewAggregator(sources ...markets.Source) *Aggregator {
	return &Aggregator{sources: sources}
}

// Aggregate fetches every source and merges the listings restricted to tokens.
// Sources are fetched concurrently; the merge runs only after all of them completed,
// in source order. Any fetch failure aborts the whole aggregation.
func (a *Aggregator) Aggregate(ctx context.Context, tokens []domain.Token) (map[string]domain.Market, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyTokenUniverse
	}

	fetched := make([][]domain.Dex, len(a.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range a.sources {
		g.Go(func() error {
			dexs, err := src.Fetch(gctx)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", src.Name(), err)
			}
			fetched[i] = dexs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var dexs []domain.Dex
	for _, batch := range fetched {
		dexs = append(dexs, batch...)
	}
	return AggregateMarkets(dexs, tokens)
}

// AggregateMarkets merges venue listings into a map keyed by pool address, keeping only
// pools whose two mints are both in tokens. A pool address seen twice keeps the last one
// in iteration order: venues in slice order, pair keys sorted, markets in slice order.
// Markets with identical mints are dropped.
func AggregateMarkets(dexs []domain.Dex, tokens []domain.Token) (map[string]domain.Market, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyTokenUniverse
	}

	universe := domain.TokenAddresses(tokens)
	result := make(map[string]domain.Market)

	for _, dex := range dexs {
		pairs := make([]string, 0, len(dex.PairToMarkets))
		for pair := range dex.PairToMarkets {
			pairs = append(pairs, pair)
		}
		sort.Strings(pairs)

		for _, pair := range pairs {
			for _, m := range dex.PairToMarkets[pair] {
				if !m.IsValid() {
					continue
				}
				_, okA := universe[m.TokenMintA]
				_, okB := universe[m.TokenMintB]
				if !okA || !okB {
					continue
				}
				if m.DexLabel == "" {
					m.DexLabel = dex.Label
				}
				result[m.ID] = m
			}
		}
	}

	return result, nil
}
