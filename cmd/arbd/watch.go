package main

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"solana-arb-lab/internal/arbitrage"
	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/orchestrator"
	"solana-arb-lab/internal/solana"
)

// passRunner runs one discovery pass.
type passRunner interface {
	RunPass(ctx context.Context) (*orchestrator.PassResult, error)
}

// watcher re-runs discovery when a subscribed pool account changes or the interval elapses.
// Pool updates are coalesced: a pass starts once no update arrived for the debounce period.
type watcher struct {
	runner     passRunner
	subscriber solana.AccountSubscriber // nil: interval only
	interval   time.Duration
	debounce   time.Duration
	logger     *log.Logger
	onPass     func(ctx context.Context, pass *orchestrator.PassResult)

	subscribed map[string]struct{}
	updates    chan string
}

func newWatcher(runner passRunner, subscriber solana.AccountSubscriber, interval, debounce time.Duration, logger *log.Logger) *watcher {
	return &watcher{
		runner:     runner,
		subscriber: subscriber,
		interval:   interval,
		debounce:   debounce,
		logger:     logger,
		subscribed: make(map[string]struct{}),
		updates:    make(chan string, 256),
	}
}

// Run loops until ctx is cancelled. Failed passes are logged; the next trigger retries.
func (w *watcher) Run(ctx context.Context) error {
	w.pass(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var debounceC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case pool := <-w.updates:
			w.logf("Pool %s updated", pool)
			if debounceC == nil {
				debounceC = time.After(w.debounce)
			}

		case <-debounceC:
			debounceC = nil
			w.drain()
			w.pass(ctx)
			ticker.Reset(w.interval)

		case <-ticker.C:
			w.pass(ctx)
		}
	}
}

func (w *watcher) pass(ctx context.Context) {
	pass, err := w.runner.RunPass(ctx)
	switch {
	case err == nil:
	case errors.Is(err, arbitrage.ErrNoRoutesGenerated):
		w.logf("Pass produced no routes")
	case errors.Is(err, context.Canceled):
		return
	default:
		w.logf("Pass failed: %v", err)
	}

	if w.onPass != nil {
		w.onPass(ctx, pass)
	}
	if pass != nil && pass.Result != nil {
		w.subscribe(ctx, whirlpoolPools(pass.Result.Included))
	}
}

// subscribe adds account subscriptions for pools not yet watched.
func (w *watcher) subscribe(ctx context.Context, pools []string) {
	if w.subscriber == nil {
		return
	}

	for _, pool := range pools {
		if _, ok := w.subscribed[pool]; ok {
			continue
		}
		ch, err := w.subscriber.SubscribeAccount(ctx, pool)
		if err != nil {
			w.logf("Subscribe %s failed: %v", pool, err)
			continue
		}
		w.subscribed[pool] = struct{}{}

		go func(pool string, ch <-chan solana.AccountNotification) {
			for range ch {
				select {
				case w.updates <- pool:
				default:
				}
			}
		}(pool, ch)
	}
}

// drain discards updates that arrived during the debounce period.
func (w *watcher) drain() {
	for {
		select {
		case <-w.updates:
		default:
			return
		}
	}
}

// whirlpoolPools returns the sorted addresses of included Whirlpool markets.
func whirlpoolPools(included map[string]domain.Market) []string {
	var pools []string
	for addr, m := range included {
		if m.DexLabel == domain.DexOrcaWhirlpools {
			pools = append(pools, addr)
		}
	}
	sort.Strings(pools)
	return pools
}

func (w *watcher) logf(format string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
	}
}
