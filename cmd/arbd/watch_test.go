package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-arb-lab/internal/arbitrage"
	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/orchestrator"
	"solana-arb-lab/internal/solana"
)

type fakeRunner struct {
	passes   chan struct{}
	included map[string]domain.Market
	err      error
}

func (r *fakeRunner) RunPass(context.Context) (*orchestrator.PassResult, error) {
	r.passes <- struct{}{}
	pass := &orchestrator.PassResult{Run: &domain.DiscoveryRun{Status: domain.RunStatusOK}}
	if r.err != nil {
		pass.Run.Status = domain.RunStatusFailed
		return pass, r.err
	}
	pass.Result = &arbitrage.Result{Included: r.included}
	return pass, nil
}

type fakeSubscriber struct {
	mu   sync.Mutex
	subs map[string]chan solana.AccountNotification
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{subs: make(map[string]chan solana.AccountNotification)}
}

func (s *fakeSubscriber) SubscribeAccount(_ context.Context, pubkey string) (<-chan solana.AccountNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan solana.AccountNotification, 16)
	s.subs[pubkey] = ch
	return ch, nil
}

func (s *fakeSubscriber) Close() error { return nil }

func (s *fakeSubscriber) notify(pubkey string) {
	s.mu.Lock()
	ch := s.subs[pubkey]
	s.mu.Unlock()
	ch <- solana.AccountNotification{Pubkey: pubkey}
}

func (s *fakeSubscriber) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.subs {
		keys = append(keys, k)
	}
	return keys
}

func waitPass(t *testing.T, passes <-chan struct{}) {
	t.Helper()
	select {
	case <-passes:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for pass")
	}
}

func TestWatcher_DebouncedPoolUpdates(t *testing.T) {
	runner := &fakeRunner{
		passes: make(chan struct{}, 16),
		included: map[string]domain.Market{
			"w1": {ID: "w1", DexLabel: domain.DexOrcaWhirlpools},
			"r1": {ID: "r1", DexLabel: domain.DexRaydium},
		},
	}
	sub := newFakeSubscriber()
	w := newWatcher(runner, sub, time.Hour, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitPass(t, runner.passes)
	require.Eventually(t, func() bool { return len(sub.keys()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"w1"}, sub.keys())

	// A burst of updates yields one pass
	for i := 0; i < 3; i++ {
		sub.notify("w1")
	}
	waitPass(t, runner.passes)

	select {
	case <-runner.passes:
		t.Fatal("burst of updates triggered more than one pass")
	case <-time.After(150 * time.Millisecond):
	}

	// Already subscribed pools are not subscribed twice
	assert.Len(t, sub.keys(), 1)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_Interval(t *testing.T) {
	runner := &fakeRunner{passes: make(chan struct{}, 16), err: errors.New("rpc unavailable")}
	w := newWatcher(runner, nil, 20*time.Millisecond, time.Second, nil)

	var mu sync.Mutex
	reported := 0
	w.onPass = func(_ context.Context, pass *orchestrator.PassResult) {
		mu.Lock()
		defer mu.Unlock()
		if pass != nil && pass.Run.Status == domain.RunStatusFailed {
			reported++
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Failed passes do not stop the loop
	for i := 0; i < 3; i++ {
		waitPass(t, runner.passes)
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return reported >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestWhirlpoolPools(t *testing.T) {
	included := map[string]domain.Market{
		"b": {ID: "b", DexLabel: domain.DexOrcaWhirlpools},
		"a": {ID: "a", DexLabel: domain.DexOrcaWhirlpools},
		"c": {ID: "c", DexLabel: domain.DexRaydium},
	}

	assert.Equal(t, []string{"a", "b"}, whirlpoolPools(included))
	assert.Empty(t, whirlpoolPools(nil))
}
