// Package orchestrator runs discovery passes end to end.
// It coordinates: aggregation → filter → routes → paths → persistence
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"solana-arb-lab/internal/arbitrage"
	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/idhash"
	"solana-arb-lab/internal/markets"
	"solana-arb-lab/internal/observability"
	"solana-arb-lab/internal/storage"
)

// Orchestrator coordinates one discovery pass at a time.
// Flow: aggregation → arbitrage.Calculate → stores → metrics
type Orchestrator struct {
	aggregator *arbitrage.Aggregator
	stores     storage.Stores
	metrics    *observability.Metrics

	// Configs
	tokens    []domain.Token
	baseToken string
	policy    arbitrage.FilterPolicy
	maxHops   int

	// Options
	logger *log.Logger
	now    func() time.Time

	seq atomic.Uint64 // passes started, part of the run ID
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Sources []markets.Source
	Stores  storage.Stores
	Tokens  []domain.Token

	// Discovery parameters
	BaseToken string                 // empty means the first token
	Policy    arbitrage.FilterPolicy // nil means arbitrage.DefaultFilterPolicy
	MaxHops   int                    // 0 means arbitrage.DefaultMaxHops

	// Options
	Metrics *observability.Metrics // nil disables metrics
	Logger  *log.Logger            // nil disables logging
	Clock   func() time.Time       // nil means time.Now
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		stores:    opts.Stores,
		metrics:   opts.Metrics,
		tokens:    opts.Tokens,
		baseToken: opts.BaseToken,
		policy:    opts.Policy,
		maxHops:   opts.MaxHops,
		logger:    opts.Logger,
		now:       opts.Clock,
	}
	if o.baseToken == "" && len(o.tokens) > 0 {
		o.baseToken = o.tokens[0].Address
	}
	if o.now == nil {
		o.now = time.Now
	}

	sources := make([]markets.Source, len(opts.Sources))
	for i, src := range opts.Sources {
		sources[i] = &timedSource{Source: src, metrics: opts.Metrics, now: o.now}
	}
	o.aggregator = arbitrage.NewAggregator(sources...)

	return o
}

// BaseToken returns the anchor mint of the passes.
func (o *Orchestrator) BaseToken() string {
	return o.baseToken
}

// PassResult contains the outcome of one discovery pass.
type PassResult struct {
	Run    *domain.DiscoveryRun
	Result *arbitrage.Result // nil unless Run.Status is OK
}

// RunPass executes one discovery pass and records it.
// A pass whose included markets yield no routes is recorded with status NO_ROUTES and
// returns arbitrage.ErrNoRoutesGenerated; any other failure is recorded as FAILED.
// The run record is written last, after snapshots, paths and stats.
func (o *Orchestrator) RunPass(ctx context.Context) (*PassResult, error) {
	started := o.now()
	run := &domain.DiscoveryRun{
		RunID:     idhash.ComputeRunID(o.baseToken, started.UnixMilli(), o.seq.Add(1)),
		BaseToken: o.baseToken,
		StartedAt: started.UnixMilli(),
	}
	o.log("Pass %s: starting (base %s)", shortID(run.RunID), o.baseToken)

	// Phase 1: Aggregation
	if err := arbitrage.ValidateBaseToken(o.tokens, o.baseToken); err != nil {
		return o.fail(ctx, run, nil, fmt.Errorf("validate base token: %w", err))
	}
	aggregated, err := o.aggregator.Aggregate(ctx, o.tokens)
	if err != nil {
		return o.fail(ctx, run, nil, fmt.Errorf("aggregate markets: %w", err))
	}
	run.MarketsTotal = len(aggregated)
	o.log("  Aggregated %d markets", len(aggregated))

	// Phase 2: Path calculation
	result, err := arbitrage.Calculate(aggregated, arbitrage.Config{
		BaseToken: o.baseToken,
		Policy:    o.policy,
		MaxHops:   o.maxHops,
		Logger:    o.logger,
	})
	if err != nil {
		return o.fail(ctx, run, aggregated, fmt.Errorf("calculate paths: %w", err))
	}

	hops := result.PathsByHops()
	run.MarketsIncluded = len(result.Included)
	run.MarketsExcluded = len(result.Excluded)
	run.RoutesTotal = len(result.Routes)
	run.PathsOneHop = hops[1]
	run.PathsTwoHop = hops[2]
	run.Status = domain.RunStatusOK

	// Phase 3: Persistence
	if err := o.persistSnapshots(ctx, run.RunID, aggregated, result.Included); err != nil {
		return o.fail(ctx, run, nil, err)
	}
	if err := o.stores.Paths.InsertBulk(ctx, run.RunID, result.Paths); err != nil {
		return o.fail(ctx, run, nil, fmt.Errorf("store paths: %w", err))
	}
	if err := o.persistStats(ctx, run, aggregated, result); err != nil {
		return o.fail(ctx, run, nil, err)
	}

	run.FinishedAt = o.now().UnixMilli()
	if err := o.stores.Runs.Insert(ctx, run); err != nil {
		o.metrics.RecordError("storage")
		return nil, fmt.Errorf("store run: %w", err)
	}

	o.recordMetrics(run, aggregated, result, started)
	o.log("Pass %s: %d included, %d routes, %d paths", shortID(run.RunID),
		run.MarketsIncluded, run.RoutesTotal, len(result.Paths))

	return &PassResult{Run: run, Result: result}, nil
}

// fail records a NO_ROUTES or FAILED run and returns cause.
// aggregated, when given, is snapshotted as fully excluded for NO_ROUTES passes.
func (o *Orchestrator) fail(ctx context.Context, run *domain.DiscoveryRun, aggregated map[string]domain.Market, cause error) (*PassResult, error) {
	run.Status = domain.RunStatusFailed
	if errors.Is(cause, arbitrage.ErrNoRoutesGenerated) {
		run.Status = domain.RunStatusNoRoutes
		run.MarketsExcluded = len(aggregated)
		if err := o.persistSnapshots(ctx, run.RunID, aggregated, nil); err != nil {
			o.log("Pass %s: %v", shortID(run.RunID), err)
		}
	}
	run.Error = cause.Error()
	run.FinishedAt = o.now().UnixMilli()

	o.metrics.RecordError(errorKind(cause))
	o.resetPassGauges()
	o.metrics.RecordPass(string(run.Status), float64(run.FinishedAt-run.StartedAt)/1000)
	o.log("Pass %s: %s: %v", shortID(run.RunID), run.Status, cause)

	// Use a detached context so a cancelled pass still leaves a record.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := o.stores.Runs.Insert(recordCtx, run); err != nil {
		return &PassResult{Run: run}, fmt.Errorf("%w (recording run: %v)", cause, err)
	}

	return &PassResult{Run: run}, cause
}

func (o *Orchestrator) persistSnapshots(ctx context.Context, runID string, aggregated, included map[string]domain.Market) error {
	if len(aggregated) == 0 {
		return nil
	}

	pools := make([]string, 0, len(aggregated))
	for pool := range aggregated {
		pools = append(pools, pool)
	}
	sort.Strings(pools)

	snapshots := make([]*domain.MarketSnapshot, 0, len(pools))
	for _, pool := range pools {
		_, ok := included[pool]
		snapshots = append(snapshots, &domain.MarketSnapshot{
			RunID:    runID,
			Market:   aggregated[pool],
			Included: ok,
		})
	}

	if err := o.stores.Snapshots.InsertBulk(ctx, snapshots); err != nil {
		return fmt.Errorf("store market snapshots: %w", err)
	}
	return nil
}

func (o *Orchestrator) persistStats(ctx context.Context, run *domain.DiscoveryRun, aggregated map[string]domain.Market, result *arbitrage.Result) error {
	points := VenueStats(run.RunID, run.StartedAt, aggregated, result)
	if len(points) == 0 {
		return nil
	}
	if err := o.stores.Stats.InsertBulk(ctx, points); err != nil {
		return fmt.Errorf("store discovery stats: %w", err)
	}
	return nil
}

// VenueStats computes per-venue counters of a pass, ordered by dex label.
func VenueStats(runID string, timestampMs int64, aggregated map[string]domain.Market, result *arbitrage.Result) []*domain.DiscoveryStatsPoint {
	byDex := make(map[domain.DexLabel]*domain.DiscoveryStatsPoint)
	point := func(label domain.DexLabel) *domain.DiscoveryStatsPoint {
		p, ok := byDex[label]
		if !ok {
			p = &domain.DiscoveryStatsPoint{RunID: runID, TimestampMs: timestampMs, DexLabel: label}
			byDex[label] = p
		}
		return p
	}

	for _, m := range result.Included {
		point(m.DexLabel).MarketsIncluded++
	}
	for _, pool := range result.Excluded {
		point(aggregated[pool].DexLabel).MarketsExcluded++
	}
	for _, r := range result.Routes {
		point(r.Dex).Routes++
	}

	points := make([]*domain.DiscoveryStatsPoint, 0, len(byDex))
	for _, p := range byDex {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].DexLabel < points[j].DexLabel
	})
	return points
}

func (o *Orchestrator) recordMetrics(run *domain.DiscoveryRun, aggregated map[string]domain.Market, result *arbitrage.Result, started time.Time) {
	if o.metrics == nil {
		return
	}

	o.metrics.ResetMarkets()
	for _, p := range VenueStats(run.RunID, run.StartedAt, aggregated, result) {
		o.metrics.SetMarkets(string(p.DexLabel), p.MarketsIncluded, p.MarketsExcluded)
	}
	o.metrics.SetRoutes(len(result.Routes))
	byHops := result.PathsByHops()
	for h := 1; h <= o.hopBudget(); h++ {
		o.metrics.SetPaths(strconv.Itoa(h), byHops[h])
	}
	o.metrics.RecordPass(string(run.Status), o.now().Sub(started).Seconds())
	o.metrics.MarkSuccess(o.now().Unix())
}

// resetPassGauges zeroes the last-pass gauges after a NO_ROUTES or FAILED pass.
func (o *Orchestrator) resetPassGauges() {
	if o.metrics == nil {
		return
	}
	o.metrics.ResetMarkets()
	o.metrics.SetRoutes(0)
	for h := 1; h <= o.hopBudget(); h++ {
		o.metrics.SetPaths(strconv.Itoa(h), 0)
	}
}

func (o *Orchestrator) hopBudget() int {
	if o.maxHops > 0 {
		return o.maxHops
	}
	return arbitrage.DefaultMaxHops
}

// errorKind maps an error to the metrics label of its kind.
func errorKind(err error) string {
	switch {
	case errors.Is(err, arbitrage.ErrMissingLiquidityData):
		return "missing_liquidity"
	case errors.Is(err, arbitrage.ErrUnsupportedVenueLabel):
		return "unsupported_venue"
	case errors.Is(err, arbitrage.ErrEmptyTokenUniverse):
		return "empty_token_universe"
	case errors.Is(err, arbitrage.ErrNoRoutesGenerated):
		return "no_routes"
	case errors.Is(err, arbitrage.ErrUnknownBaseToken):
		return "unknown_base_token"
	case errors.Is(err, arbitrage.ErrInvalidMaxHops):
		return "invalid_max_hops"
	case errors.Is(err, arbitrage.ErrInvalidPolicy):
		return "invalid_policy"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "context"
	case errors.Is(err, storage.ErrDuplicateKey), errors.Is(err, storage.ErrInvalidInput):
		return "storage"
	default:
		return "other"
	}
}

// timedSource records fetch durations of a wrapped source.
type timedSource struct {
	markets.Source
	metrics *observability.Metrics
	now     func() time.Time
}

func (s *timedSource) Fetch(ctx context.Context) ([]domain.Dex, error) {
	start := s.now()
	dexs, err := s.Source.Fetch(ctx)
	s.metrics.RecordSourceFetch(s.Name(), s.now().Sub(start).Seconds())
	return dexs, err
}

func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.logger != nil {
		o.logger.Printf(format, args...)
	}
}
