package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"solana-arb-lab/internal/arbitrage"
	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/markets"
	"solana-arb-lab/internal/observability"
	"solana-arb-lab/internal/orchestrator"
	"solana-arb-lab/internal/reporting"
	"solana-arb-lab/internal/solana"
	"solana-arb-lab/internal/storage"
	chstore "solana-arb-lab/internal/storage/clickhouse"
	"solana-arb-lab/internal/storage/memory"
	"solana-arb-lab/internal/storage/migrations"
	pgstore "solana-arb-lab/internal/storage/postgres"
)

func main() {
	// Load .env file if exists; existing env vars win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[arbd] ignoring .env: %v", err)
	}

	// Parse flags (env vars as defaults)
	mode := flag.String("mode", "once", "Run mode: once or watch")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint (enables the Orca Whirlpools source)")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (watch mode pool subscriptions)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	tokensFile := flag.String("tokens", "tokens.json", "Token universe JSON file")
	listings := flag.String("listings", "", "Comma-separated venue listing JSON files")
	policyFile := flag.String("policy", "", "Liquidity policy JSON file (default built-in policy)")
	baseToken := flag.String("base-token", "", "Base token mint (default first token of the universe)")
	maxHops := flag.Int("max-hops", arbitrage.DefaultMaxHops, "Maximum hops per swap path")
	outputDir := flag.String("output-dir", "output", "Output directory for swap_paths.csv and DISCOVERY_REPORT.md")
	interval := flag.Duration("interval", 1*time.Minute, "Watch mode: maximum time between passes")
	debounce := flag.Duration("debounce", 2*time.Second, "Watch mode: quiet period after a pool update before a pass")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL and ClickHouse")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	history := flag.Duration("history", reporting.DefaultHistoryWindow, "Window of earlier passes summarized in the report (0 to disable)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[arbd] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *mode != "once" && *mode != "watch" {
		logger.Fatalf("Unknown mode: %s", *mode)
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	tokens, err := markets.LoadTokens(*tokensFile)
	if err != nil {
		logger.Fatalf("Failed to load tokens: %v", err)
	}

	policy := arbitrage.DefaultFilterPolicy()
	if *policyFile != "" {
		policy, err = arbitrage.LoadFilterPolicy(*policyFile)
		if err != nil {
			logger.Fatalf("Failed to load policy: %v", err)
		}
	}

	sources, rpc := buildSources(*listings, *rpcEndpoint, tokens, logger)
	if len(sources) == 0 {
		logger.Fatal("No venue sources configured. Use --listings or --rpc-endpoint")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if rpc != nil {
		if err := checkRPC(ctx, rpc, logger); err != nil {
			logger.Fatalf("Failed to reach RPC endpoint: %v", err)
		}
	}

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	metrics := observability.NewMetrics("", nil)
	if *metricsAddr != "" {
		go func() {
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, observability.NewServeMux(metrics)); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	orch := orchestrator.New(orchestrator.Options{
		Sources:   sources,
		Stores:    stores,
		Tokens:    tokens,
		BaseToken: *baseToken,
		Policy:    policy,
		MaxHops:   *maxHops,
		Metrics:   metrics,
		Logger:    log.New(os.Stdout, "[orchestrator] ", log.LstdFlags),
	})
	logger.Printf("Discovering paths for base token %s over %d tokens and %d sources", orch.BaseToken(), len(tokens), len(sources))

	gen := reporting.NewGenerator(stores.Runs, stores.Paths, stores.Stats).
		WithTokens(tokens).
		WithHistory(*history)
	writeOutputs := func(ctx context.Context, pass *orchestrator.PassResult) {
		if pass == nil {
			return
		}
		if err := writeReport(ctx, gen, pass.Run.RunID, *outputDir); err != nil {
			logger.Printf("Report error: %v", err)
		}
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
	}()

	switch *mode {
	case "once":
		pass, err := orch.RunPass(ctx)
		writeOutputs(ctx, pass)
		if err != nil && !errors.Is(err, arbitrage.ErrNoRoutesGenerated) {
			logger.Fatalf("Error: %v", err)
		}
	case "watch":
		var subscriber solana.AccountSubscriber
		if *wsEndpoint != "" && rpc != nil {
			ws, err := solana.NewWSClient(ctx, *wsEndpoint, nil)
			if err != nil {
				logger.Fatalf("Failed to create websocket client: %v", err)
			}
			defer ws.Close()
			subscriber = ws
		}

		w := newWatcher(orch, subscriber, *interval, *debounce, logger)
		w.onPass = writeOutputs
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatalf("Error: %v", err)
		}
	}

	logger.Println("Shutdown complete")
}

// buildSources creates venue sources from listing files and, with an RPC endpoint, Orca Whirlpools.
// The RPC client is nil when the Whirlpool source is disabled.
func buildSources(listings, rpcEndpoint string, tokens []domain.Token, logger *log.Logger) ([]markets.Source, *solana.HTTPClient) {
	var sources []markets.Source

	for _, path := range strings.Split(listings, ",") {
		path = strings.TrimSpace(path)
		if path != "" {
			sources = append(sources, markets.NewFileSource(path))
		}
	}

	if rpcEndpoint == "" {
		return sources, nil
	}
	rpc := solana.NewHTTPClient(rpcEndpoint)
	sources = append(sources, markets.NewWhirlpoolSource(rpc, tokens, markets.WithLogger(logger)))
	return sources, rpc
}

// slotReader reports the current slot of an RPC endpoint.
type slotReader interface {
	GetSlot(ctx context.Context) (int64, error)
}

// checkRPC fails fast when the endpoint does not answer, before any pass is recorded.
func checkRPC(ctx context.Context, rpc slotReader, logger *log.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slot, err := rpc.GetSlot(ctx)
	if err != nil {
		return fmt.Errorf("get slot: %w", err)
	}
	logger.Printf("RPC endpoint at slot %d", slot)
	return nil
}

// createStores returns memory stores, or PostgreSQL and ClickHouse stores after applying migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, logger *log.Logger) (storage.Stores, func(), error) {
	if useMemory {
		return memory.NewStores(), func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return storage.Stores{}, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	applied, err := migrations.RunPostgresMigrations(ctx, pool)
	if err != nil {
		pool.Close()
		return storage.Stores{}, nil, fmt.Errorf("postgres migrations: %w", err)
	}
	if len(applied) > 0 {
		logger.Printf("Applied postgres migrations: %v", applied)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return storage.Stores{}, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := pgstore.NewStores(pool, chstore.NewDiscoveryStatsStore(chConn))

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// writeReport renders the report of a run into outputDir.
func writeReport(ctx context.Context, gen *reporting.Generator, runID, outputDir string) error {
	report, err := gen.Generate(ctx, runID)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	csvPath := filepath.Join(outputDir, "swap_paths.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderPathsCSV(report.Paths)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", csvPath, err)
	}

	mdPath := filepath.Join(outputDir, "DISCOVERY_REPORT.md")
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", mdPath, err)
	}

	return nil
}
