// Package main provides the unified server that runs all components together:
// - Ingestion (continuous): WebSocket post firehose
// - Snapshots (scheduled): hourly velocity snapshot runs
// - Widget API: cached, rate-limited finance widget endpoints
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"social-velocity-lab/internal/cache"
	"social-velocity-lab/internal/catalog"
	"social-velocity-lab/internal/httpserver"
	"social-velocity-lab/internal/ingestion"
	"social-velocity-lab/internal/observability"
	"social-velocity-lab/internal/orchestrator"
	"social-velocity-lab/internal/storage"
	chstore "social-velocity-lab/internal/storage/clickhouse"
	"social-velocity-lab/internal/storage/memory"
	"social-velocity-lab/internal/storage/migrations"
	pgstore "social-velocity-lab/internal/storage/postgres"
	"social-velocity-lab/internal/widgets"
)

// Server holds all components of the unified service.
type Server struct {
	// Configuration
	firehoseURL      string
	symbolSearchURL  string
	postgresDSN      string
	clickhouseDSN    string
	useMemory        bool
	snapshotInterval time.Duration
	batchSize        int
	flushInterval    time.Duration

	// Stores
	stores *allStores

	// Components
	logger *log.Logger

	// State
	mu               sync.Mutex
	lastSnapshotRun  time.Time
	snapshotRunning  bool
	ingestionStarted time.Time

	// Stats
	snapshotRuns int
}

// allStores holds all storage implementations.
type allStores struct {
	postStore     storage.PostStore
	snapshotStore storage.SnapshotStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	firehoseURL := flag.String("firehose-url", os.Getenv("FIREHOSE_URL"), "WebSocket post firehose endpoint")
	symbolSearchURL := flag.String("symbol-search-url", os.Getenv("SYMBOL_SEARCH_URL"), "Symbol search endpoint for tickers outside the static catalog")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	apiAddr := flag.String("api-addr", ":8080", "Widget API HTTP address")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")
	snapshotInterval := flag.Duration("snapshot-interval", 1*time.Hour, "Velocity snapshot run interval")
	cacheTTL := flag.Duration("cache-ttl", 60*time.Second, "Widget response cache TTL")
	rateLimit := flag.Int("rate-limit", 60, "Max widget API requests per client per window")
	rateWindow := flag.Duration("rate-window", 1*time.Minute, "Rate limit window")
	batchSize := flag.Int("batch-size", 50, "Ingestion batch size")
	flushInterval := flag.Duration("flush-interval", 5*time.Second, "Ingestion partial-batch flush interval")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *firehoseURL == "" {
		logger.Fatal("--firehose-url is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create server
	server := &Server{
		firehoseURL:      *firehoseURL,
		symbolSearchURL:  *symbolSearchURL,
		postgresDSN:      *postgresDSN,
		clickhouseDSN:    *clickhouseDSN,
		useMemory:        *useMemory,
		snapshotInterval: *snapshotInterval,
		batchSize:        *batchSize,
		flushInterval:    *flushInterval,
		stores:           stores,
		logger:           logger,
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start widget API server
	go server.startAPIServer(*apiAddr, *cacheTTL, *rateLimit, *rateWindow)

	// Start metrics/status server
	go server.startMetricsServer(*metricsAddr)

	// Run the unified server
	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores. In database mode migrations
// run first so a fresh deployment needs no manual schema step.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, logger *log.Logger) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			postStore:     memory.NewPostStore(),
			snapshotStore: memory.NewSnapshotStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL (source posts)
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse (velocity snapshots)
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	logger.Println("Migrations applied")

	stores := &allStores{
		postStore:     pgstore.NewPostStore(pool),
		snapshotStore: chstore.NewSnapshotStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// Run starts the unified server with all components.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting unified server...")

	// Create error channel for goroutines
	errCh := make(chan error, 2)

	// Start ingestion in background
	go func() {
		err := s.runIngestion(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("ingestion: %w", err)
		}
	}()

	// Start snapshot scheduler in background
	go func() {
		err := s.runSnapshotScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("snapshot scheduler: %w", err)
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runIngestion runs continuous post ingestion from the firehose.
func (s *Server) runIngestion(ctx context.Context) error {
	s.logger.Println("Starting ingestion...")

	// Subscribe with expanded queries so the feed matches company-name
	// mentions, not just ticker symbols.
	tickers := catalog.AllTickers()
	queries := make([]string, 0, len(tickers))
	for _, t := range tickers {
		queries = append(queries, catalog.ExpandQuery(t, catalog.CompanyNames(t)))
	}

	config := ingestion.DefaultFirehoseConfig()
	config.SubscribeQueries = queries
	source := ingestion.NewFirehoseSource(s.firehoseURL, &config,
		log.New(os.Stdout, "[firehose] ", log.LstdFlags|log.Lshortfile))

	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		Source:        source,
		PostStore:     s.stores.postStore,
		Resolver:      catalog.NewResolver(s.symbolSearchURL),
		BatchSize:     s.batchSize,
		FlushInterval: s.flushInterval,
		Logger:        log.New(os.Stdout, "[ingestion] ", log.LstdFlags|log.Lshortfile),
	})

	s.mu.Lock()
	s.ingestionStarted = time.Now()
	s.mu.Unlock()

	s.logger.Println("Ingestion started")
	return runner.Run(ctx)
}

// runSnapshotScheduler runs velocity snapshots on schedule.
func (s *Server) runSnapshotScheduler(ctx context.Context) error {
	s.logger.Printf("Starting snapshot scheduler (interval: %v)...", s.snapshotInterval)

	// Run immediately on start
	s.runSnapshot(ctx)

	ticker := time.NewTicker(s.snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runSnapshot(ctx)
		}
	}
}

// runSnapshot executes one velocity snapshot run over the catalog.
func (s *Server) runSnapshot(ctx context.Context) {
	s.mu.Lock()
	if s.snapshotRunning {
		s.mu.Unlock()
		s.logger.Println("Snapshot run already in progress, skipping...")
		return
	}
	s.snapshotRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.snapshotRunning = false
		s.lastSnapshotRun = time.Now()
		s.snapshotRuns++
		s.mu.Unlock()
	}()

	s.logger.Println("Running velocity snapshot...")
	start := time.Now()

	orch := orchestrator.New(orchestrator.Options{
		PostStore:     s.stores.postStore,
		SnapshotStore: s.stores.snapshotStore,
		Verbose:       true,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		s.logger.Printf("Snapshot run error: %v", err)
		observability.RecordSnapshotRun("error", time.Since(start).Seconds())
		return
	}

	s.logger.Printf("Snapshot run completed in %v: %d tickers, %d created, %d duplicates, %d errors",
		time.Since(start), result.TickersProcessed, result.SnapshotsCreated,
		result.DuplicatesSkipped, len(result.Errors))

	observability.RecordSnapshotRun("success", time.Since(start).Seconds())
	observability.RecordSnapshotsStored(result.SnapshotsCreated, float64(time.Now().Unix()))
}

// startAPIServer starts the widget API HTTP server.
func (s *Server) startAPIServer(addr string, cacheTTL time.Duration, rateLimit int, rateWindow time.Duration) {
	builder := widgets.NewBuilder(s.stores.postStore)
	api := httpserver.NewServer(
		builder,
		cache.NewTTL(cacheTTL),
		cache.NewRateLimiter(rateLimit, rateWindow),
		log.New(os.Stdout, "[api] ", log.LstdFlags|log.Lshortfile),
	)

	s.logger.Printf("Starting widget API server on %s", addr)
	if err := http.ListenAndServe(addr, api.Handler()); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("Widget API server error: %v", err)
	}
}

// startMetricsServer starts the HTTP server for health/metrics/status.
func (s *Server) startMetricsServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	s.logger.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("Metrics server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status           string    `json:"status"`
	Uptime           string    `json:"uptime"`
	IngestionStarted time.Time `json:"ingestion_started"`
	LastSnapshotRun  time.Time `json:"last_snapshot_run,omitempty"`
	SnapshotRuns     int       `json:"snapshot_runs"`
	SnapshotRunning  bool      `json:"snapshot_running"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:           "running",
		Uptime:           time.Since(s.ingestionStarted).String(),
		IngestionStarted: s.ingestionStarted,
		LastSnapshotRun:  s.lastSnapshotRun,
		SnapshotRuns:     s.snapshotRuns,
		SnapshotRunning:  s.snapshotRunning,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// loadEnvFile loads environment variables from .env file if it exists.
// Existing env vars are not overridden.
func loadEnvFile() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("[server] failed to load .env: %v", err)
	}
}
