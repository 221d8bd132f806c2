package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openshelf/circulation-engine-go/circulation/postgresengine"
	"github.com/openshelf/circulation-engine-go/promadapters"
	"github.com/openshelf/circulation-engine-go/shell/config"
)

const (
	defaultRate        = 20
	defaultWorkers     = 4
	defaultMembers     = 40
	defaultBooks       = 120
	defaultMetricsAddr = ":2112"
)

type Config struct {
	Rate        int
	Workers     int
	Duration    time.Duration
	Members     int
	Books       int
	MetricsAddr string
}

func main() {
	cfg := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	pool, err := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolSingleConfig())
	if err != nil {
		log.Fatalf("Failed to create pgx pool: %v", err)
	}
	defer pool.Close()

	// Test database connection
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	metrics := promadapters.NewCollector()

	store, err := postgresengine.NewCirculationStoreFromPGXPool(pool,
		postgresengine.WithLogger(logger),
		postgresengine.WithContextualLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create circulation store: %v", err)
	}

	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	if err := store.SeedDefaultPolicies(ctx); err != nil {
		log.Fatalf("Failed to seed loan policies: %v", err)
	}

	library, err := seedLibrary(ctx, pool, cfg.Members, cfg.Books)
	if err != nil {
		log.Fatalf("Failed to seed members and books: %v", err)
	}
	log.Printf("Seeded %d members and %d books", len(library.MemberIDs), len(library.BookIDs))

	metricsServer := startMetricsServer(cfg.MetricsAddr)
	defer shutdownMetricsServer(metricsServer)

	driver := NewDriver(store, metrics, logger, cfg, library)

	runCtx := ctx
	if cfg.Duration > 0 {
		var runCancel context.CancelFunc
		runCtx, runCancel = context.WithTimeout(ctx, cfg.Duration)
		defer runCancel()
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- driver.Run(runCtx)
	}()

	log.Printf("Circulation demo started: rate=%d ops/s, workers=%d, metrics on %s/metrics",
		cfg.Rate, cfg.Workers, cfg.MetricsAddr)
	log.Printf("Press Ctrl+C to stop...")

	// Wait for shutdown signal, the duration to elapse, or a driver failure
	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
		<-errChan
	case err := <-errChan:
		if err != nil {
			log.Printf("Driver stopped with error: %v", err)
		}
	}

	driver.logFinalStats()

	reportCtx, reportCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer reportCancel()

	printFinalReport(reportCtx, store, library)
}

func parseFlags() Config {
	var (
		rate        = flag.Int("rate", defaultRate, "Operations per second")
		workers     = flag.Int("workers", defaultWorkers, "Concurrent workers executing operations")
		duration    = flag.Duration("duration", 0, "How long to run, 0 means until interrupted")
		members     = flag.Int("members", defaultMembers, "Number of members to seed")
		books       = flag.Int("books", defaultBooks, "Number of books to seed")
		metricsAddr = flag.String("metrics-addr", defaultMetricsAddr, "Listen address for the Prometheus /metrics endpoint")
	)

	flag.Parse()

	if *rate < 1 {
		log.Fatalf("Invalid rate %d: must be at least 1", *rate)
	}

	if *workers < 1 {
		log.Fatalf("Invalid worker count %d: must be at least 1", *workers)
	}

	if *members < 1 || *books < 1 {
		log.Fatalf("Invalid population: need at least 1 member and 1 book")
	}

	return Config{
		Rate:        *rate,
		Workers:     *workers,
		Duration:    *duration,
		Members:     *members,
		Books:       *books,
		MetricsAddr: *metricsAddr,
	}
}

func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Metrics server failed: %v", err)
		}
	}()

	return server
}

func shutdownMetricsServer(server *http.Server) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Metrics server shutdown: %v", err)
	}
}
