package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/foliolabs/folio/internal/adapters/catalog"
	"github.com/foliolabs/folio/internal/adapters/http/api"
	"github.com/foliolabs/folio/internal/adapters/metadata"
	"github.com/foliolabs/folio/internal/app"
	"github.com/foliolabs/folio/internal/config"
	"github.com/foliolabs/folio/pkg/logger"
	"github.com/foliolabs/folio/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	cat := catalog.New(cfg.CatalogURL, cfg.CatalogAPIKey,
		catalog.WithLookupTTL(time.Duration(cfg.LookupCacheTTLSeconds)*time.Second),
		catalog.WithLookupCacheSize(cfg.LookupCacheSize),
	)

	resolverOpts := []app.ResolverOption{
		app.WithSettlePolicy(
			time.Duration(cfg.SettlePollInitialMS)*time.Millisecond,
			cfg.SettlePollMultiplier,
			cfg.SettlePollMaxAttempts,
		),
	}
	if cfg.EnrichmentEnabled {
		metaOpts := []metadata.Option{}
		if cfg.MetadataURL != "" {
			metaOpts = append(metaOpts, metadata.WithBaseURL(cfg.MetadataURL))
		}
		resolverOpts = append(resolverOpts, app.WithEnricher(metadata.New(metaOpts...)))
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithCatalog(cat),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithInflightSize(cfg.InflightSize),
		app.WithOutcomeHistory(cfg.OutcomeHistory),
		app.WithResolverOptions(resolverOpts...),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = svc.Stop(context.Background())
	}()

	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	apiServer := api.NewServer(svc, api.WithMaxRecentLimit(cfg.MaxRecentLimit))
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater refreshes process-level gauges periodically.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateMemoryUsage(m.Alloc)
			metrics.UpdateGoroutineCount(runtime.NumGoroutine())
		}
	}
}
