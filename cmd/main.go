package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/runeset/elotrace/internal/adapters/http/api"
	"github.com/runeset/elotrace/internal/adapters/http/site"
	"github.com/runeset/elotrace/internal/adapters/http/swagger"
	service "github.com/runeset/elotrace/internal/app"
	"github.com/runeset/elotrace/internal/config"
	"github.com/runeset/elotrace/pkg/logger"
	"github.com/runeset/elotrace/pkg/metrics"
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
	// Disable default Go metrics collection to avoid duplicate metrics.
	// We collect our own system metrics instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to flush logs: " + err.Error() + "\n")
		}
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

	svc := service.New(
		service.WithLogger(log),
		service.WithClubEndpoint(cfg.ClubBaseURL, cfg.ClubTimeout),
		service.WithSnapshotEndpoint(cfg.SnapshotBaseURL, cfg.SnapshotTimeout, cfg.SnapshotStartYear, cfg.SnapshotEndYear),
		service.WithFastPath(cfg.FastPathTemplates, cfg.FastPathTimeout),
		service.WithPoliteness(cfg.PolitenessDelay),
		service.WithBreaker(cfg.BreakerFailures, cfg.BreakerCooldown),
		service.WithCacheMaxEntries(cfg.CacheMaxEntries),
		service.WithQueueCapacity(cfg.QueueCapacity),
		service.WithMaxCompare(cfg.MaxCompare),
		service.WithMaxWindow(cfg.MaxWindow),
		service.WithAliasFile(cfg.AliasFile),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		svc.Stop(stopCtx)
	}()

	go startSystemMetricsUpdater(ctx)

	r := chi.NewRouter()

	// Dashboard at /, docs at /docs, JSON API under /api/v1.
	site.Register(ctx, r)
	swagger.Register(ctx, r)
	api.NewServer(svc,
		api.WithMaxCompare(cfg.MaxCompare),
		api.WithMaxWindow(cfg.MaxWindow),
	).Register(ctx, r)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
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

// startSystemMetricsUpdater refreshes process-level gauges until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	start := time.Now()
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
			metrics.UpdateUptime(time.Since(start).Seconds())
		}
	}
}
