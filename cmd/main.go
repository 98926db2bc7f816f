package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/coachmatch/internal/adapters/http/api"
	"github.com/okian/coachmatch/internal/adapters/http/swagger"
	"github.com/okian/coachmatch/internal/adapters/storage"
	service "github.com/okian/coachmatch/internal/app"
	"github.com/okian/coachmatch/internal/config"
	"github.com/okian/coachmatch/pkg/logger"
	"github.com/okian/coachmatch/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't configured yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel), logger.WithFormat(logger.Format(cfg.LogFormat))); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "coachmatch exited", logger.Error(err))
		os.Exit(1)
	}
}

// run serves the API until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	var catalog *storage.Catalog
	if cfg.DatabasePath != "" {
		c, err := openCatalog(ctx, cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer func() {
			if err := c.Close(); err != nil {
				log.Warn(ctx, "catalog close failed", logger.Error(err))
			}
		}()
		catalog = c
	} else {
		log.Warn(ctx, "no database_path configured; catalog endpoints will answer 503")
	}

	svc := newService(cfg, catalog, log)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(svc, cfg, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

func openCatalog(ctx context.Context, path string) (*storage.Catalog, error) {
	c, err := storage.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	if err := c.EnsureSchema(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ensure catalog schema: %w", err)
	}
	return c, nil
}

func newService(cfg *config.Config, catalog *storage.Catalog, log logger.Logger) *service.Service {
	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithMaxBatchSize(cfg.MaxBatchSize),
		service.WithJobRetention(cfg.JobRetention),
		service.WithMatchWeights(cfg.MatchWeights),
		service.WithRankLimits(cfg.DefaultRankLimit, cfg.MaxRankLimit),
		service.WithAnomalyThreshold(cfg.AnomalyZThreshold),
	}
	// a nil *storage.Catalog must not become a non-nil Catalog interface
	if catalog != nil {
		opts = append(opts, service.WithCatalog(catalog))
	}
	return service.New(opts...)
}

func newRouter(svc *service.Service, cfg *config.Config, log logger.Logger) http.Handler {
	apiServer := api.NewServer(svc,
		api.WithRateLimit(cfg.RateLimitPerMinute),
		api.WithMaxLimit(cfg.MaxRankLimit),
		api.WithLogger(log.Named("api")),
	)
	r := apiServer.Router()
	swagger.Register(r)
	return r
}

// startSystemMetricsUpdater refreshes process metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
