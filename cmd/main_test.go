package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/coachmatch/internal/config"
	"github.com/okian/coachmatch/pkg/logger"
	"github.com/okian/coachmatch/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			t.Setenv("COACHMATCH_ADDR", ":8080")
			t.Setenv("COACHMATCH_QUEUE_SIZE", "1000")
			t.Setenv("COACHMATCH_WORKER_COUNT", "4")

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			t.Setenv("COACHMATCH_QUEUE_SIZE", "-1")

			convey.Convey("Then loading fails", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
			convey.So(manager, convey.ShouldNotBeNil)
		})
	})
}

func TestServiceWiring(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given the default configuration", t, func() {
		cfg := config.New(ctx)
		log := logger.Get()

		convey.Convey("When no database is configured", func() {
			svc := newService(cfg, nil, log)

			convey.Convey("Then the service runs without a catalog", func() {
				convey.So(svc.GetStats(ctx)["catalog"], convey.ShouldEqual, false)
			})
		})

		convey.Convey("When a database path is configured", func() {
			path := filepath.Join(t.TempDir(), "catalog.db")
			catalog, err := openCatalog(ctx, path)
			convey.So(err, convey.ShouldBeNil)
			convey.Reset(func() { _ = catalog.Close() })
			svc := newService(cfg, catalog, log)

			convey.Convey("Then the schema exists and the service sees it", func() {
				_, statErr := os.Stat(path)
				convey.So(statErr, convey.ShouldBeNil)
				stats := svc.GetStats(ctx)
				convey.So(stats["catalog"], convey.ShouldEqual, true)
				convey.So(stats["catalogRecords"], convey.ShouldResemble,
					map[string]int{"learners": 0, "coaches": 0, "courses": 0, "sessions": 0})
			})
		})

		convey.Convey("When the database path cannot be opened", func() {
			_, err := openCatalog(ctx, filepath.Join(t.TempDir(), "missing", "dir", "catalog.db"))
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestRouter(t *testing.T) {
	convey.Convey("Given the assembled router", t, func() {
		cfg := config.New(context.Background())
		h := newRouter(newService(cfg, nil, logger.Get()), cfg, logger.Get())

		for _, path := range []string{"/healthz", "/stats", "/api-docs", "/openapi.yaml"} {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
		}

		convey.Convey("Then unknown routes are not found", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard", http.NoBody))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a cancelled context", t, func() {
		cfg := config.New(context.Background())
		cfg.Addr = "127.0.0.1:0"
		cfg.WorkerCount = 1
		cfg.DatabasePath = filepath.Join(t.TempDir(), "run.db")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("Then run shuts down cleanly", func() {
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg) }()

			select {
			case err := <-done:
				convey.So(err, convey.ShouldBeNil)
			case <-time.After(5 * time.Second):
				convey.So("run did not return", convey.ShouldBeEmpty)
			}
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then the loop returns once its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})
	})
}
