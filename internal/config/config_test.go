package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/coachmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.JobRetention, convey.ShouldEqual, time.Hour)
			convey.So(cfg.DefaultRankLimit, convey.ShouldEqual, 5)
			convey.So(cfg.MatchWeights.Category, convey.ShouldEqual, 30)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = " " }},
			{"zero queue", func(c *config.Config) { c.QueueSize = 0 }},
			{"zero workers", func(c *config.Config) { c.WorkerCount = 0 }},
			{"negative dedupe", func(c *config.Config) { c.DedupeSize = -1 }},
			{"zero batch size", func(c *config.Config) { c.MaxBatchSize = 0 }},
			{"negative retention", func(c *config.Config) { c.JobRetention = -time.Second }},
			{"max below default", func(c *config.Config) { c.MaxRankLimit = 2 }},
			{"negative rate", func(c *config.Config) { c.RateLimitPerMinute = -5 }},
			{"zero threshold", func(c *config.Config) { c.AnomalyZThreshold = 0 }},
			{"negative weight", func(c *config.Config) { c.MatchWeights.Text = -1 }},
			{"bad level", func(c *config.Config) { c.LogLevel = "loud" }},
			{"bad format", func(c *config.Config) { c.LogFormat = "xml" }},
		}
		for _, tc := range cases {
			convey.Convey("When the config has "+tc.name, func() {
				tc.mutate(cfg)

				convey.Convey("Then validation fails with ErrInvalidConfig", func() {
					convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("When every weight is zero", func() {
			cfg.MatchWeights.Category = 0
			cfg.MatchWeights.Experience = 0
			cfg.MatchWeights.Text = 0
			cfg.MatchWeights.Rating = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When rate limiting is disabled", func() {
			cfg.RateLimitPerMinute = 0
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
