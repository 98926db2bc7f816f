package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/okian/coachmatch/internal/domain/model"
	"github.com/okian/coachmatch/internal/seed"
	"github.com/okian/coachmatch/pkg/logger"
)

const defaultSeedTimeout = 10 * time.Minute

func main() {
	defaults := seed.DefaultConfig()
	var (
		dbPath   = flag.String("db", defaults.DatabasePath, "SQLite catalog file to create or update")
		seedVal  = flag.Uint64("seed", defaults.Seed, "Random seed; the same seed yields the same catalog")
		learners = flag.Int("learners", defaults.Learners, "Number of learners")
		coaches  = flag.Int("coaches", defaults.Coaches, "Number of coaches")
		courses  = flag.Int("courses-per-coach", defaults.CoursesPerCoach, "Courses offered by each coach")
		sessions = flag.Int("sessions", defaults.SessionsPerLearner, "Sessions per learner")
		start    = flag.String("start", defaults.Start.String(), "Date of the first session (YYYY-MM-DD)")
		workers  = flag.Int("workers", defaults.Workers, "Concurrent generation workers")
		timeout  = flag.Duration("timeout", defaultSeedTimeout, "Overall time limit")
		verbose  = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: seed [options]\n\nFills a coachmatch SQLite catalog with synthetic data.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(logger.WithLevel(level)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	startDate, err := model.ParseDate(*start)
	if err != nil {
		_, _ = os.Stderr.WriteString("invalid -start: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg := &seed.Config{
		DatabasePath:       *dbPath,
		Seed:               *seedVal,
		Learners:           *learners,
		Coaches:            *coaches,
		CoursesPerCoach:    *courses,
		SessionsPerLearner: *sessions,
		Start:              startDate,
		Workers:            *workers,
		Verbose:            *verbose,
	}
	stats, err := seed.Run(ctx, cfg)
	if err != nil {
		logger.Get().Error(ctx, "seed failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
	fmt.Printf("seeded %s: %d learners, %d coaches, %d courses, %d sessions in %s\n",
		cfg.DatabasePath, stats.Learners, stats.Coaches, stats.Courses, stats.Sessions, stats.Duration.Round(time.Millisecond))
}
