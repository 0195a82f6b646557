// Command loadgen drives concurrent borrow and return traffic against the lending engine
// and checks afterwards that no copy was lent twice.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore/memengine"
	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore/oteladapters"
	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore/postgresengine"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/engine"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/policy"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell/config"
)

type Config struct {
	Rate         int
	Duration     time.Duration
	Burst        int
	Members      int
	Copies       int
	ReturnWeight int
	DatabaseURL  string
	EventTable   string
}

func main() {
	cfg := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewTextHandler(os.Stderr, nil))

	eventStore, closeStore := openEventStore(ctx, cfg)
	defer closeStore()

	lending, err := engine.New(eventStore, policy.NewEventStoreProvider(eventStore))
	if err != nil {
		log.Fatalf("creating engine: %v", err)
	}

	lg := NewLoadGenerator(lending, eventStore, cfg, logger)
	if err := lg.Seed(ctx); err != nil {
		log.Fatalf("seeding: %v", err)
	}

	started := time.Now()
	if cfg.Burst > 0 {
		lg.Burst(ctx, cfg.Burst)
	} else {
		runCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
		lg.Start(runCtx)
		cancel()

		waitCtx, cancelWait := context.WithTimeout(context.Background(), 10*time.Second)
		if err := lg.Wait(waitCtx); err != nil {
			logger.WarnContext(waitCtx, "scenarios still running at shutdown", "error", err.Error())
		}
		cancelWait()
	}

	stats := lg.Stats()
	logger.InfoContext(ctx, "load generation finished",
		"elapsed", time.Since(started).Round(time.Millisecond).String(),
		"requests", stats.Requests,
		"succeeded", stats.Succeeded,
		"refused", stats.Refused,
		"failed", stats.Failed,
	)

	if err := lg.Verify(context.Background()); err != nil {
		log.Fatalf("single-claim check failed: %v", err)
	}

	logger.InfoContext(ctx, "every copy has at most one open loan")
}

func parseFlags() Config {
	cfg := Config{}

	flag.IntVar(&cfg.Rate, "rate", 50, "scenarios per second")
	flag.DurationVar(&cfg.Duration, "duration", 30*time.Second, "how long to generate load")
	flag.IntVar(&cfg.Burst, "burst", 0, "run this many scenarios at once instead of a steady rate")
	flag.IntVar(&cfg.Members, "members", 50, "number of competing members")
	flag.IntVar(&cfg.Copies, "copies", 5, "number of copies of the contested book")
	flag.IntVar(&cfg.ReturnWeight, "return-weight", 30, "percentage of scenarios that return a loan")
	flag.StringVar(&cfg.DatabaseURL, "database-url", "", "postgres DSN; in-memory store when empty")
	flag.StringVar(&cfg.EventTable, "event-table", "loadgen_events", "events table for the postgres store")
	flag.Parse()

	if cfg.Rate <= 0 || cfg.Members <= 0 || cfg.Copies <= 0 || cfg.ReturnWeight < 0 || cfg.ReturnWeight > 100 {
		log.Fatalf("invalid flags: rate, members and copies must be positive, return-weight within [0, 100]")
	}

	return cfg
}

func openEventStore(ctx context.Context, cfg Config) (shell.EventStore, func()) {
	if cfg.DatabaseURL == "" {
		return memengine.NewEventStore(), func() {}
	}

	pool, err := config.NewPGXPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connecting to postgres: %v", err)
	}

	es, err := postgresengine.NewEventStoreFromPGXPool(pool, postgresengine.WithTableName(cfg.EventTable))
	if err != nil {
		pool.Close()
		log.Fatalf("creating event store: %v", err)
	}

	if err := es.Migrate(ctx); err != nil {
		pool.Close()
		log.Fatalf("migrating event store: %v", err)
	}

	return es, pool.Close
}
