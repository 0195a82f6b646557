// Command lendingd serves the lending engine over HTTP.
//
//	lendingd            run the service, configured from the environment
//	lendingd token ...  print a signed bearer token for local use
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore/oteladapters"
	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore/postgresengine"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/engine"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/query/openloans"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/httpapi"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/policy"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/reminders"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell/config"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell/observable"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/sink"
)

const (
	instrumentationName = "lendingd"
	shutdownTimeout     = 10 * time.Second
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := printToken(os.Args[2:]); err != nil {
			log.Fatalf("token: %v", err)
		}

		return
	}

	if err := run(); err != nil {
		log.Fatalf("lendingd: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, shutdownTelemetry, err := setupObservability(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTelemetry()

	logger := obs.logger

	eventStore, closeEventStore, err := openEventStore(ctx, cfg, obs)
	if err != nil {
		return err
	}
	defer closeEventStore()

	db, err := config.OpenGorm(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening gorm: %w", err)
	}

	auditLog := sink.NewGormAuditLog(db)
	notificationStore := sink.NewGormNotificationStore(db)
	if err := errors.Join(auditLog.Migrate(ctx), notificationStore.Migrate(ctx)); err != nil {
		return fmt.Errorf("migrating sink tables: %w", err)
	}

	dispatcher, err := sink.NewDispatcher(auditLog, sink.FanOut{notificationStore, sink.NewLogNotifier(logger)},
		sink.WithWorkers(cfg.DispatchWorkers),
		sink.WithQueueSize(cfg.DispatchQueue),
		sink.WithLogger(logger),
		sink.WithMetrics(obs.metrics),
	)
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	policyProvider, engineOptions, err := selectPolicySource(ctx, cfg, db, eventStore)
	if err != nil {
		return err
	}

	engineOptions = append(engineOptions,
		engine.WithPublisher(dispatcher),
		engine.WithObservability(
			observable.WithMetrics(obs.metrics),
			observable.WithTracing(obs.tracing),
			observable.WithContextualLogging(logger),
		),
	)

	lending, err := engine.New(eventStore, policyProvider, engineOptions...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	sweeper, err := reminders.NewSweeper(openloans.NewQueryHandler(eventStore), policyProvider, dispatcher,
		reminders.WithInterval(cfg.ReminderInterval),
		reminders.WithDueSoonWindow(cfg.DueSoonWindow),
		reminders.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("creating reminder sweeper: %w", err)
	}

	go sweeper.Run(ctx)

	app := httpapi.NewServer(lending, []byte(cfg.JWTSecret), httpapi.WithLogger(logger)).App()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Listen(cfg.HTTPAddr)
	}()

	logger.InfoContext(ctx, "lendingd started",
		"addr", cfg.HTTPAddr,
		"db_driver", cfg.DBDriver,
		"policy_source", cfg.PolicySource,
	)

	select {
	case <-ctx.Done():
		logger.InfoContext(context.Background(), "shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logger.ErrorContext(context.Background(), "http server stopped", "error", err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(
		app.ShutdownWithContext(shutdownCtx),
		dispatcher.Close(shutdownCtx),
	)
}

type observability struct {
	logger  shell.ContextualLogger
	metrics shell.MetricsCollector
	tracing shell.TracingCollector
}

// setupObservability logs JSON to stdout. With OTEL_ENABLED it additionally exports
// traces, metrics and logs over OTLP.
func setupObservability(ctx context.Context, cfg config.Config) (observability, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return observability{}, nil, fmt.Errorf("parsing LOG_LEVEL: %w", err)
	}

	stdout := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(stdout.Slog())

	if !cfg.OTELEnabled {
		return observability{logger: stdout}, func() {}, nil
	}

	telemetry, err := config.SetupTelemetry(ctx, cfg)
	if err != nil {
		return observability{}, nil, fmt.Errorf("setting up telemetry: %w", err)
	}

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			stdout.ErrorContext(shutdownCtx, "telemetry shutdown failed", "error", err.Error())
		}
	}

	return observability{
		logger:  oteladapters.NewSlogBridgeLogger(instrumentationName),
		metrics: oteladapters.NewMetricsCollector(otel.Meter(instrumentationName)),
		tracing: oteladapters.NewTracingCollector(otel.Tracer(instrumentationName)),
	}, shutdown, nil
}

func openEventStore(ctx context.Context, cfg config.Config, obs observability) (*postgresengine.EventStore, func(), error) {
	options := []postgresengine.Option{
		postgresengine.WithTableName(cfg.EventTable),
		postgresengine.WithContextualLogger(obs.logger),
	}
	if obs.metrics != nil {
		options = append(options, postgresengine.WithMetrics(obs.metrics))
	}
	if obs.tracing != nil {
		options = append(options, postgresengine.WithTracing(obs.tracing))
	}

	var (
		es      *postgresengine.EventStore
		closeDB func()
		err     error
	)

	switch cfg.DBDriver {
	case config.DriverPGX:
		pool, poolErr := config.NewPGXPool(ctx, cfg.DatabaseURL)
		if poolErr != nil {
			return nil, nil, fmt.Errorf("connecting pgx pool: %w", poolErr)
		}
		closeDB = pool.Close

		if cfg.DatabaseReplicaURL != "" {
			replica, replicaErr := config.NewPGXPool(ctx, cfg.DatabaseReplicaURL)
			if replicaErr != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("connecting pgx replica pool: %w", replicaErr)
			}
			closeDB = func() {
				replica.Close()
				pool.Close()
			}
			options = append(options, postgresengine.WithPGXReplica(replica))
			obs.logger.InfoContext(ctx, "eventually consistent reads served by replica")
		}

		es, err = postgresengine.NewEventStoreFromPGXPool(pool, options...)

	case config.DriverSQL:
		db, dbErr := config.OpenSQLDB(cfg.DatabaseURL)
		if dbErr != nil {
			return nil, nil, fmt.Errorf("opening database/sql: %w", dbErr)
		}
		closeDB = func() { _ = db.Close() }
		es, err = postgresengine.NewEventStoreFromSQLDB(db, options...)

	case config.DriverSQLX:
		db, dbErr := config.OpenSQLX(cfg.DatabaseURL)
		if dbErr != nil {
			return nil, nil, fmt.Errorf("opening sqlx: %w", dbErr)
		}
		closeDB = func() { _ = db.Close() }
		es, err = postgresengine.NewEventStoreFromSQLX(db, options...)

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownDBDriver, cfg.DBDriver)
	}

	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("creating event store: %w", err)
	}

	if err := es.Migrate(ctx); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("migrating event store: %w", err)
	}

	return es, closeDB, nil
}

// selectPolicySource returns the policy provider and, for the settings table, the engine option
// that keeps the table in step with UpdatePolicy.
func selectPolicySource(
	ctx context.Context,
	cfg config.Config,
	db *gorm.DB,
	eventStore shell.QueriesEvents,
) (policy.Provider, []engine.Option, error) {

	if cfg.PolicySource != config.PolicySourceSettings {
		return policy.NewEventStoreProvider(eventStore), nil, nil
	}

	settings := policy.NewSettingsTableProvider(db)
	if err := settings.Migrate(ctx); err != nil {
		return nil, nil, fmt.Errorf("migrating lending settings: %w", err)
	}

	return settings, []engine.Option{engine.WithPolicySaver(settings)}, nil
}

func printToken(args []string) error {
	flags := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := flags.String("sub", "", "caller id (uuid)")
	role := flags.String("role", string(core.RoleMember), "MEMBER or ADMIN")
	ttl := flags.Duration("ttl", 24*time.Hour, "token lifetime")

	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	parsedRole, err := core.ParseRole(*role)
	if err != nil {
		return err
	}

	token, err := httpapi.IssueToken([]byte(cfg.JWTSecret), core.BuildActor(*subject, parsedRole), *ttl, time.Now())
	if err != nil {
		return err
	}

	fmt.Println(token)

	return nil
}
