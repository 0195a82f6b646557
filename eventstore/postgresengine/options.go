package postgresengine

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore/postgresengine/internal/adapters"
)

// Option configures an EventStore.
type Option func(*EventStore) error

// WithTableName sets the events table name. The default is "events".
func WithTableName(tableName string) Option {
	return func(es *EventStore) error {
		if tableName == "" {
			return eventstore.ErrEmptyEventsTableName
		}

		es.eventTableName = tableName

		return nil
	}
}

// WithLogger sets a logger.
//
// Debug: SQL statements with timings. Info: event counts, durations, conflicts. Warn: cleanup failures. Error: failed operations.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger. It takes precedence over WithLogger.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *EventStore) error {
		es.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets a metrics collector for durations, event counts, conflicts, and database errors.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) error {
		es.metricsCollector = collector
		return nil
	}
}

// WithTracing sets a tracing collector. Query and Append each get a span.
func WithTracing(collector eventstore.TracingCollector) Option {
	return func(es *EventStore) error {
		es.tracingCollector = collector
		return nil
	}
}

// WithPGXReplica routes eventually consistent queries to replica. Only valid for pgx-backed stores.
func WithPGXReplica(replica *pgxpool.Pool) Option {
	return func(es *EventStore) error {
		primary, ok := es.db.(*adapters.PGXAdapter)
		if !ok || replica == nil {
			return ErrReplicaNotSupported
		}

		es.db = primary.WithReplica(replica)

		return nil
	}
}
