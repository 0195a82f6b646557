// Package postgresengine stores events in a single PostgreSQL table.
//
// Three client libraries are supported: pgx (pgxpool), database/sql (lib/pq), and sqlx.
// Append is one INSERT ... SELECT guarded by a CTE that re-reads the max sequence number of the
// filtered stream. It runs in a SERIALIZABLE transaction; a serialization failure is reported as
// eventstore.ErrConcurrencyConflict, the same as a stale expected sequence number.
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	store, _ := postgresengine.NewEventStoreFromPGXPool(pool,
//		postgresengine.WithTableName("events"),
//		postgresengine.WithLogger(slog.Default()),
//	)
//	_ = store.Migrate(ctx)
//
//	events, maxSeq, _ := store.Query(ctx, filter)
//	err := store.Append(ctx, filter, maxSeq, newEvents...)
package postgresengine
