// Package adapters hides the differences between the supported Postgres client libraries.
package adapters

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// sqlStateSerializationFailure is the SQLSTATE Postgres reports when a SERIALIZABLE transaction must be retried.
const sqlStateSerializationFailure = "40001"

// DBAdapter is what the event store needs from a database client.
type DBAdapter interface {
	// Query runs a read. It may be served by a replica when ctx asks for eventual consistency.
	Query(ctx context.Context, query string) (DBRows, error)

	// ExecSerializable runs a single statement in its own SERIALIZABLE transaction.
	ExecSerializable(ctx context.Context, query string) (DBResult, error)

	// Exec runs a statement outside of an explicit transaction.
	Exec(ctx context.Context, query string) error
}

// DBRows is a forward-only row iterator.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult reports how many rows a statement touched.
type DBResult interface {
	RowsAffected() (int64, error)
}

// IsSerializationFailure reports whether err is a Postgres serialization failure from any supported driver.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateSerializationFailure
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == sqlStateSerializationFailure
	}

	return false
}
