package eventstore

import (
	"errors"
)

var (
	// ErrConcurrencyConflict is returned by Append when the events matching the filter changed since they were queried.
	ErrConcurrencyConflict = errors.New("concurrency conflict: the event stream was modified concurrently")

	ErrEmptyEventsTableName  = errors.New("events table name must not be empty")
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
	ErrNoEventsToAppend      = errors.New("at least one event must be supplied for append")

	ErrBuildingQueryFailed         = errors.New("building the sql query failed")
	ErrQueryingEventsFailed        = errors.New("querying events failed")
	ErrScanningDBRowFailed         = errors.New("scanning a database row failed")
	ErrBuildingStorableEventFailed = errors.New("building a storable event from a database row failed")
	ErrAppendingEventFailed        = errors.New("appending events failed")
	ErrGettingRowsAffectedFailed   = errors.New("reading rows affected failed")
	ErrMigratingSchemaFailed       = errors.New("migrating the events schema failed")
)

// MaxSequenceNumberUint is the highest sequence number among the events matched by a Filter.
type MaxSequenceNumberUint = uint
