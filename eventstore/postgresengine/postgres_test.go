package postgresengine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore/postgresengine/internal/adapters"
)

/***** test doubles *****/

type fakeRow struct {
	eventType  string
	occurredAt time.Time
	payload    []byte
	metadata   []byte
	sequence   int64
}

type fakeRows struct {
	rows []fakeRow
	idx  int
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	*(dest[0].(*string)) = row.eventType
	*(dest[1].(*time.Time)) = row.occurredAt
	*(dest[2].(*[]byte)) = row.payload
	*(dest[3].(*[]byte)) = row.metadata
	*(dest[4].(*int64)) = row.sequence

	return nil
}

func (r *fakeRows) Err() error   { return nil }
func (r *fakeRows) Close() error { return nil }

type fakeResult int64

func (f fakeResult) RowsAffected() (int64, error) { return int64(f), nil }

type fakeDB struct {
	rows       []fakeRow
	affected   int64
	execErr    error
	queries    []string
	statements []string
}

func (f *fakeDB) Query(_ context.Context, query string) (adapters.DBRows, error) {
	f.queries = append(f.queries, query)
	return &fakeRows{rows: f.rows}, nil
}

func (f *fakeDB) ExecSerializable(_ context.Context, query string) (adapters.DBResult, error) {
	f.queries = append(f.queries, query)
	if f.execErr != nil {
		return nil, f.execErr
	}

	return fakeResult(f.affected), nil
}

func (f *fakeDB) Exec(_ context.Context, query string) error {
	f.statements = append(f.statements, query)
	return nil
}

func givenStore(t *testing.T, db *fakeDB, options ...Option) *EventStore {
	t.Helper()

	es, err := newEventStore(db, options...)
	require.NoError(t, err)

	return es
}

func givenStorableEvent(t *testing.T, eventType string, payload string) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEventWithEmptyMetadata(eventType, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), []byte(payload))
	require.NoError(t, err)

	return event
}

func loanFilter() eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("LoanRequested", "LoanApproved").
		AndAnyPredicateOf(eventstore.P("LoanID", "l-1"), eventstore.P("CopyID", "c-1")).
		Finalize()
}

/***** query building *****/

func Test_BuildSelectQuery_RendersFilter(t *testing.T) {
	// arrange
	es := givenStore(t, &fakeDB{})

	// act
	sqlQuery, err := es.buildSelectQuery(loanFilter())

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `FROM "events"`)
	assert.Contains(t, sqlQuery, `"event_type" IN ('LoanApproved', 'LoanRequested')`)
	assert.Contains(t, sqlQuery, `payload @> '{"CopyID":"c-1"}'::jsonb`)
	assert.Contains(t, sqlQuery, `payload @> '{"LoanID":"l-1"}'::jsonb`)
	assert.Contains(t, sqlQuery, ` OR `)
	assert.True(t, strings.HasSuffix(sqlQuery, `ORDER BY "sequence_number" ASC`))
}

func Test_BuildSelectQuery_MatchAllHasNoWhereClause(t *testing.T) {
	es := givenStore(t, &fakeDB{}, WithTableName("lending_events"))

	sqlQuery, err := es.buildSelectQuery(eventstore.BuildEventFilter().MatchingAnyEvent())

	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `FROM "lending_events"`)
	assert.NotContains(t, sqlQuery, "WHERE")
}

func Test_BuildSelectQuery_EscapesPredicateValues(t *testing.T) {
	es := givenStore(t, &fakeDB{})
	filter := eventstore.BuildEventFilter().Matching().AnyPredicateOf(eventstore.P("LoanID", "x'; DROP TABLE events; --")).Finalize()

	sqlQuery, err := es.buildSelectQuery(filter)

	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `x''; DROP TABLE events; --`)
}

func Test_BuildInsertQuery_GuardsOnExpectedSequence(t *testing.T) {
	// arrange
	es := givenStore(t, &fakeDB{})
	events := eventstore.StorableEvents{
		givenStorableEvent(t, "LoanApproved", `{"LoanID":"l-1"}`),
		givenStorableEvent(t, "CopyClaimed", `{"CopyID":"c-1"}`),
	}

	// act
	sqlQuery, err := es.buildInsertQuery(events, loanFilter(), 42)

	// assert
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sqlQuery, `WITH context AS (SELECT MAX("sequence_number") AS "max_seq"`))
	assert.Contains(t, sqlQuery, `UNION ALL`)
	assert.Contains(t, sqlQuery, `(COALESCE("max_seq", 0) = 42)`)
	assert.Contains(t, sqlQuery, `'{"CopyID":"c-1"}'::jsonb`)
}

/***** Query *****/

func Test_Query_ScansRowsAndReportsMaxSequence(t *testing.T) {
	// arrange
	occurredAt := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	db := &fakeDB{rows: []fakeRow{
		{eventType: "LoanRequested", occurredAt: occurredAt, payload: []byte(`{"LoanID":"l-1"}`), metadata: []byte(`{}`), sequence: 3},
		{eventType: "LoanApproved", occurredAt: occurredAt, payload: []byte(`{"LoanID":"l-1"}`), metadata: []byte(`{}`), sequence: 7},
	}}
	es := givenStore(t, db)

	// act
	events, maxSeq, err := es.Query(context.Background(), loanFilter())

	// assert
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint(7), maxSeq)
	assert.Equal(t, uint(3), events[0].SequenceNumber)
	assert.Equal(t, "LoanApproved", events[1].EventType)
}

func Test_Query_RejectsCorruptRows(t *testing.T) {
	db := &fakeDB{rows: []fakeRow{{eventType: "LoanRequested", payload: []byte(`{`), metadata: []byte(`{}`), sequence: 1}}}
	es := givenStore(t, db)

	_, _, err := es.Query(context.Background(), loanFilter())

	assert.ErrorIs(t, err, eventstore.ErrBuildingStorableEventFailed)
}

/***** Append *****/

func Test_Append_Succeeds_WhenAllRowsInserted(t *testing.T) {
	db := &fakeDB{affected: 2}
	es := givenStore(t, db)

	err := es.Append(context.Background(), loanFilter(), 5,
		givenStorableEvent(t, "LoanApproved", `{"LoanID":"l-1"}`),
		givenStorableEvent(t, "CopyClaimed", `{"CopyID":"c-1"}`),
	)

	assert.NoError(t, err)
	assert.Len(t, db.queries, 1)
}

func Test_Append_ConcurrencyConflicts(t *testing.T) {
	testCases := []struct {
		name string
		db   *fakeDB
	}{
		{name: "stale expected sequence", db: &fakeDB{affected: 0}},
		{name: "pgx serialization failure", db: &fakeDB{execErr: &pgconn.PgError{Code: "40001"}}},
		{name: "lib/pq serialization failure", db: &fakeDB{execErr: &pq.Error{Code: "40001"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			es := givenStore(t, tc.db)

			err := es.Append(context.Background(), loanFilter(), 1, givenStorableEvent(t, "LoanApproved", `{"LoanID":"l-1"}`))

			assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
		})
	}
}

func Test_Append_OtherDatabaseErrors(t *testing.T) {
	es := givenStore(t, &fakeDB{execErr: errors.New("connection reset")})

	err := es.Append(context.Background(), loanFilter(), 1, givenStorableEvent(t, "LoanApproved", `{"LoanID":"l-1"}`))

	assert.ErrorIs(t, err, eventstore.ErrAppendingEventFailed)
	assert.NotErrorIs(t, err, eventstore.ErrConcurrencyConflict)
}

func Test_Append_RequiresEvents(t *testing.T) {
	es := givenStore(t, &fakeDB{})

	assert.ErrorIs(t, es.Append(context.Background(), loanFilter(), 0), eventstore.ErrNoEventsToAppend)
}

/***** construction and schema *****/

func Test_Options_Validation(t *testing.T) {
	_, err := newEventStore(&fakeDB{}, WithTableName(""))
	assert.ErrorIs(t, err, eventstore.ErrEmptyEventsTableName)

	_, err = newEventStore(&fakeDB{}, WithPGXReplica(nil))
	assert.ErrorIs(t, err, ErrReplicaNotSupported)

	_, err = NewEventStoreFromSQLDB(nil)
	assert.ErrorIs(t, err, eventstore.ErrNilDatabaseConnection)
}

func Test_WithPGXReplica_AttachesReplicaToPGXStore(t *testing.T) {
	// arrange
	primary, err := pgxpool.New(context.Background(), "postgres://lending@primary.invalid:5432/lending")
	require.NoError(t, err)
	t.Cleanup(primary.Close)

	replica, err := pgxpool.New(context.Background(), "postgres://lending@replica.invalid:5432/lending")
	require.NoError(t, err)
	t.Cleanup(replica.Close)

	// act
	es, err := NewEventStoreFromPGXPool(primary, WithPGXReplica(replica))

	// assert
	require.NoError(t, err)
	assert.Equal(t, adapters.NewPGXAdapter(primary).WithReplica(replica), es.db)
}

func Test_Migrate_CreatesTableAndIndexes(t *testing.T) {
	db := &fakeDB{}
	es := givenStore(t, db, WithTableName("lending_events"))

	err := es.Migrate(context.Background())

	require.NoError(t, err)
	require.Len(t, db.statements, 3)
	assert.Contains(t, db.statements[0], `CREATE TABLE IF NOT EXISTS "lending_events"`)
	assert.Contains(t, db.statements[2], `USING gin (payload jsonb_path_ops)`)
}
