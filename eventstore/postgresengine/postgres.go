package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore/postgresengine/internal/adapters"
)

const (
	defaultEventTableName = "events"
	dialectPostgres       = "postgres"
	colSequenceNumber     = "sequence_number"
	colEventType          = "event_type"
	colOccurredAt         = "occurred_at"
	colPayload            = "payload"
	colMetadata           = "metadata"
	cteContext            = "context"
	cteVals               = "vals"
	aliasMaxSeq           = "max_seq"
	castText              = "?::text"
	castTimestamp         = "?::timestamptz"
	castJsonb             = "?::jsonb"
	payloadContains       = colPayload + " @> ?::jsonb"
)

// ErrReplicaNotSupported is returned by WithPGXReplica for stores not built from a pgx pool.
var ErrReplicaNotSupported = errors.New("a read replica is only supported for pgx-backed event stores")

// EventStore is a Postgres-backed event store.
type EventStore struct {
	db               adapters.DBAdapter
	eventTableName   string
	logger           eventstore.Logger
	contextualLogger eventstore.ContextualLogger
	metricsCollector eventstore.MetricsCollector
	tracingCollector eventstore.TracingCollector
}

// NewEventStoreFromPGXPool creates an EventStore on a pgx pool.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(db), options...)
}

// NewEventStoreFromSQLDB creates an EventStore on a database/sql handle (lib/pq).
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options...)
}

// NewEventStoreFromSQLX creates an EventStore on a sqlx handle.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options...)
}

func newEventStore(db adapters.DBAdapter, options ...Option) (*EventStore, error) {
	es := &EventStore{
		db:             db,
		eventTableName: defaultEventTableName,
	}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// Migrate creates the events table and its indexes if they do not exist.
func (es *EventStore) Migrate(ctx context.Context) error {
	table := pq.QuoteIdentifier(es.eventTableName)

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			%s BIGSERIAL PRIMARY KEY,
			%s TEXT NOT NULL,
			%s TIMESTAMPTZ NOT NULL,
			%s JSONB NOT NULL,
			%s JSONB NOT NULL DEFAULT '{}'::jsonb
		)`, table, colSequenceNumber, colEventType, colOccurredAt, colPayload, colMetadata),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (%s)`,
			pq.QuoteIdentifier(es.eventTableName+"_event_type_idx"), table, colEventType),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING gin (%s jsonb_path_ops)`,
			pq.QuoteIdentifier(es.eventTableName+"_payload_idx"), table, colPayload),
	}

	for _, statement := range statements {
		if err := es.db.Exec(ctx, statement); err != nil {
			es.logError(ctx, logMsgMigrationFailed, err)
			return errors.Join(eventstore.ErrMigratingSchemaFailed, err)
		}
	}

	es.logOperation(ctx, logMsgSchemaMigrated, logAttrTable, es.eventTableName)

	return nil
}

// Query returns the events matching filter in sequence order,
// and the max sequence number of this "dynamic event stream" at the time of the query.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	ctx, span := es.startSpan(ctx, spanNameQuery, nil)
	start := time.Now()

	sqlQuery, err := es.buildSelectQuery(filter)
	if err != nil {
		es.logError(ctx, logMsgBuildSelectQueryFailed, err)
		es.observeFailure(ctx, span, operationQuery, errorTypeBuildQuery, time.Since(start))
		return nil, 0, err
	}

	rows, err := es.db.Query(ctx, sqlQuery)
	es.logSQL(ctx, operationQuery, sqlQuery, time.Since(start))
	if err != nil {
		es.logError(ctx, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)
		es.observeFailure(ctx, span, operationQuery, errorTypeDatabase, time.Since(start))
		return nil, 0, errors.Join(eventstore.ErrQueryingEventsFailed, err)
	}
	defer es.closeRows(ctx, rows)

	events, maxSequenceNumber, err := es.scanEvents(ctx, rows)
	if err != nil {
		es.observeFailure(ctx, span, operationQuery, errorTypeScan, time.Since(start))
		return nil, 0, err
	}

	duration := time.Since(start)
	es.logOperation(ctx, logMsgQueryCompleted, logAttrEventCount, len(events), logAttrDurationMS, toMilliseconds(duration))
	es.observeSuccess(ctx, span, operationQuery, len(events), duration)

	return events, maxSequenceNumber, nil
}

func (es *EventStore) scanEvents(ctx context.Context, rows adapters.DBRows) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	events := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for rows.Next() {
		var (
			eventType      string
			occurredAt     time.Time
			payload        []byte
			metadata       []byte
			sequenceNumber int64
		)

		if err := rows.Scan(&eventType, &occurredAt, &payload, &metadata, &sequenceNumber); err != nil {
			es.logError(ctx, logMsgScanRowFailed, err)
			return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, err)
		}

		event, err := eventstore.BuildStorableEvent(eventType, occurredAt, payload, metadata)
		if err != nil {
			es.logError(ctx, logMsgBuildStorableEventFailed, err, logAttrEventType, eventType)
			return nil, 0, errors.Join(eventstore.ErrBuildingStorableEventFailed, err)
		}

		event.SequenceNumber = uint(sequenceNumber)
		events = append(events, event)
		maxSequenceNumber = event.SequenceNumber
	}

	if err := rows.Err(); err != nil {
		es.logError(ctx, logMsgScanRowFailed, err)
		return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, err)
	}

	return events, maxSequenceNumber, nil
}

func (es *EventStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		es.logWarn(ctx, logMsgCloseRowsFailed, err)
	}
}

// Append writes all storableEvents atomically, provided the events matching filter
// still end at expectedMaxSequenceNumber. Pass the same filter that was used for the Query
// the decision was based on.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	storableEvents ...eventstore.StorableEvent,
) error {

	if len(storableEvents) == 0 {
		return eventstore.ErrNoEventsToAppend
	}

	ctx, span := es.startSpan(ctx, spanNameAppend, map[string]string{
		spanAttrEventCount:       fmt.Sprintf("%d", len(storableEvents)),
		spanAttrExpectedSequence: fmt.Sprintf("%d", expectedMaxSequenceNumber),
	})
	start := time.Now()

	sqlQuery, err := es.buildInsertQuery(storableEvents, filter, expectedMaxSequenceNumber)
	if err != nil {
		es.logError(ctx, logMsgBuildInsertQueryFailed, err, logAttrEventCount, len(storableEvents))
		es.observeFailure(ctx, span, operationAppend, errorTypeBuildQuery, time.Since(start))
		return err
	}

	result, err := es.db.ExecSerializable(ctx, sqlQuery)
	es.logSQL(ctx, operationAppend, sqlQuery, time.Since(start))
	if err != nil {
		if adapters.IsSerializationFailure(err) {
			es.observeConflict(ctx, span, expectedMaxSequenceNumber, time.Since(start))
			return errors.Join(eventstore.ErrConcurrencyConflict, err)
		}

		es.logError(ctx, logMsgDBExecFailed, err, logAttrQuery, sqlQuery)
		es.observeFailure(ctx, span, operationAppend, errorTypeDatabase, time.Since(start))
		return errors.Join(eventstore.ErrAppendingEventFailed, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		es.logError(ctx, logMsgRowsAffectedFailed, err)
		es.observeFailure(ctx, span, operationAppend, errorTypeRowsAffected, time.Since(start))
		return errors.Join(eventstore.ErrGettingRowsAffectedFailed, err)
	}

	if rowsAffected < int64(len(storableEvents)) {
		es.observeConflict(ctx, span, expectedMaxSequenceNumber, time.Since(start))
		return eventstore.ErrConcurrencyConflict
	}

	duration := time.Since(start)
	es.logOperation(ctx, logMsgEventsAppended, logAttrEventCount, len(storableEvents), logAttrDurationMS, toMilliseconds(duration))
	es.observeSuccess(ctx, span, operationAppend, len(storableEvents), duration)

	return nil
}

func (es *EventStore) buildSelectQuery(filter eventstore.Filter) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	where, err := whereExpression(filter)
	if err != nil {
		return "", err
	}

	if where != nil {
		selectStmt = selectStmt.Where(where)
	}

	sqlQuery, _, err := selectStmt.ToSQL()
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// buildInsertQuery builds
//
//	WITH context AS (SELECT MAX(sequence_number) AS max_seq FROM events WHERE <filter>),
//	     vals AS (SELECT ... UNION ALL SELECT ...)
//	INSERT INTO events (...) SELECT vals.* FROM context, vals WHERE COALESCE(max_seq, 0) = <expected>
func (es *EventStore) buildInsertQuery(
	events eventstore.StorableEvents,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (string, error) {

	builder := goqu.Dialect(dialectPostgres)

	contextStmt := builder.
		From(es.eventTableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq))

	where, err := whereExpression(filter)
	if err != nil {
		return "", err
	}

	if where != nil {
		contextStmt = contextStmt.Where(where)
	}

	var valsStmt *goqu.SelectDataset
	for _, event := range events {
		row := builder.Select(
			goqu.L(castText, event.EventType).As(colEventType),
			goqu.L(castTimestamp, event.OccurredAt).As(colOccurredAt),
			goqu.L(castJsonb, string(event.PayloadJSON)).As(colPayload),
			goqu.L(castJsonb, string(event.MetadataJSON)).As(colMetadata),
		)

		if valsStmt == nil {
			valsStmt = row
			continue
		}

		valsStmt = valsStmt.UnionAll(row)
	}

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, contextStmt).
		With(cteVals, valsStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(
					goqu.I(cteVals+"."+colEventType),
					goqu.I(cteVals+"."+colOccurredAt),
					goqu.I(cteVals+"."+colPayload),
					goqu.I(cteVals+"."+colMetadata),
				).
				Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber))),
		)

	sqlQuery, _, err := insertStmt.ToSQL()
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// whereExpression returns nil for a match-all filter.
func whereExpression(filter eventstore.Filter) (exp.Expression, error) {
	if filter.IsMatchAll() {
		return nil, nil
	}

	itemExpressions := make([]exp.Expression, 0, len(filter.Items()))

	for _, item := range filter.Items() {
		conditions := make([]exp.Expression, 0, 2)

		if len(item.EventTypes()) > 0 {
			conditions = append(conditions, goqu.C(colEventType).In(item.EventTypes()))
		}

		if len(item.Predicates()) > 0 {
			predicateExpressions := make([]exp.Expression, 0, len(item.Predicates()))

			for _, predicate := range item.Predicates() {
				containment, err := jsoniter.ConfigFastest.MarshalToString(map[string]string{predicate.Key(): predicate.Val()})
				if err != nil {
					return nil, errors.Join(eventstore.ErrBuildingQueryFailed, err)
				}

				predicateExpressions = append(predicateExpressions, goqu.L(payloadContains, containment))
			}

			if item.AllPredicatesMustMatch() {
				conditions = append(conditions, goqu.And(predicateExpressions...))
			} else {
				conditions = append(conditions, goqu.Or(predicateExpressions...))
			}
		}

		itemExpressions = append(itemExpressions, goqu.And(conditions...))
	}

	return goqu.Or(itemExpressions...), nil
}
