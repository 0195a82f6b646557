package postgresengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
)

const (
	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgRowsAffectedFailed       = "failed to get rows affected count"
	logMsgMigrationFailed          = "failed to migrate events schema"
	logMsgSchemaMigrated           = "eventstore operation: schema migrated"
	logMsgQueryCompleted           = "eventstore operation: query completed"
	logMsgEventsAppended           = "eventstore operation: events appended"
	logMsgConcurrencyConflict      = "eventstore operation: concurrency conflict detected"
	logMsgSQLExecuted              = "executed sql for: "

	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrTable            = "table"
	logAttrEventType        = "event_type"
	logAttrEventCount       = "event_count"
	logAttrDurationMS       = "duration_ms"
	logAttrExpectedSequence = "expected_sequence"

	operationQuery  = "query"
	operationAppend = "append"

	metricQueryDuration       = "eventstore_query_duration_seconds"
	metricAppendDuration      = "eventstore_append_duration_seconds"
	metricEventsQueried       = "eventstore_events_queried_total"
	metricEventsAppended      = "eventstore_events_appended_total"
	metricConcurrencyConflict = "eventstore_concurrency_conflicts_total"
	metricDatabaseErrors      = "eventstore_database_errors_total"

	spanNameQuery            = "eventstore.query"
	spanNameAppend           = "eventstore.append"
	spanAttrOperation        = "operation"
	spanAttrEventCount       = "event_count"
	spanAttrExpectedSequence = "expected_sequence"
	spanAttrErrorType        = "error_type"
	spanAttrDurationMS       = "duration_ms"

	statusSuccess  = "success"
	statusError    = "error"
	statusConflict = "conflict"

	errorTypeBuildQuery   = "build_query"
	errorTypeDatabase     = "database"
	errorTypeScan         = "scan"
	errorTypeRowsAffected = "rows_affected"
)

func (es *EventStore) logSQL(ctx context.Context, operation string, sqlQuery string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+operation, args...)
	case es.logger != nil:
		es.logger.Debug(logMsgSQLExecuted+operation, args...)
	}
}

func (es *EventStore) logOperation(ctx context.Context, msg string, args ...any) {
	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.InfoContext(ctx, msg, args...)
	case es.logger != nil:
		es.logger.Info(msg, args...)
	}
}

func (es *EventStore) logWarn(ctx context.Context, msg string, err error) {
	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.WarnContext(ctx, msg, logAttrError, err.Error())
	case es.logger != nil:
		es.logger.Warn(msg, logAttrError, err.Error())
	}
}

func (es *EventStore) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	case es.logger != nil:
		es.logger.Error(msg, allArgs...)
	}
}

func (es *EventStore) startSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	if es.tracingCollector == nil {
		return ctx, nil
	}

	return es.tracingCollector.StartSpan(ctx, name, attrs)
}

func (es *EventStore) finishSpan(span eventstore.SpanContext, status string, attrs map[string]string) {
	if es.tracingCollector == nil || span == nil {
		return
	}

	es.tracingCollector.FinishSpan(span, status, attrs)
}

func (es *EventStore) observeSuccess(ctx context.Context, span eventstore.SpanContext, operation string, eventCount int, duration time.Duration) {
	labels := map[string]string{spanAttrOperation: operation, "status": statusSuccess}

	durationMetric, countMetric := metricQueryDuration, metricEventsQueried
	if operation == operationAppend {
		durationMetric, countMetric = metricAppendDuration, metricEventsAppended
	}

	es.recordDuration(ctx, durationMetric, duration, labels)
	es.recordValue(ctx, countMetric, float64(eventCount), labels)
	es.finishSpan(span, statusSuccess, map[string]string{
		spanAttrEventCount: fmt.Sprintf("%d", eventCount),
		spanAttrDurationMS: fmt.Sprintf("%.3f", toMilliseconds(duration)),
	})
}

func (es *EventStore) observeFailure(ctx context.Context, span eventstore.SpanContext, operation string, errorType string, duration time.Duration) {
	labels := map[string]string{spanAttrOperation: operation, "status": statusError, spanAttrErrorType: errorType}

	es.incrementCounter(ctx, metricDatabaseErrors, labels)
	es.finishSpan(span, statusError, map[string]string{
		spanAttrErrorType:  errorType,
		spanAttrDurationMS: fmt.Sprintf("%.3f", toMilliseconds(duration)),
	})
}

func (es *EventStore) observeConflict(
	ctx context.Context,
	span eventstore.SpanContext,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	duration time.Duration,
) {

	es.logOperation(ctx, logMsgConcurrencyConflict, logAttrExpectedSequence, expectedMaxSequenceNumber)
	es.incrementCounter(ctx, metricConcurrencyConflict, map[string]string{spanAttrOperation: operationAppend})
	es.finishSpan(span, statusConflict, map[string]string{
		spanAttrDurationMS: fmt.Sprintf("%.3f", toMilliseconds(duration)),
	})
}

func (es *EventStore) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if es.metricsCollector == nil {
		return
	}

	if contextual, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	es.metricsCollector.RecordDuration(metric, duration, labels)
}

func (es *EventStore) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if es.metricsCollector == nil {
		return
	}

	if contextual, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
		return
	}

	es.metricsCollector.RecordValue(metric, value, labels)
}

func (es *EventStore) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if es.metricsCollector == nil {
		return
	}

	if contextual, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	es.metricsCollector.IncrementCounter(metric, labels)
}

// toMilliseconds rounds to three decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
