package postgresengine

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

const (
	metricQueryDuration        = "eventstore_query_duration_seconds"
	metricAppendDuration       = "eventstore_append_duration_seconds"
	metricEventsQueried        = "eventstore_events_queried_total"
	metricEventsAppended       = "eventstore_events_appended_total"
	metricConcurrencyConflicts = "eventstore_concurrency_conflicts_total"
	metricDatabaseErrors       = "eventstore_database_errors_total"

	spanNameQuery  = "eventstore.query"
	spanNameAppend = "eventstore.append"

	spanAttrOperation    = "operation"
	spanAttrEngine       = "engine"
	spanAttrEventCount   = "event_count"
	spanAttrMaxSequence  = "max_sequence"
	spanAttrExpectedSeq  = "expected_sequence"
	spanAttrErrorType    = "error_type"
	spanAttrRowsAffected = "rows_affected"
	spanAttrDurationMS   = "duration_ms"
	labelStatus          = "status"

	operationQuery        = "query"
	operationAppend       = "append"
	operationSaveSnapshot = "save_snapshot"
	operationLoadSnapshot = "load_snapshot"
	engineName            = "postgres"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeBuildQuery          = "build_query_error"
	errorTypeDatabaseQuery       = "database_query_error"
	errorTypeRowScan             = "row_scan_error"
	errorTypeDatabaseExec        = "database_exec_error"
	errorTypeRowsAffected        = "rows_affected_error"
	errorTypeConcurrencyConflict = "concurrency_conflict"
)

func (es *EventStore) labels(operation, status string) map[string]string {
	return map[string]string{spanAttrOperation: operation, spanAttrEngine: engineName, labelStatus: status}
}

func (es *EventStore) recordDuration(ctx context.Context, metric, operation, status string, d time.Duration) {
	eventstore.RecordDuration(ctx, es.metricsCollector, metric, d, es.labels(operation, status))
}

func (es *EventStore) recordValue(ctx context.Context, metric, operation string, value float64) {
	eventstore.RecordValue(ctx, es.metricsCollector, metric, value, es.labels(operation, statusSuccess))
}

func (es *EventStore) recordError(ctx context.Context, operation, errorType string) {
	labels := es.labels(operation, statusError)
	labels[spanAttrErrorType] = errorType
	eventstore.IncrementCounter(ctx, es.metricsCollector, metricDatabaseErrors, labels)
}

func (es *EventStore) recordConflict(ctx context.Context) {
	eventstore.IncrementCounter(ctx, es.metricsCollector, metricConcurrencyConflicts, es.labels(operationAppend, statusError))
}

func (es *EventStore) startSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	if es.tracingCollector == nil {
		return ctx, nil
	}

	attrs[spanAttrEngine] = engineName

	return es.tracingCollector.StartSpan(ctx, name, attrs)
}

func (es *EventStore) finishSpan(span eventstore.SpanContext, status string, duration time.Duration, attrs map[string]string) {
	if es.tracingCollector == nil || span == nil {
		return
	}

	if attrs == nil {
		attrs = make(map[string]string)
	}
	attrs[spanAttrDurationMS] = strconv.FormatFloat(toMilliseconds(duration), 'f', 2, 64)

	es.tracingCollector.FinishSpan(span, status, attrs)
}

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (es *EventStore) logQueryWithDuration(ctx context.Context, sqlQuery, action string, duration time.Duration) {
	es.logDebug(ctx, logMsgSQLExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
}

func (es *EventStore) logDebug(ctx context.Context, msg string, args ...any) {
	if es.contextualLogger != nil {
		es.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if es.logger != nil {
		es.logger.Debug(msg, args...)
	}
}

// logOperation logs operational information at info level.
func (es *EventStore) logOperation(ctx context.Context, action string, args ...any) {
	if es.contextualLogger != nil {
		es.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if es.logger != nil {
		es.logger.Info(logMsgOperation+action, args...)
	}
}

func (es *EventStore) logWarn(ctx context.Context, msg string, err error) {
	if es.contextualLogger != nil {
		es.contextualLogger.WarnContext(ctx, msg, logAttrError, err.Error())
		return
	}

	if es.logger != nil {
		es.logger.Warn(msg, logAttrError, err.Error())
	}
}

func (es *EventStore) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if es.contextualLogger != nil {
		es.contextualLogger.ErrorContext(ctx, msg, allArgs...)
		return
	}

	if es.logger != nil {
		es.logger.Error(msg, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
