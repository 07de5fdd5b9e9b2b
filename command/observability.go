package command

import (
	"context"
	"strconv"
	"time"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

const (
	// DispatchDurationMetric tracks the duration of a dispatch including lock wait and retries.
	DispatchDurationMetric = "commandhandler_handle_duration_seconds"
	// DispatchCallsMetric counts dispatches by command type and status.
	DispatchCallsMetric = "commandhandler_handle_calls_total"
	// DispatchIdempotentMetric counts dispatches that appended nothing because nothing had to change.
	DispatchIdempotentMetric = "commandhandler_idempotent_operations_total"
	// DispatchRetriesMetric counts reloads after a concurrency conflict.
	DispatchRetriesMetric = "commandhandler_retries_total"
	// DispatchRetryDelayMetric tracks the backoff delay before each reload.
	DispatchRetryDelayMetric = "commandhandler_retry_delay_seconds"
	// DispatchMaxRetriesReachedMetric counts dispatches that gave up because of contention.
	DispatchMaxRetriesReachedMetric = "commandhandler_max_retries_reached_total"

	StatusSuccess    = "success"
	StatusRejected   = "rejected"
	StatusIdempotent = "idempotent"
	StatusError      = "error"

	LogMsgCommandStarted   = "command handler started"
	LogMsgCommandCompleted = "command handler completed"
	LogMsgCommandRejected  = "command handler rejected the command"
	LogMsgCommandFailed    = "command handler failed"

	LogAttrCommandType     = "command_type"
	LogAttrEntityKey       = "entity_key"
	LogAttrStatus          = "status"
	LogAttrDurationMS      = "duration_ms"
	LogAttrBusinessOutcome = "business_outcome"
	LogAttrEventCount      = "event_count"
	LogAttrRetryAttempts   = "retry_attempts"
	LogAttrError           = "error"

	SpanNameCommandHandle = "commandhandler.handle"
)

// StatusOf maps an Outcome to the status label used in metrics, logs, and spans.
func StatusOf(outcome Outcome) string {
	switch outcome {
	case Accepted:
		return StatusSuccess
	case Rejected:
		return StatusRejected
	case Unchanged:
		return StatusIdempotent
	default:
		return StatusError
	}
}

func buildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

func buildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		"attempt_number":   strconv.Itoa(attemptNumber),
		"error_type":       errorType,
	}
}

func toMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

type observability struct {
	logger           eventstore.Logger
	contextualLogger eventstore.ContextualLogger
	metrics          eventstore.MetricsCollector
	tracing          eventstore.TracingCollector
}

func (o observability) recordCommandMetrics(ctx context.Context, commandType, status string, duration time.Duration) {
	if o.metrics == nil {
		return
	}

	labels := buildCommandLabels(commandType, status)
	eventstore.RecordDuration(ctx, o.metrics, DispatchDurationMetric, duration, labels)
	eventstore.IncrementCounter(ctx, o.metrics, DispatchCallsMetric, labels)

	if status == StatusIdempotent {
		eventstore.IncrementCounter(ctx, o.metrics, DispatchIdempotentMetric, labels)
	}
}

func (o observability) startCommandSpan(ctx context.Context, commandType, entityKey string) (context.Context, eventstore.SpanContext) {
	if o.tracing == nil {
		return ctx, nil
	}

	return o.tracing.StartSpan(ctx, SpanNameCommandHandle, map[string]string{
		LogAttrCommandType: commandType,
		LogAttrEntityKey:   entityKey,
	})
}

func (o observability) finishCommandSpan(span eventstore.SpanContext, status string, duration time.Duration, err error) {
	if o.tracing == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: strconv.FormatFloat(toMilliseconds(duration), 'f', 2, 64),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	o.tracing.FinishSpan(span, status, attrs)
}

func (o observability) logCommandStart(ctx context.Context, commandType, entityKey string) {
	args := []any{LogAttrCommandType, commandType, LogAttrEntityKey, entityKey}

	if o.contextualLogger != nil {
		o.contextualLogger.DebugContext(ctx, LogMsgCommandStarted, args...)
	} else if o.logger != nil {
		o.logger.Debug(LogMsgCommandStarted, args...)
	}
}

func (o observability) logCommandCompleted(ctx context.Context, commandType string, result Result, duration time.Duration) {
	msg := LogMsgCommandCompleted
	if result.Outcome == Rejected {
		msg = LogMsgCommandRejected
	}

	args := []any{
		LogAttrCommandType, commandType,
		LogAttrBusinessOutcome, StatusOf(result.Outcome),
		LogAttrEventCount, result.AppendedEvents,
		LogAttrRetryAttempts, result.RetryAttempts,
		LogAttrDurationMS, toMilliseconds(duration),
	}

	if o.contextualLogger != nil {
		o.contextualLogger.InfoContext(ctx, msg, args...)
	} else if o.logger != nil {
		o.logger.Info(msg, args...)
	}
}

func (o observability) logCommandError(ctx context.Context, commandType string, err error) {
	args := []any{LogAttrCommandType, commandType, LogAttrError, err.Error()}

	if o.contextualLogger != nil {
		o.contextualLogger.ErrorContext(ctx, LogMsgCommandFailed, args...)
	} else if o.logger != nil {
		o.logger.Error(LogMsgCommandFailed, args...)
	}
}
