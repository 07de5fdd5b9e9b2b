package memengine

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

const (
	logMsgQueryCompleted      = "eventstore operation: query completed"
	logMsgEventsAppended      = "eventstore operation: events appended"
	logMsgConcurrencyConflict = "eventstore operation: concurrency conflict detected"
	logAttrEventCount         = "event_count"
	logAttrExpectedSequence   = "expected_sequence"
	logAttrActualSequence     = "actual_sequence"
	logAttrMaxSequence        = "max_sequence"

	metricQueryDuration        = "eventstore_query_duration_seconds"
	metricAppendDuration       = "eventstore_append_duration_seconds"
	metricEventsAppended       = "eventstore_events_appended_total"
	metricConcurrencyConflicts = "eventstore_concurrency_conflicts_total"
	labelOperation             = "operation"
	labelEngine                = "engine"
	operationQuery             = "query"
	operationAppend            = "append"
	engineName                 = "memory"
)

// EventStore keeps all events in one slice ordered by SequenceNumber.
type EventStore struct {
	mu               sync.RWMutex
	events           eventstore.StorableEvents
	appendCount      int
	logger           eventstore.Logger
	contextualLogger eventstore.ContextualLogger
	metrics          eventstore.MetricsCollector
}

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithLogger sets the logger, it receives operational messages at info level.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, it is preferred over the plain logger.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *EventStore) error {
		es.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for query and append durations, appended events, and conflicts.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) error {
		es.metrics = collector
		return nil
	}
}

// NewEventStore creates an empty in-memory EventStore.
func NewEventStore(options ...Option) (*EventStore, error) {
	es := &EventStore{}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// Query returns copies of all events matching the filter in log order.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	start := time.Now()

	es.mu.RLock()
	eventStream := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.NoEventsVersion

	for _, event := range es.events {
		if filter.Matches(event) {
			eventStream = append(eventStream, cloneEvent(event))
			maxSequenceNumber = event.SequenceNumber
		}
	}
	es.mu.RUnlock()

	es.recordDuration(ctx, metricQueryDuration, operationQuery, time.Since(start))
	es.logDebug(ctx, logMsgQueryCompleted, logAttrEventCount, len(eventStream), logAttrMaxSequence, maxSequenceNumber)

	return eventStream, maxSequenceNumber, nil
}

// Append appends the events atomically if the max SequenceNumber of the events matching the filter
// equals expectedMaxSequenceNumber, otherwise it returns eventstore.ErrConcurrencyConflict.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)

	es.mu.Lock()

	actualMaxSequenceNumber := es.maxSequenceNumberMatching(filter)
	if actualMaxSequenceNumber != expectedMaxSequenceNumber {
		es.mu.Unlock()

		eventstore.IncrementCounter(ctx, es.metrics, metricConcurrencyConflicts, es.labels(operationAppend))
		es.logInfo(ctx, logMsgConcurrencyConflict,
			logAttrExpectedSequence, expectedMaxSequenceNumber,
			logAttrActualSequence, actualMaxSequenceNumber,
		)

		return eventstore.ErrConcurrencyConflict
	}

	next := eventstore.MaxSequenceNumberUint(len(es.events))
	for _, e := range allEvents {
		next++
		es.events = append(es.events, cloneEvent(e).WithSequenceNumber(next))
	}
	es.appendCount++

	es.mu.Unlock()

	es.recordDuration(ctx, metricAppendDuration, operationAppend, time.Since(start))
	eventstore.RecordValue(ctx, es.metrics, metricEventsAppended, float64(len(allEvents)), es.labels(operationAppend))
	es.logInfo(ctx, logMsgEventsAppended, logAttrEventCount, len(allEvents), logAttrMaxSequence, next)

	return nil
}

// AppendCount returns the number of successful Append calls.
func (es *EventStore) AppendCount() int {
	es.mu.RLock()
	defer es.mu.RUnlock()

	return es.appendCount
}

// EventCount returns the number of events in the log.
func (es *EventStore) EventCount() int {
	es.mu.RLock()
	defer es.mu.RUnlock()

	return len(es.events)
}

// must be called with the lock held.
func (es *EventStore) maxSequenceNumberMatching(filter eventstore.Filter) eventstore.MaxSequenceNumberUint {
	for i := len(es.events) - 1; i >= 0; i-- {
		if filter.Matches(es.events[i]) {
			return es.events[i].SequenceNumber
		}
	}

	return eventstore.NoEventsVersion
}

func (es *EventStore) labels(operation string) map[string]string {
	return map[string]string{labelOperation: operation, labelEngine: engineName}
}

func (es *EventStore) recordDuration(ctx context.Context, metric, operation string, d time.Duration) {
	eventstore.RecordDuration(ctx, es.metrics, metric, d, es.labels(operation))
}

func (es *EventStore) logInfo(ctx context.Context, msg string, args ...any) {
	if es.contextualLogger != nil {
		es.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if es.logger != nil {
		es.logger.Info(msg, args...)
	}
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

func cloneEvent(e eventstore.StorableEvent) eventstore.StorableEvent {
	e.PayloadJSON = slices.Clone(e.PayloadJSON)
	e.MetadataJSON = slices.Clone(e.MetadataJSON)
	e.Tags = slices.Clone(e.Tags)

	return e
}
