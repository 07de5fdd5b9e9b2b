package command

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/dcbkit/dcb-runtime-go/entity"
	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

var (
	ErrNilEventLog         = errors.New("event log must not be nil")
	ErrCommandFailed       = errors.New("command failed")
	ErrContention          = errors.New("contention: retries exhausted on concurrency conflicts")
	ErrEncodingEventFailed = errors.New("encoding event failed")
	ErrInvalidDecision     = errors.New("handler returned an empty decision")
	ErrInvalidTarget       = errors.New("command targets an invalid identifier")
)

type correlationIDKey struct{}

// WithCorrelationID returns a context whose dispatches store correlationID in the event metadata.
// Without it, the id of the command message is used.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

func correlationIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationIDKey{}).(string)

	return id, ok && id != ""
}

// Dispatcher runs commands with per-identity serialization and bounded retry on concurrency conflicts.
// It is safe for concurrent use.
type Dispatcher struct {
	log          eventstore.EventLog
	loader       *entity.Loader
	locks        *keyedLocks
	retryOptions []RetryOption
	ids          IDGenerator
	clock        func() time.Time
	snapshots    eventstore.SnapshotStore
	observability
}

// Option defines a functional option for configuring the Dispatcher.
type Option func(*Dispatcher)

// WithRetryOptions configures the backoff between reloads after a concurrency conflict.
func WithRetryOptions(options ...RetryOption) Option {
	return func(d *Dispatcher) {
		d.retryOptions = append(d.retryOptions, options...)
	}
}

// WithIDGenerator sets the generator for event message ids. Default is UUIDGenerator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(d *Dispatcher) {
		d.ids = ids
	}
}

// WithClock sets the clock used for OccurredAt of appended events.
func WithClock(clock func() time.Time) Option {
	return func(d *Dispatcher) {
		d.clock = clock
	}
}

// WithSnapshotStore enables snapshots for entity definitions that have them configured.
func WithSnapshotStore(store eventstore.SnapshotStore) Option {
	return func(d *Dispatcher) {
		d.snapshots = store
	}
}

// WithLogger sets the logger for dispatch results, the entity loader logs to it as well.
func WithLogger(logger eventstore.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithContextualLogger sets a context-aware logger, it is preferred over the plain logger.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(d *Dispatcher) {
		d.contextualLogger = logger
	}
}

// WithMetrics sets the collector for dispatch durations, outcomes, and retries.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(d *Dispatcher) {
		d.metrics = collector
	}
}

// WithTracing starts one span per dispatch.
func WithTracing(collector eventstore.TracingCollector) Option {
	return func(d *Dispatcher) {
		d.tracing = collector
	}
}

// NewDispatcher creates a Dispatcher appending to log.
// It returns an error if log is nil or a retry option is invalid.
func NewDispatcher(log eventstore.EventLog, options ...Option) (*Dispatcher, error) {
	if log == nil {
		return nil, ErrNilEventLog
	}

	d := &Dispatcher{
		log:   log,
		locks: newKeyedLocks(),
		ids:   UUIDGenerator{},
		clock: func() time.Time { return time.Now().UTC() },
	}

	for _, option := range options {
		option(d)
	}

	candidate := &retryConfig{}
	for _, option := range d.retryOptions {
		if err := option(candidate); err != nil {
			return nil, err
		}
	}

	loaderOptions := []entity.LoaderOption{entity.WithClock(d.clock)}
	if d.snapshots != nil {
		loaderOptions = append(loaderOptions, entity.WithSnapshotStore(d.snapshots))
	}
	if d.logger != nil {
		loaderOptions = append(loaderOptions, entity.WithLogger(d.logger))
	}
	if d.contextualLogger != nil {
		loaderOptions = append(loaderOptions, entity.WithContextualLogger(d.contextualLogger))
	}

	d.loader = entity.NewLoader(log, loaderOptions...)

	return d, nil
}

// Loader returns the entity loader the Dispatcher decides on, for read-only use.
func (d *Dispatcher) Loader() *entity.Loader {
	return d.loader
}

// Dispatch runs cmd through h.
//
// Commands whose targets resolve to the same entity key are handled one at a time, in the order they acquire
// the key. Accepted, Rejected, and Unchanged outcomes return a Result and a nil error.
// A Failed outcome returns an error wrapping ErrCommandFailed and the handler's error.
// If every attempt ran into a concurrency conflict the error wraps ErrContention and
// eventstore.ErrConcurrencyConflict. A target with a blank identity key or composite part is rejected before
// locking with an error wrapping ErrInvalidTarget and entity.ErrInvalidIdentifier.
// Other errors of the event log are returned unchanged.
func Dispatch[C Command, I entity.Identifier, S any](
	ctx context.Context,
	d *Dispatcher,
	h Handler[C, I, S],
	cmd C,
) (Result, error) {

	commandType := cmd.CommandType()
	id := h.Target(cmd)
	key := h.Entity.Key(id)

	ctx, span := d.startCommandSpan(ctx, commandType, key)
	d.logCommandStart(ctx, commandType, key)
	start := time.Now()

	result, err := dispatch(ctx, d, h, cmd, id, key)
	duration := time.Since(start)

	status := StatusOf(result.Outcome)
	if err != nil {
		status = StatusError
		d.logCommandError(ctx, commandType, err)
	} else {
		d.logCommandCompleted(ctx, commandType, result, duration)
	}

	d.recordCommandMetrics(ctx, commandType, status, duration)
	d.finishCommandSpan(span, status, duration, err)

	return result, err
}

func dispatch[C Command, I entity.Identifier, S any](
	ctx context.Context,
	d *Dispatcher,
	h Handler[C, I, S],
	cmd C,
	id I,
	key string,
) (Result, error) {

	if err := entity.ValidateIdentifier(id); err != nil {
		return Result{}, errors.Join(ErrInvalidTarget, err)
	}

	unlock, err := d.locks.lock(ctx, key)
	if err != nil {
		return Result{}, err
	}
	defer unlock()

	commandMessageID := d.ids.NewID()
	correlationID, ok := correlationIDFrom(ctx)
	if !ok {
		correlationID = commandMessageID
	}

	retryOptions := d.retryOptions
	if d.metrics != nil {
		retryOptions = append(retryOptions[:len(retryOptions):len(retryOptions)], WithRetryMetrics(d.metrics, cmd.CommandType()))
	}

	var result Result
	retryMetrics, err := RetryWithExponentialBackoff(
		ctx,
		func(ctx context.Context) error {
			var attemptErr error
			result, attemptErr = decideAndAppend(ctx, d, h, cmd, id, EventMetadata{
				CausationID:   commandMessageID,
				CorrelationID: correlationID,
				CommandType:   cmd.CommandType(),
			})

			return attemptErr
		},
		retryOptions...,
	)

	result.RetryAttempts = max(retryMetrics.Attempts-1, 0)
	result.TotalRetryDelay = retryMetrics.TotalDelay

	if err != nil {
		if retryMetrics.RetriesExhausted {
			return result, errors.Join(ErrContention, err)
		}

		return result, err
	}

	return result, nil
}

func decideAndAppend[C Command, I entity.Identifier, S any](
	ctx context.Context,
	d *Dispatcher,
	h Handler[C, I, S],
	cmd C,
	id I,
	metadata EventMetadata,
) (Result, error) {

	loaded, err := entity.Load(ctx, d.loader, h.Entity, id)
	if err != nil {
		return Result{}, err
	}

	decision := h.Decide(cmd, loaded.State)

	result := Result{
		Outcome: decision.Outcome(),
		Value:   decision.Result(),
		Version: loaded.Version,
	}

	switch decision.Outcome() {
	case Rejected, Unchanged:
		return result, nil

	case Failed:
		return result, errors.Join(ErrCommandFailed, decision.Err())

	case Accepted:
		storableEvents, err := d.toStorableEvents(decision.Events(), metadata)
		if err != nil {
			return result, err
		}

		if err = d.log.Append(ctx, loaded.Filter, loaded.Version, storableEvents[0], storableEvents[1:]...); err != nil {
			return result, err
		}

		result.AppendedEvents = len(storableEvents)

		return result, nil

	default:
		return result, ErrInvalidDecision
	}
}

func (d *Dispatcher) toStorableEvents(events []Event, metadata EventMetadata) (eventstore.StorableEvents, error) {
	occurredAt := d.clock()
	storableEvents := make(eventstore.StorableEvents, 0, len(events))

	for _, event := range events {
		payloadJSON, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(event)
		if err != nil {
			return nil, errors.Join(ErrEncodingEventFailed, err)
		}

		metadata.MessageID = d.ids.NewID()
		metadataJSON, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(metadata)
		if err != nil {
			return nil, errors.Join(ErrEncodingEventFailed, err)
		}

		storableEvent, err := eventstore.BuildStorableEvent(
			event.EventType(),
			occurredAt,
			payloadJSON,
			metadataJSON,
			event.EventTags()...,
		)
		if err != nil {
			return nil, errors.Join(ErrEncodingEventFailed, err)
		}

		storableEvents = append(storableEvents, storableEvent)
	}

	return storableEvents, nil
}
