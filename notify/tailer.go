package notify

import (
	"context"
	"errors"
	"time"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

const (
	defaultPollInterval = 500 * time.Millisecond

	metricPosition        = "notify_tailer_position"
	metricEventsDelivered = "notify_events_delivered_total"
	metricDeliveryErrors  = "notify_delivery_errors_total"
	labelTailer           = "tailer"

	logMsgDelivered      = "notify: events delivered"
	logMsgDeliveryFailed = "notify: delivery failed, retrying on next poll"
	logMsgPollFailed     = "notify: polling the event log failed"
	logAttrTailer        = "tailer"
	logAttrEventCount    = "event_count"
	logAttrPosition      = "position"
	logAttrError         = "error"
)

var (
	ErrEmptyTailerName     = errors.New("tailer name must not be empty")
	ErrNilSubscriber       = errors.New("subscriber must not be nil")
	ErrNilEventLog         = errors.New("event log must not be nil")
	ErrDeliveryFailed      = errors.New("delivering an event failed")
	ErrLoadingCheckpoint   = errors.New("loading the checkpoint failed")
	ErrSavingCheckpoint    = errors.New("saving the checkpoint failed")
	ErrInvalidPollInterval = errors.New("poll interval must be positive")
)

// Subscriber receives one event. Returning an error stops the current poll, the event is delivered again later.
type Subscriber func(ctx context.Context, event eventstore.StorableEvent) error

// Tailer delivers the events of an EventLog after its checkpoint to a Subscriber.
type Tailer struct {
	log         eventstore.EventLog
	name        string
	subscriber  Subscriber
	filter      eventstore.Filter
	checkpoints CheckpointStore
	interval    time.Duration
	logger      eventstore.Logger
	metrics     eventstore.MetricsCollector
}

// TailerOption configures a Tailer.
type TailerOption func(*Tailer) error

// WithCheckpointStore sets where positions are kept, the default is a MemoryCheckpointStore.
func WithCheckpointStore(store CheckpointStore) TailerOption {
	return func(t *Tailer) error {
		t.checkpoints = store
		return nil
	}
}

// WithPollInterval sets the pause between polls that found nothing new.
func WithPollInterval(interval time.Duration) TailerOption {
	return func(t *Tailer) error {
		if interval <= 0 {
			return ErrInvalidPollInterval
		}

		t.interval = interval

		return nil
	}
}

// WithFilter restricts delivery to events matching filter. Its own sequence number bound is replaced by the checkpoint.
func WithFilter(filter eventstore.Filter) TailerOption {
	return func(t *Tailer) error {
		t.filter = filter.WithoutSequenceNumberBound()
		return nil
	}
}

// WithLogger sets the logger for deliveries at debug level and failed polls at error level.
func WithLogger(logger eventstore.Logger) TailerOption {
	return func(t *Tailer) error {
		t.logger = logger
		return nil
	}
}

// WithMetrics sets the collector for delivered events, delivery errors, and the position.
func WithMetrics(collector eventstore.MetricsCollector) TailerOption {
	return func(t *Tailer) error {
		t.metrics = collector
		return nil
	}
}

// NewTailer builds a Tailer over all events of log.
func NewTailer(log eventstore.EventLog, name string, subscriber Subscriber, options ...TailerOption) (*Tailer, error) {
	if log == nil {
		return nil, ErrNilEventLog
	}

	if name == "" {
		return nil, ErrEmptyTailerName
	}

	if subscriber == nil {
		return nil, ErrNilSubscriber
	}

	t := &Tailer{
		log:         log,
		name:        name,
		subscriber:  subscriber,
		filter:      eventstore.BuildEventFilter().MatchingAnyEvent(),
		checkpoints: NewMemoryCheckpointStore(),
		interval:    defaultPollInterval,
	}

	for _, option := range options {
		if err := option(t); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Poll delivers all events after the checkpoint once and returns how many were delivered.
// On a delivery error the checkpoint stays at the last delivered event.
func (t *Tailer) Poll(ctx context.Context) (int, error) {
	checkpoint, err := t.checkpoints.LoadCheckpoint(ctx, t.name)
	if err != nil {
		return 0, errors.Join(ErrLoadingCheckpoint, err)
	}

	events, _, err := t.log.Query(eventstore.WithStrongConsistency(ctx), t.filter.WithSequenceNumberHigherThan(checkpoint))
	if err != nil {
		return 0, err
	}

	delivered := 0
	var deliveryErr error

	for _, event := range events {
		if err := t.subscriber(ctx, event); err != nil {
			deliveryErr = errors.Join(ErrDeliveryFailed, err)
			eventstore.IncrementCounter(ctx, t.metrics, metricDeliveryErrors, t.labels())

			break
		}

		delivered++
		checkpoint = event.SequenceNumber
	}

	if delivered > 0 {
		if err := t.checkpoints.SaveCheckpoint(ctx, t.name, checkpoint); err != nil {
			return delivered, errors.Join(deliveryErr, ErrSavingCheckpoint, err)
		}

		eventstore.RecordValue(ctx, t.metrics, metricEventsDelivered, float64(delivered), t.labels())
		eventstore.RecordValue(ctx, t.metrics, metricPosition, float64(checkpoint), t.labels())
		t.logDebug(logMsgDelivered, logAttrTailer, t.name, logAttrEventCount, delivered, logAttrPosition, checkpoint)
	}

	return delivered, deliveryErr
}

// Run polls until ctx is done. Errors are logged and the next poll retries. It returns nil when ctx ends.
func (t *Tailer) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		delivered, err := t.Poll(ctx)
		if err != nil && ctx.Err() == nil {
			msg := logMsgPollFailed
			if errors.Is(err, ErrDeliveryFailed) {
				msg = logMsgDeliveryFailed
			}
			t.logError(msg, logAttrTailer, t.name, logAttrError, err.Error())
		}

		// keep going without a pause while there is a backlog
		if delivered > 0 && err == nil {
			timer.Reset(0)
			continue
		}

		timer.Reset(t.interval)
	}
}

func (t *Tailer) labels() map[string]string {
	return map[string]string{labelTailer: t.name}
}

func (t *Tailer) logDebug(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Debug(msg, args...)
	}
}

func (t *Tailer) logError(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Error(msg, args...)
	}
}
