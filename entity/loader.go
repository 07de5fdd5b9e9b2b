package entity

import (
	"context"
	"errors"
	"time"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

const (
	logMsgSnapshotLoadFailed   = "entity loader: loading snapshot failed, replaying from scratch"
	logMsgSnapshotDecodeFailed = "entity loader: decoding snapshot failed, replaying from scratch"
	logMsgSnapshotSaveFailed   = "entity loader: saving snapshot failed"
	logMsgSnapshotSaved        = "entity loader: snapshot saved"
	logMsgLoaded               = "entity loader: state loaded"
	logAttrEntityKind          = "entity_kind"
	logAttrReplayed            = "replayed_events"
	logAttrVersion             = "version"
	logAttrFromSnapshot        = "from_snapshot"
	logAttrDurationMS          = "duration_ms"
	logAttrError               = "error"
)

var ErrQueryingStreamFailed = errors.New("querying the entity stream failed")

// QueriesEvents is the read side of eventstore.EventLog.
type QueriesEvents interface {
	Query(ctx context.Context, filter eventstore.Filter) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint, error)
}

// Loaded is the result of loading an entity.
type Loaded[S any] struct {
	State        S
	Version      eventstore.MaxSequenceNumberUint // position of the last event in the stream, NoEventsVersion if none
	Filter       eventstore.Filter                // the stream criteria, to be used for the append
	Replayed     int                              // number of events read from the log
	FromSnapshot bool
}

// Loader reads entity streams from an event log and folds them.
type Loader struct {
	events           QueriesEvents
	snapshots        eventstore.SnapshotStore
	logger           eventstore.Logger
	contextualLogger eventstore.ContextualLogger
	clock            func() time.Time
}

// LoaderOption defines a functional option for configuring the Loader.
type LoaderOption func(*Loader)

// WithSnapshotStore enables snapshots for definitions that have a snapshot policy.
func WithSnapshotStore(store eventstore.SnapshotStore) LoaderOption {
	return func(l *Loader) {
		l.snapshots = store
	}
}

// WithLogger sets the logger for load results at debug level and snapshot failures at warn level.
func WithLogger(logger eventstore.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithContextualLogger sets a context-aware logger, it is preferred over the plain logger.
func WithContextualLogger(logger eventstore.ContextualLogger) LoaderOption {
	return func(l *Loader) {
		l.contextualLogger = logger
	}
}

// WithClock sets the clock used for snapshot timestamps.
func WithClock(clock func() time.Time) LoaderOption {
	return func(l *Loader) {
		l.clock = clock
	}
}

// NewLoader creates a Loader reading from events, without snapshots unless WithSnapshotStore is given.
func NewLoader(events QueriesEvents, options ...LoaderOption) *Loader {
	l := &Loader{events: events, clock: time.Now}

	for _, option := range options {
		option(l)
	}

	return l
}

// Load resolves the criteria for id, reads the matching events in log order, and folds them from the initial state.
// Reads are forced to strong consistency.
func Load[I Identifier, S any](ctx context.Context, l *Loader, def Definition[I, S], id I) (Loaded[S], error) {
	start := time.Now()
	ctx = eventstore.WithStrongConsistency(ctx)
	filter := def.Criteria(id)

	var (
		loaded Loaded[S]
		err    error
	)

	if l.snapshots != nil && def.SnapshotsEnabled() {
		loaded, err = loadWithSnapshot(ctx, l, def, filter)
	} else {
		loaded, err = replay(ctx, l, def, filter, def.Initial(), eventstore.NoEventsVersion)
	}

	if err != nil {
		return Loaded[S]{}, err
	}

	l.logDebug(ctx, logMsgLoaded,
		logAttrEntityKind, def.Kind(),
		logAttrVersion, loaded.Version,
		logAttrReplayed, loaded.Replayed,
		logAttrFromSnapshot, loaded.FromSnapshot,
		logAttrDurationMS, time.Since(start).Milliseconds(),
	)

	return loaded, nil
}

// LoadFromScratch ignores snapshots and replays the whole stream.
func LoadFromScratch[I Identifier, S any](ctx context.Context, l *Loader, def Definition[I, S], id I) (Loaded[S], error) {
	return replay(eventstore.WithStrongConsistency(ctx), l, def, def.Criteria(id), def.Initial(), eventstore.NoEventsVersion)
}

func replay[I Identifier, S any](
	ctx context.Context,
	l *Loader,
	def Definition[I, S],
	filter eventstore.Filter,
	state S,
	fromVersion eventstore.MaxSequenceNumberUint,
) (Loaded[S], error) {

	queryFilter := filter
	if fromVersion > eventstore.NoEventsVersion {
		queryFilter = filter.WithSequenceNumberHigherThan(fromVersion)
	}

	events, maxSequenceNumber, err := l.events.Query(ctx, queryFilter)
	if err != nil {
		return Loaded[S]{}, errors.Join(ErrQueryingStreamFailed, err)
	}

	state, err = def.Fold(state, events)
	if err != nil {
		return Loaded[S]{}, err
	}

	version := fromVersion
	if len(events) > 0 {
		version = maxSequenceNumber
	}

	return Loaded[S]{
		State:        state,
		Version:      version,
		Filter:       filter,
		Replayed:     len(events),
		FromSnapshot: fromVersion > eventstore.NoEventsVersion,
	}, nil
}

func loadWithSnapshot[I Identifier, S any](
	ctx context.Context,
	l *Loader,
	def Definition[I, S],
	filter eventstore.Filter,
) (Loaded[S], error) {

	state, fromVersion := def.Initial(), eventstore.NoEventsVersion
	hash := filter.Hash()

	snapshot, err := l.snapshots.LoadSnapshot(ctx, def.Kind(), hash)
	switch {
	case err != nil:
		l.logWarn(ctx, logMsgSnapshotLoadFailed, logAttrEntityKind, def.Kind(), logAttrError, err.Error())

	case snapshot != nil:
		decoded, decodeErr := def.codec.Decode(snapshot.Data)
		if decodeErr != nil {
			l.logWarn(ctx, logMsgSnapshotDecodeFailed, logAttrEntityKind, def.Kind(), logAttrError, decodeErr.Error())
			break
		}

		state, fromVersion = decoded, snapshot.SequenceNumber
	}

	loaded, err := replay(ctx, l, def, filter, state, fromVersion)
	if err != nil {
		return Loaded[S]{}, err
	}

	if loaded.Replayed >= def.snapshotEvery {
		data, encodeErr := def.codec.Encode(loaded.State)
		if encodeErr != nil {
			l.logWarn(ctx, logMsgSnapshotSaveFailed, logAttrEntityKind, def.Kind(), logAttrError, encodeErr.Error())
			return loaded, nil
		}

		l.saveSnapshotData(ctx, def.Kind(), hash, loaded.Version, data)
	}

	return loaded, nil
}

// saveSnapshotData is best effort, a failure only costs a longer replay next time.
func (l *Loader) saveSnapshotData(ctx context.Context, kind, hash string, version eventstore.MaxSequenceNumberUint, data []byte) {
	snapshot, err := eventstore.BuildSnapshot(kind, hash, version, data, l.clock())
	if err == nil {
		err = l.snapshots.SaveSnapshot(ctx, snapshot)
	}

	if err != nil {
		l.logWarn(ctx, logMsgSnapshotSaveFailed, logAttrEntityKind, kind, logAttrError, err.Error())
		return
	}

	l.logDebug(ctx, logMsgSnapshotSaved, logAttrEntityKind, kind, logAttrVersion, version)
}

func (l *Loader) logDebug(ctx context.Context, msg string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func (l *Loader) logWarn(ctx context.Context, msg string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}
