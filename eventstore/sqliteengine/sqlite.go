package sqliteengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	jsoniter "github.com/json-iterator/go"
	_ "modernc.org/sqlite" // database/sql driver "sqlite"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

const (
	driverName     = "sqlite"
	dialectSQLite  = "sqlite3"
	tableEvents    = "events"
	tableEventTags = "event_tags"

	colEventType      = "event_type"
	colOccurredAt     = "occurred_at"
	colPayload        = "payload"
	colMetadata       = "metadata"
	colTags           = "tags"
	colSequenceNumber = "sequence_number"

	tagMatch = "EXISTS (SELECT 1 FROM event_tags t WHERE t.sequence_number = events.sequence_number AND t.tag_key = ? AND t.tag_value = ?)"

	insertEvent = "INSERT INTO events (event_type, occurred_at, payload, metadata, tags) VALUES (?, ?, ?, ?, ?)"
	insertTag   = "INSERT INTO event_tags (tag_key, tag_value, sequence_number) VALUES (?, ?, ?)"

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
	engineName                 = "sqlite"
)

var ErrEmptyPath = errors.New("sqlite path must not be empty")

// EventStore is the SQLite EventLog and SnapshotStore.
// Tags are stored twice: as a JSON array on the event row for reading, and one row per tag in event_tags for matching.
type EventStore struct {
	db               *sql.DB
	logger           eventstore.Logger
	contextualLogger eventstore.ContextualLogger
	metrics          eventstore.MetricsCollector
}

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithLogger sets the logger, it receives operational messages at info level and queries at debug level.
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

// DSN returns the modernc.org/sqlite data source name for a database file:
// WAL journal, a busy timeout for writers from other processes, and IMMEDIATE transactions.
func DSN(path string) string {
	params := url.Values{}
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "synchronous(NORMAL)")
	params.Add("_pragma", "foreign_keys(ON)")
	params.Set("_txlock", "immediate")

	return "file:" + path + "?" + params.Encode()
}

// Open opens or creates the database file at path and migrates its schema.
func Open(ctx context.Context, path string, options ...Option) (*EventStore, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	db, err := sql.Open(driverName, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	es, err := NewEventStoreFromDB(ctx, db, options...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return es, nil
}

// NewEventStoreFromDB uses an already opened database handle and migrates its schema.
// SQLite allows one writer at a time, so the handle is limited to one open connection.
func NewEventStoreFromDB(ctx context.Context, db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	db.SetMaxOpenConns(1)

	es := &EventStore{db: db}
	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	if err := migrate(ctx, db); err != nil {
		return nil, err
	}

	return es, nil
}

// Close closes the database handle.
func (es *EventStore) Close() error {
	return es.db.Close()
}

// Query returns all events matching the filter ordered by SequenceNumber.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	start := time.Now()

	sqlQuery, args, err := buildSelectQuery(filter)
	if err != nil {
		return nil, 0, err
	}

	rows, err := es.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, errors.Join(eventstore.ErrQueryingEventsFailed, err)
	}
	defer func() { _ = rows.Close() }()

	eventStream := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.NoEventsVersion

	for rows.Next() {
		event, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}

		eventStream = append(eventStream, event)
		maxSequenceNumber = event.SequenceNumber
	}

	if err := rows.Err(); err != nil {
		return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, err)
	}

	es.recordDuration(ctx, metricQueryDuration, operationQuery, time.Since(start))
	es.logDebug(ctx, logMsgQueryCompleted, logAttrEventCount, len(eventStream), logAttrMaxSequence, maxSequenceNumber)

	return eventStream, maxSequenceNumber, nil
}

// Append appends the events in one transaction if the max SequenceNumber of the events matching the filter
// equals expectedMaxSequenceNumber, otherwise it returns eventstore.ErrConcurrencyConflict.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	start := time.Now()
	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)

	maxQuery, maxArgs, err := buildMaxSequenceQuery(filter.WithoutSequenceNumberBound())
	if err != nil {
		return err
	}

	tx, err := es.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Join(eventstore.ErrAppendingEventFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	var actual sql.NullInt64
	if err := tx.QueryRowContext(ctx, maxQuery, maxArgs...).Scan(&actual); err != nil {
		return errors.Join(eventstore.ErrAppendingEventFailed, err)
	}

	actualMaxSequenceNumber := eventstore.MaxSequenceNumberUint(actual.Int64) //nolint:gosec
	if actualMaxSequenceNumber != expectedMaxSequenceNumber {
		eventstore.IncrementCounter(ctx, es.metrics, metricConcurrencyConflicts, labels(operationAppend))
		es.logInfo(ctx, logMsgConcurrencyConflict,
			logAttrExpectedSequence, expectedMaxSequenceNumber,
			logAttrActualSequence, actualMaxSequenceNumber,
		)

		return eventstore.ErrConcurrencyConflict
	}

	var last int64
	for _, e := range allEvents {
		if last, err = insert(ctx, tx, e); err != nil {
			return errors.Join(eventstore.ErrAppendingEventFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Join(eventstore.ErrAppendingEventFailed, err)
	}

	es.recordDuration(ctx, metricAppendDuration, operationAppend, time.Since(start))
	eventstore.RecordValue(ctx, es.metrics, metricEventsAppended, float64(len(allEvents)), labels(operationAppend))
	es.logInfo(ctx, logMsgEventsAppended, logAttrEventCount, len(allEvents), logAttrMaxSequence, last)

	return nil
}

func insert(ctx context.Context, tx *sql.Tx, event eventstore.StorableEvent) (int64, error) {
	tagsJSON, err := encodeTags(event.Tags)
	if err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, insertEvent,
		event.EventType,
		event.OccurredAt.UTC().UnixNano(),
		string(event.PayloadJSON),
		string(event.MetadataJSON),
		tagsJSON,
	)
	if err != nil {
		return 0, err
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return 0, errors.Join(eventstore.ErrGettingRowsAffectedFailed, err)
	}

	for _, tag := range event.Tags {
		if _, err := tx.ExecContext(ctx, insertTag, tag.Key, tag.Value, seq); err != nil {
			return 0, err
		}
	}

	return seq, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (eventstore.StorableEvent, error) {
	var (
		eventType      string
		occurredAt     int64
		payload        string
		metadata       string
		tagsJSON       string
		sequenceNumber int64
	)

	if err := row.Scan(&eventType, &occurredAt, &payload, &metadata, &tagsJSON, &sequenceNumber); err != nil {
		return eventstore.StorableEvent{}, errors.Join(eventstore.ErrScanningDBRowFailed, err)
	}

	var tags eventstore.Tags
	if err := jsoniter.ConfigFastest.UnmarshalFromString(tagsJSON, &tags); err != nil {
		return eventstore.StorableEvent{}, errors.Join(eventstore.ErrDecodingTagsFailed, err)
	}

	event, err := eventstore.BuildStorableEvent(
		eventType,
		time.Unix(0, occurredAt).UTC(),
		[]byte(payload),
		[]byte(metadata),
		tags...,
	)
	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(eventstore.ErrBuildingStorableEventFailed, err)
	}

	return event.WithSequenceNumber(eventstore.MaxSequenceNumberUint(sequenceNumber)), nil //nolint:gosec
}

func buildSelectQuery(filter eventstore.Filter) (string, []any, error) {
	selectStmt := goqu.Dialect(dialectSQLite).
		From(tableEvents).
		Prepared(true).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colTags, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	sqlQuery, args, err := addWhereClause(filter, selectStmt).ToSQL()
	if err != nil {
		return "", nil, errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, args, nil
}

func buildMaxSequenceQuery(filter eventstore.Filter) (string, []any, error) {
	selectStmt := goqu.Dialect(dialectSQLite).
		From(tableEvents).
		Prepared(true).
		Select(goqu.MAX(colSequenceNumber))

	sqlQuery, args, err := addWhereClause(filter, selectStmt).ToSQL()
	if err != nil {
		return "", nil, errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, args, nil
}

// addWhereClause renders the filter: items are OR-ed, inside an item the event types are OR-ed
// and every tag needs a matching event_tags row.
func addWhereClause(filter eventstore.Filter, selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	itemsExpressions := make([]goqu.Expression, 0, len(filter.Items()))

	for _, item := range filter.Items() {
		itemExpressions := make([]goqu.Expression, 0, 1+len(item.Tags()))

		if len(item.EventTypes()) > 0 {
			itemExpressions = append(itemExpressions, goqu.C(colEventType).In(item.EventTypes()))
		}

		for _, tag := range item.Tags() {
			itemExpressions = append(itemExpressions, goqu.L(tagMatch, tag.Key, tag.Value))
		}

		itemsExpressions = append(itemsExpressions, goqu.And(itemExpressions...))
	}

	if len(itemsExpressions) > 0 {
		selectStmt = selectStmt.Where(goqu.Or(itemsExpressions...))
	}

	if seq := filter.SequenceNumberHigherThan(); seq > 0 {
		selectStmt = selectStmt.Where(goqu.C(colSequenceNumber).Gt(int64(seq))) //nolint:gosec
	}

	return selectStmt
}

func encodeTags(tags eventstore.Tags) (string, error) {
	if tags == nil {
		tags = eventstore.Tags{}
	}

	tagsJSON, err := jsoniter.ConfigFastest.MarshalToString(tags)
	if err != nil {
		return "", errors.Join(eventstore.ErrEncodingTagsFailed, err)
	}

	return tagsJSON, nil
}

func labels(operation string) map[string]string {
	return map[string]string{labelOperation: operation, labelEngine: engineName}
}

func (es *EventStore) recordDuration(ctx context.Context, metric, operation string, d time.Duration) {
	eventstore.RecordDuration(ctx, es.metrics, metric, d, labels(operation))
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
