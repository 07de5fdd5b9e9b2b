package postgresengine

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/crypto/blake2b"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/eventstore/postgresengine/internal/adapters"
)

const (
	defaultEventTableName    = "events"
	defaultSnapshotTableName = "snapshots"

	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgRowsAffectedFailed       = "failed to get rows affected count"
	logMsgQueryCompleted           = "query completed"
	logMsgEventsAppended           = "events appended"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	logMsgSQLExecuted              = "executed sql for: "
	logMsgOperation                = "eventstore operation: "
	logAttrError                   = "error"
	logAttrQuery                   = "query"
	logAttrEventType               = "event_type"
	logAttrEventCount              = "event_count"
	logAttrDurationMS              = "duration_ms"
	logAttrExpectedEvents          = "expected_events"
	logAttrRowsAffected            = "rows_affected"
	logAttrExpectedSequence        = "expected_sequence"
	logActionQuery                 = "query"
	logActionAppend                = "append"

	colEventType      = "event_type"
	colOccurredAt     = "occurred_at"
	colPayload        = "payload"
	colMetadata       = "metadata"
	colTags           = "tags"
	colSequenceNumber = "sequence_number"
	cteContext        = "context"
	cteVals           = "vals"
	dialectPostgres   = "postgres"
	aliasMaxSeq       = "max_seq"
	castText          = "?::text"
	castTimestamp     = "?::timestamp with time zone"
	castJsonb         = "?::jsonb"
	containsJsonb     = "? @> ?::jsonb"
	lockShared        = "SELECT pg_advisory_xact_lock_shared(%d)"
	lockExclusive     = "SELECT pg_advisory_xact_lock(%d)"
	lockKeyAnyTag     = "*"
)

var ErrEmptySnapshotsTableName = errors.New("snapshots table name must not be empty")

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
)

// EventStore is the PostgreSQL EventLog and SnapshotStore.
// Tags are stored as a jsonb array of {"key","value"} objects, filter items match them with @>.
type EventStore struct {
	db                adapters.DBAdapter
	eventTableName    string
	snapshotTableName string
	logger            eventstore.Logger
	contextualLogger  eventstore.ContextualLogger
	metricsCollector  eventstore.MetricsCollector
	tracingCollector  eventstore.TracingCollector
}

type queryResultRow struct {
	eventType      string
	occurredAt     time.Time
	payload        []byte
	metadata       []byte
	tags           []byte
	sequenceNumber int64
}

// NewEventStoreFromPGXPool creates a new EventStore using a pgx Pool with optional configuration.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(db), options)
}

// NewEventStoreFromPGXPoolAndReplica creates a new EventStore that serves eventually consistent queries
// from the replica pool, see eventstore.WithEventualConsistency. Appends and strongly consistent queries use the primary.
func NewEventStoreFromPGXPoolAndReplica(primary *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if primary == nil || replica == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapterWithReplica(primary, replica), options)
}

// NewEventStoreFromSQLDB creates a new EventStore using a sql.DB with optional configuration.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options)
}

// NewEventStoreFromSQLX creates a new EventStore using a sqlx.DB with optional configuration.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options)
}

func newEventStore(db adapters.DBAdapter, options []Option) (*EventStore, error) {
	es := &EventStore{
		db:                db,
		eventTableName:    defaultEventTableName,
		snapshotTableName: defaultSnapshotTableName,
	}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// Query retrieves events from the Postgres event store based on the provided eventstore.Filter criteria
// and returns them as eventstore.StorableEvents
// as well as the MaxSequenceNumberUint for this "dynamic event stream" at the time of the query.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	ctx, span := es.startSpan(ctx, spanNameQuery, map[string]string{spanAttrOperation: operationQuery})
	start := time.Now()

	sqlQuery, buildQueryErr := es.buildSelectQuery(filter)
	if buildQueryErr != nil {
		es.logError(ctx, logMsgBuildSelectQueryFailed, buildQueryErr)
		return es.failQuery(ctx, span, start, errorTypeBuildQuery, buildQueryErr)
	}

	rows, queryErr := es.db.Query(ctx, sqlQuery)
	es.logQueryWithDuration(ctx, sqlQuery, logActionQuery, time.Since(start))
	if queryErr != nil {
		es.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return es.failQuery(ctx, span, start, errorTypeDatabaseQuery, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr))
	}
	defer es.closeRows(ctx, rows)

	eventStream, maxSequenceNumber, scanErr := es.processQueryResults(ctx, rows)
	if scanErr != nil {
		return es.failQuery(ctx, span, start, errorTypeRowScan, scanErr)
	}

	duration := time.Since(start)
	es.recordDuration(ctx, metricQueryDuration, operationQuery, statusSuccess, duration)
	es.recordValue(ctx, metricEventsQueried, operationQuery, float64(len(eventStream)))
	es.finishSpan(span, statusSuccess, duration, map[string]string{
		spanAttrEventCount:  strconv.Itoa(len(eventStream)),
		spanAttrMaxSequence: strconv.FormatUint(uint64(maxSequenceNumber), 10),
	})
	es.logOperation(ctx, logMsgQueryCompleted, logAttrEventCount, len(eventStream), logAttrDurationMS, toMilliseconds(duration))

	return eventStream, maxSequenceNumber, nil
}

func (es *EventStore) failQuery(
	ctx context.Context,
	span eventstore.SpanContext,
	start time.Time,
	errorType string,
	err error,
) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint, error) {

	duration := time.Since(start)
	es.recordDuration(ctx, metricQueryDuration, operationQuery, statusError, duration)
	es.recordError(ctx, operationQuery, errorType)
	es.finishSpan(span, statusError, duration, map[string]string{spanAttrErrorType: errorType})

	return nil, 0, err
}

// closeRows safely closes database rows and logs any errors.
func (es *EventStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		es.logWarn(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

// processQueryResults converts database rows to storable events.
func (es *EventStore) processQueryResults(ctx context.Context, rows adapters.DBRows) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	result := queryResultRow{}
	eventStream := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.NoEventsVersion

	for rows.Next() {
		rowScanErr := rows.Scan(&result.eventType, &result.occurredAt, &result.payload, &result.metadata, &result.tags, &result.sequenceNumber)
		if rowScanErr != nil {
			es.logError(ctx, logMsgScanRowFailed, rowScanErr)
			return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, rowScanErr)
		}

		event, buildErr := storableEventFrom(result)
		if buildErr != nil {
			es.logError(ctx, logMsgBuildStorableEventFailed, buildErr, logAttrEventType, result.eventType)
			return nil, 0, errors.Join(eventstore.ErrBuildingStorableEventFailed, buildErr)
		}

		eventStream = append(eventStream, event)
		maxSequenceNumber = event.SequenceNumber
	}

	if err := rows.Err(); err != nil {
		es.logError(ctx, logMsgScanRowFailed, err)
		return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, err)
	}

	return eventStream, maxSequenceNumber, nil
}

func storableEventFrom(row queryResultRow) (eventstore.StorableEvent, error) {
	var tags eventstore.Tags
	if err := jsoniter.ConfigFastest.Unmarshal(row.tags, &tags); err != nil {
		return eventstore.StorableEvent{}, errors.Join(eventstore.ErrDecodingTagsFailed, err)
	}

	event, err := eventstore.BuildStorableEvent(
		row.eventType,
		row.occurredAt.UTC(),
		slices.Clone(row.payload),
		slices.Clone(row.metadata),
		tags...,
	)
	if err != nil {
		return eventstore.StorableEvent{}, err
	}

	return event.WithSequenceNumber(eventstore.MaxSequenceNumberUint(row.sequenceNumber)), nil
}

// Append attempts to append one or multiple eventstore.StorableEvent(s) onto the Postgres event store respecting concurrency constraints
// for this "dynamic event stream" based on the provided eventstore.Filter criteria and the expected MaxSequenceNumberUint.
//
// The provided eventstore.Filter criteria should be the same as the ones used for the Query before making the business decisions.
//
// The insert runs in a transaction that first takes advisory locks on the tags of the filter and of the new events,
// so two appends that could affect each other's stream run one after the other.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)

	ctx, span := es.startSpan(ctx, spanNameAppend, map[string]string{
		spanAttrOperation:   operationAppend,
		spanAttrEventCount:  strconv.Itoa(len(allEvents)),
		spanAttrExpectedSeq: strconv.FormatUint(uint64(expectedMaxSequenceNumber), 10),
	})
	start := time.Now()

	statements, buildQueryErr := es.buildAppendStatements(allEvents, filter, expectedMaxSequenceNumber)
	if buildQueryErr != nil {
		es.logError(ctx, logMsgBuildInsertQueryFailed, buildQueryErr, logAttrEventCount, len(allEvents))
		return es.failAppend(ctx, span, start, errorTypeBuildQuery, buildQueryErr)
	}

	result, execErr := es.db.ExecInTx(ctx, statements...)
	es.logQueryWithDuration(ctx, statements[len(statements)-1], logActionAppend, time.Since(start))
	if execErr != nil {
		es.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, statements[len(statements)-1])
		return es.failAppend(ctx, span, start, errorTypeDatabaseExec, errors.Join(eventstore.ErrAppendingEventFailed, execErr))
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		es.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		return es.failAppend(ctx, span, start, errorTypeRowsAffected, errors.Join(eventstore.ErrGettingRowsAffectedFailed, rowsAffectedErr))
	}

	if rowsAffected < rowsAffectedInt64(len(allEvents)) {
		es.recordConflict(ctx)
		es.logOperation(ctx, logMsgConcurrencyConflict,
			logAttrExpectedEvents, len(allEvents),
			logAttrRowsAffected, rowsAffected,
			logAttrExpectedSequence, expectedMaxSequenceNumber,
		)

		return es.failAppend(ctx, span, start, errorTypeConcurrencyConflict, eventstore.ErrConcurrencyConflict)
	}

	duration := time.Since(start)
	es.recordDuration(ctx, metricAppendDuration, operationAppend, statusSuccess, duration)
	es.recordValue(ctx, metricEventsAppended, operationAppend, float64(len(allEvents)))
	es.finishSpan(span, statusSuccess, duration, map[string]string{spanAttrRowsAffected: strconv.FormatInt(rowsAffected, 10)})
	es.logOperation(ctx, logMsgEventsAppended, logAttrEventCount, len(allEvents), logAttrDurationMS, toMilliseconds(duration))

	return nil
}

func (es *EventStore) failAppend(
	ctx context.Context,
	span eventstore.SpanContext,
	start time.Time,
	errorType string,
	err error,
) error {

	duration := time.Since(start)
	es.recordDuration(ctx, metricAppendDuration, operationAppend, statusError, duration)
	if errorType != errorTypeConcurrencyConflict {
		es.recordError(ctx, operationAppend, errorType)
	}
	es.finishSpan(span, statusError, duration, map[string]string{spanAttrErrorType: errorType})

	return err
}

// buildAppendStatements returns the advisory lock statements followed by the conditional insert.
func (es *EventStore) buildAppendStatements(
	allEvents eventstore.StorableEvents,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) ([]sqlQueryString, error) {

	statements := es.buildLockStatements(filter, allEvents)

	var insert sqlQueryString
	var err error

	switch len(allEvents) {
	case 1:
		insert, err = es.buildInsertQueryForSingleEvent(allEvents[0], filter, expectedMaxSequenceNumber)
	default:
		insert, err = es.buildInsertQueryForMultipleEvents(allEvents, filter, expectedMaxSequenceNumber)
	}

	if err != nil {
		return nil, err
	}

	return append(statements, insert), nil
}

type advisoryLock struct {
	key       int64
	exclusive bool
}

// buildLockStatements derives the advisory locks of an append.
//
// Every tag of a filter item and every tag of a new event is locked exclusively. An event that matches a filter item
// carries all tags of that item, so an append and any append that could change its stream share at least one lock.
// Filter items without tags could be affected by any event: they lock lockKeyAnyTag exclusively,
// all other appends lock it shared. Locks are taken in key order.
func (es *EventStore) buildLockStatements(filter eventstore.Filter, events eventstore.StorableEvents) []sqlQueryString {
	locks := map[int64]bool{es.lockKey(lockKeyAnyTag): false}

	for _, item := range filter.Items() {
		if len(item.Tags()) == 0 {
			locks[es.lockKey(lockKeyAnyTag)] = true
		}

		for _, tag := range item.Tags() {
			locks[es.lockKey(tag.String())] = true
		}
	}

	if len(filter.Items()) == 0 {
		locks[es.lockKey(lockKeyAnyTag)] = true
	}

	for _, event := range events {
		for _, tag := range event.Tags {
			locks[es.lockKey(tag.String())] = true
		}
	}

	ordered := make([]advisoryLock, 0, len(locks))
	for key, exclusive := range locks {
		ordered = append(ordered, advisoryLock{key: key, exclusive: exclusive})
	}
	slices.SortFunc(ordered, func(a, b advisoryLock) int { return cmp.Compare(a.key, b.key) })

	statements := make([]sqlQueryString, 0, len(ordered))
	for _, lock := range ordered {
		lockSQL := lockShared
		if lock.exclusive {
			lockSQL = lockExclusive
		}

		statements = append(statements, fmt.Sprintf(lockSQL, lock.key))
	}

	return statements
}

func (es *EventStore) lockKey(name string) int64 {
	sum := blake2b.Sum256([]byte(es.eventTableName + "|" + name))

	return int64(binary.BigEndian.Uint64(sum[:8])) //nolint:gosec // wrap-around is fine for a lock key
}

func (es *EventStore) buildSelectQuery(filter eventstore.Filter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colTags, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	selectStmt, err := es.addWhereClause(filter, selectStmt)
	if err != nil {
		return "", err
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es *EventStore) buildContextCTE(builder goqu.DialectWrapper, filter eventstore.Filter) (*goqu.SelectDataset, error) {
	cteStmt := builder.
		From(es.eventTableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq))

	return es.addWhereClause(filter.WithoutSequenceNumberBound(), cteStmt)
}

func (es *EventStore) buildInsertQueryForSingleEvent(
	event eventstore.StorableEvent,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	cteStmt, err := es.buildContextCTE(builder, filter)
	if err != nil {
		return "", err
	}

	values, err := eventValues(event)
	if err != nil {
		return "", err
	}

	selectStmt := builder.
		From(cteContext).
		Select(values...).
		Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(int64(expectedMaxSequenceNumber)))) //nolint:gosec

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata, colTags).
		FromQuery(selectStmt).
		With(cteContext, cteStmt)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es *EventStore) buildInsertQueryForMultipleEvents(
	events []eventstore.StorableEvent,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	cteStmt, err := es.buildContextCTE(builder, filter)
	if err != nil {
		return "", err
	}

	// one SELECT per event, combined with UNION ALL, an ordinal keeps the insert order
	var valuesStmt *goqu.SelectDataset
	for i, event := range events {
		values, valuesErr := eventValues(event)
		if valuesErr != nil {
			return "", valuesErr
		}

		stmt := builder.Select(append(values, goqu.V(i).As("ord"))...)
		if valuesStmt == nil {
			valuesStmt = stmt
			continue
		}
		valuesStmt = valuesStmt.UnionAll(stmt)
	}

	valsCol := func(col string) string { return fmt.Sprintf("%s.%s", cteVals, col) }

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata, colTags).
		With(cteContext, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(valsCol(colEventType), valsCol(colOccurredAt), valsCol(colPayload), valsCol(colMetadata), valsCol(colTags)).
				Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(int64(expectedMaxSequenceNumber)))). //nolint:gosec
				Order(goqu.I(valsCol("ord")).Asc()),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func eventValues(event eventstore.StorableEvent) ([]any, error) {
	tagsJSON, err := encodeTags(event.Tags)
	if err != nil {
		return nil, err
	}

	return []any{
		goqu.L(castText, event.EventType).As(colEventType),
		goqu.L(castTimestamp, event.OccurredAt).As(colOccurredAt),
		goqu.L(castJsonb, string(event.PayloadJSON)).As(colPayload),
		goqu.L(castJsonb, string(event.MetadataJSON)).As(colMetadata),
		goqu.L(castJsonb, tagsJSON).As(colTags),
	}, nil
}

// addWhereClause renders the filter: items are OR-ed, inside an item the event types are OR-ed
// and all tags must be contained in the tags column.
func (es *EventStore) addWhereClause(filter eventstore.Filter, selectStmt *goqu.SelectDataset) (*goqu.SelectDataset, error) {
	itemsExpressions := make([]goqu.Expression, 0, len(filter.Items()))

	for _, item := range filter.Items() {
		itemExpressions := make([]goqu.Expression, 0, 2)

		if len(item.EventTypes()) > 0 {
			itemExpressions = append(itemExpressions, goqu.C(colEventType).In(item.EventTypes()))
		}

		if len(item.Tags()) > 0 {
			tagsJSON, err := encodeTags(item.Tags())
			if err != nil {
				return nil, err
			}

			itemExpressions = append(itemExpressions, goqu.L(containsJsonb, goqu.I(colTags), tagsJSON))
		}

		itemsExpressions = append(itemsExpressions, goqu.And(itemExpressions...))
	}

	if len(itemsExpressions) > 0 {
		selectStmt = selectStmt.Where(goqu.Or(itemsExpressions...))
	}

	if seq := filter.SequenceNumberHigherThan(); seq > 0 {
		selectStmt = selectStmt.Where(goqu.C(colSequenceNumber).Gt(int64(seq))) //nolint:gosec
	}

	return selectStmt, nil
}

func encodeTags(tags eventstore.Tags) (string, error) {
	if tags == nil {
		tags = eventstore.Tags{}
	}

	tagsJSON, err := jsoniter.ConfigFastest.Marshal(tags)
	if err != nil {
		return "", errors.Join(eventstore.ErrEncodingTagsFailed, err)
	}

	return string(tagsJSON), nil
}
