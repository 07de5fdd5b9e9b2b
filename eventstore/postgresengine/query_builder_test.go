package postgresengine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

func givenEngineWithoutDB(t *testing.T) *EventStore {
	t.Helper()

	es, err := newEventStore(nil, nil)
	require.NoError(t, err)

	return es
}

func givenEvent(t *testing.T, tags ...eventstore.Tag) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEvent("ThingCreated", time.Unix(0, 0).UTC(), []byte(`{"it's":"quoted"}`), []byte(`{}`), tags...)
	require.NoError(t, err)

	return event
}

func Test_BuildSelectQuery_RendersItemsAsOredTypeAndTagPredicates(t *testing.T) {
	// arrange
	es := givenEngineWithoutDB(t)
	filter := eventstore.BuildEventFilter().
		Matching().AnyEventTypeOf("ThingCreated", "ThingChanged").AndAllTagsOf(eventstore.T("Thing", "t1")).
		OrMatching().AllTagsOf(eventstore.T("Owner", "o1")).
		Finalize().
		WithSequenceNumberHigherThan(5)

	// act
	sqlQuery, err := es.buildSelectQuery(filter)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `FROM "events"`)
	assert.Contains(t, sqlQuery, `"event_type" IN ('ThingChanged', 'ThingCreated')`)
	assert.Contains(t, sqlQuery, `"tags" @> '[{"key":"Thing","value":"t1"}]'::jsonb`)
	assert.Contains(t, sqlQuery, `"tags" @> '[{"key":"Owner","value":"o1"}]'::jsonb`)
	assert.Contains(t, sqlQuery, " OR ")
	assert.Contains(t, sqlQuery, `"sequence_number" > 5`)
	assert.Contains(t, sqlQuery, `ORDER BY "sequence_number" ASC`)
}

func Test_BuildSelectQuery_EmptyFilterHasNoWhereClause(t *testing.T) {
	es := givenEngineWithoutDB(t)

	sqlQuery, err := es.buildSelectQuery(eventstore.BuildEventFilter().MatchingAnyEvent())

	require.NoError(t, err)
	assert.NotContains(t, sqlQuery, "WHERE")
}

func Test_BuildSelectQuery_EscapesTagValues(t *testing.T) {
	es := givenEngineWithoutDB(t)
	filter := eventstore.BuildEventFilter().Matching().AllTagsOf(eventstore.T("Thing", "o'brien")).Finalize()

	sqlQuery, err := es.buildSelectQuery(filter)

	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `"value":"o''brien"`)
}

func Test_BuildAppendStatements_InsertsOnlyAtTheExpectedVersion(t *testing.T) {
	// arrange
	es := givenEngineWithoutDB(t)
	filter := eventstore.BuildEventFilter().Matching().AnyEventTypeOf("ThingCreated").AndAllTagsOf(eventstore.T("Thing", "t1")).Finalize()

	// act
	single, err := es.buildAppendStatements(eventstore.StorableEvents{givenEvent(t, eventstore.T("Thing", "t1"))}, filter, 7)
	require.NoError(t, err)
	multi, err := es.buildAppendStatements(eventstore.StorableEvents{
		givenEvent(t, eventstore.T("Thing", "t1")),
		givenEvent(t, eventstore.T("Thing", "t1")),
	}, filter, 7)
	require.NoError(t, err)

	// assert
	for _, statements := range [][]string{single, multi} {
		insert := statements[len(statements)-1]
		assert.True(t, strings.HasPrefix(insert, "WITH "), insert)
		assert.Contains(t, insert, `MAX("sequence_number") AS "max_seq"`)
		assert.Contains(t, insert, `INSERT INTO "events" ("event_type", "occurred_at", "payload", "metadata", "tags")`)
		assert.Contains(t, insert, `COALESCE("max_seq", 0) = 7`)
		assert.Contains(t, insert, `'{"it''s":"quoted"}'::jsonb`)
	}
	assert.Contains(t, multi[len(multi)-1], "UNION ALL")
}

func Test_BuildLockStatements_SharesTheAnyTagLockUnlessAnItemHasNoTags(t *testing.T) {
	// arrange
	es := givenEngineWithoutDB(t)
	tagged := eventstore.BuildEventFilter().Matching().AnyEventTypeOf("ThingCreated").AndAllTagsOf(eventstore.T("Thing", "t1")).Finalize()
	untagged := eventstore.BuildEventFilter().Matching().AnyEventTypeOf("ThingCreated").Finalize()
	events := eventstore.StorableEvents{givenEvent(t, eventstore.T("Thing", "t1"), eventstore.T("Owner", "o1"))}

	// act
	taggedLocks := es.buildLockStatements(tagged, events)
	untaggedLocks := es.buildLockStatements(untagged, events)

	// assert
	assert.Len(t, taggedLocks, 3)
	assert.Equal(t, 1, countContaining(taggedLocks, "pg_advisory_xact_lock_shared("))
	assert.Len(t, untaggedLocks, 3)
	assert.Zero(t, countContaining(untaggedLocks, "pg_advisory_xact_lock_shared("))
	assert.Equal(t, es.buildLockStatements(tagged, events), taggedLocks)
}

func Test_Options(t *testing.T) {
	_, err := newEventStore(nil, []Option{WithTableName("")})
	assert.ErrorIs(t, err, eventstore.ErrEmptyEventsTableName)

	_, err = newEventStore(nil, []Option{WithSnapshotTableName("")})
	assert.ErrorIs(t, err, ErrEmptySnapshotsTableName)

	es, err := newEventStore(nil, []Option{WithTableName("my_events"), WithSnapshotTableName("my_snapshots")})
	require.NoError(t, err)
	assert.Equal(t, "my_events", es.eventTableName)
	assert.Equal(t, "my_snapshots", es.snapshotTableName)
}

func Test_Constructors_RejectNilConnections(t *testing.T) {
	_, err := NewEventStoreFromPGXPool(nil)
	assert.ErrorIs(t, err, eventstore.ErrNilDatabaseConnection)

	_, err = NewEventStoreFromPGXPoolAndReplica(nil, nil)
	assert.ErrorIs(t, err, eventstore.ErrNilDatabaseConnection)

	_, err = NewEventStoreFromSQLDB(nil)
	assert.ErrorIs(t, err, eventstore.ErrNilDatabaseConnection)

	_, err = NewEventStoreFromSQLX(nil)
	assert.ErrorIs(t, err, eventstore.ErrNilDatabaseConnection)
}

func countContaining(statements []string, part string) int {
	n := 0
	for _, s := range statements {
		if strings.Contains(s, part) {
			n++
		}
	}

	return n
}
