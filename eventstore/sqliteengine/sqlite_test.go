package sqliteengine_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/eventstore/sqliteengine"
	"github.com/dcbkit/dcb-runtime-go/testutil/eventlogcontract"
)

func givenEventStore(t *testing.T) *sqliteengine.EventStore {
	t.Helper()

	store, err := sqliteengine.Open(context.Background(), filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func Test_EventLogContract(t *testing.T) {
	eventlogcontract.RunEventLog(t, func(t *testing.T) eventstore.EventLog {
		return givenEventStore(t)
	})
}

func Test_SnapshotStoreContract(t *testing.T) {
	eventlogcontract.RunSnapshotStore(t, func(t *testing.T) eventstore.SnapshotStore {
		return givenEventStore(t)
	})
}

func Test_Open_WithEmptyPath_Fails(t *testing.T) {
	_, err := sqliteengine.Open(context.Background(), "")

	assert.ErrorIs(t, err, sqliteengine.ErrEmptyPath)
}

func Test_Reopen_KeepsEventsAndPositions(t *testing.T) {
	// arrange
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "events.db")
	thingID := eventlogcontract.GivenUniqueID(t)
	filter := eventstore.BuildEventFilter().Matching().AllTagsOf(eventstore.T("Thing", thingID)).Finalize()

	store, err := sqliteengine.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, filter, eventstore.NoEventsVersion,
		eventlogcontract.GivenStorableEvent(t, "ThingCreated", `{}`, eventstore.T("Thing", thingID)),
		eventlogcontract.GivenStorableEvent(t, "ThingChanged", `{}`, eventstore.T("Thing", thingID)),
	))
	require.NoError(t, store.Close())

	// act
	reopened, err := sqliteengine.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	events, version, err := reopened.Query(ctx, filter)

	// assert
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint(2), version)
	assert.Equal(t, "ThingChanged", events[1].EventType)
}

func Test_DSN_ContainsPragmasAndImmediateTransactions(t *testing.T) {
	dsn := sqliteengine.DSN("/tmp/x.db")

	assert.Contains(t, dsn, "file:/tmp/x.db?")
	assert.Contains(t, dsn, "_txlock=immediate")
	assert.Contains(t, dsn, "journal_mode%28WAL%29")
}
