// Package eventlogcontract holds the behavior every eventstore.EventLog and eventstore.SnapshotStore engine
// must show. Engine packages run it from their own tests.
//
// All tests use unique tag values, so they can run against a shared, non-empty database.
package eventlogcontract

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

const (
	typeCreated = "ThingCreated"
	typeChanged = "ThingChanged"
	typeOther   = "OtherThingHappened"
	tagThing    = "Thing"
	tagOwner    = "Owner"
)

// RunEventLog runs the EventLog contract against the engine returned by newLog.
//
//nolint:funlen
func RunEventLog(t *testing.T, newLog func(t *testing.T) eventstore.EventLog) {
	t.Run("query of an unknown stream returns no events and the no-events version", func(t *testing.T) {
		// arrange
		ctx := context.Background()
		log := newLog(t)

		// act
		events, version, err := log.Query(ctx, thingFilter(GivenUniqueID(t)))

		// assert
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Equal(t, eventstore.NoEventsVersion, version)
	})

	t.Run("appended events are read back in order with tags and positions", func(t *testing.T) {
		// arrange
		ctx := context.Background()
		log := newLog(t)
		thingID := GivenUniqueID(t)
		ownerID := GivenUniqueID(t)
		filter := thingFilter(thingID)

		first := GivenStorableEvent(t, typeCreated, `{"n":1}`, eventstore.T(tagThing, thingID), eventstore.T(tagOwner, ownerID))
		second := GivenStorableEvent(t, typeChanged, `{"n":2}`, eventstore.T(tagThing, thingID))

		// act
		require.NoError(t, log.Append(ctx, filter, eventstore.NoEventsVersion, first, second))
		events, version, err := log.Query(ctx, filter)

		// assert
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, typeCreated, events[0].EventType)
		assert.Equal(t, typeChanged, events[1].EventType)
		assert.JSONEq(t, `{"n":1}`, string(events[0].PayloadJSON))
		assert.JSONEq(t, `{"n":2}`, string(events[1].PayloadJSON))
		assert.Equal(t, eventstore.NewTags(eventstore.T(tagThing, thingID), eventstore.T(tagOwner, ownerID)), events[0].Tags)
		assert.Equal(t, eventstore.Tags{eventstore.T(tagThing, thingID)}, events[1].Tags)
		assert.Greater(t, events[0].SequenceNumber, eventstore.NoEventsVersion)
		assert.Equal(t, events[0].SequenceNumber+1, events[1].SequenceNumber)
		assert.Equal(t, events[1].SequenceNumber, version)
		assert.WithinDuration(t, first.OccurredAt, events[0].OccurredAt, time.Millisecond)
	})

	t.Run("append with a stale version is a concurrency conflict and appends nothing", func(t *testing.T) {
		// arrange
		ctx := context.Background()
		log := newLog(t)
		thingID := GivenUniqueID(t)
		filter := thingFilter(thingID)
		require.NoError(t, log.Append(ctx, filter, eventstore.NoEventsVersion, GivenStorableEvent(t, typeCreated, `{}`, eventstore.T(tagThing, thingID))))

		// act
		err := log.Append(
			ctx,
			filter,
			eventstore.NoEventsVersion,
			GivenStorableEvent(t, typeChanged, `{}`, eventstore.T(tagThing, thingID)),
			GivenStorableEvent(t, typeChanged, `{}`, eventstore.T(tagThing, thingID)),
		)

		// assert
		assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
		events, _, queryErr := log.Query(ctx, filter)
		require.NoError(t, queryErr)
		assert.Len(t, events, 1)
	})

	t.Run("append with a version ahead of the stream is a concurrency conflict", func(t *testing.T) {
		// arrange
		ctx := context.Background()
		log := newLog(t)
		thingID := GivenUniqueID(t)

		// act
		err := log.Append(ctx, thingFilter(thingID), 99999999, GivenStorableEvent(t, typeCreated, `{}`, eventstore.T(tagThing, thingID)))

		// assert
		assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	})

	t.Run("events of other entities do not conflict", func(t *testing.T) {
		// arrange
		ctx := context.Background()
		log := newLog(t)
		thingID := GivenUniqueID(t)
		otherThingID := GivenUniqueID(t)
		filter := thingFilter(thingID)
		_, version, err := log.Query(ctx, filter)
		require.NoError(t, err)

		// act
		require.NoError(t, log.Append(ctx, thingFilter(otherThingID), eventstore.NoEventsVersion,
			GivenStorableEvent(t, typeCreated, `{}`, eventstore.T(tagThing, otherThingID))))
		err = log.Append(ctx, filter, version, GivenStorableEvent(t, typeCreated, `{}`, eventstore.T(tagThing, thingID)))

		// assert
		assert.NoError(t, err)
	})

	t.Run("event types outside the criteria do not conflict", func(t *testing.T) {
		// arrange
		ctx := context.Background()
		log := newLog(t)
		thingID := GivenUniqueID(t)
		filter := thingFilter(thingID)

		// act
		require.NoError(t, log.Append(ctx, eventstore.BuildEventFilter().Matching().AnyEventTypeOf(typeOther).
			AndAllTagsOf(eventstore.T(tagThing, thingID)).Finalize(), eventstore.NoEventsVersion,
			GivenStorableEvent(t, typeOther, `{}`, eventstore.T(tagThing, thingID))))
		err := log.Append(ctx, filter, eventstore.NoEventsVersion, GivenStorableEvent(t, typeCreated, `{}`, eventstore.T(tagThing, thingID)))

		// assert
		assert.NoError(t, err)
		events, _, queryErr := log.Query(ctx, filter)
		require.NoError(t, queryErr)
		assert.Len(t, events, 1)
	})

	t.Run("all tags of a filter item must be present", func(t *testing.T) {
		// arrange
		ctx := context.Background()
		log := newLog(t)
		thingID := GivenUniqueID(t)
		ownerID := GivenUniqueID(t)
		bothTags := eventstore.BuildEventFilter().Matching().AllTagsOf(eventstore.T(tagThing, thingID), eventstore.T(tagOwner, ownerID)).Finalize()

		require.NoError(t, log.Append(ctx, thingFilter(thingID), eventstore.NoEventsVersion,
			GivenStorableEvent(t, typeCreated, `{"owned":false}`, eventstore.T(tagThing, thingID)),
			GivenStorableEvent(t, typeChanged, `{"owned":true}`, eventstore.T(tagThing, thingID), eventstore.T(tagOwner, ownerID)),
		))

		// act
		events, _, err := log.Query(ctx, bothTags)

		// assert
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.JSONEq(t, `{"owned":true}`, string(events[0].PayloadJSON))
	})

	t.Run("either filter returns the union in log order", func(t *testing.T) {
		// arrange
		ctx := context.Background()
		log := newLog(t)
		thingID := GivenUniqueID(t)
		ownerID := GivenUniqueID(t)
		either := eventstore.BuildEventFilter().
			Matching().AnyEventTypeOf(typeCreated).AndAllTagsOf(eventstore.T(tagThing, thingID)).
			OrMatching().AllTagsOf(eventstore.T(tagOwner, ownerID)).
			Finalize()

		require.NoError(t, log.Append(ctx, thingFilter(thingID), eventstore.NoEventsVersion,
			GivenStorableEvent(t, typeCreated, `{"i":1}`, eventstore.T(tagThing, thingID))))
		require.NoError(t, log.Append(ctx, ownerFilter(ownerID), eventstore.NoEventsVersion,
			GivenStorableEvent(t, typeOther, `{"i":2}`, eventstore.T(tagOwner, ownerID))))
		_, thingVersion, err := log.Query(ctx, thingFilter(thingID))
		require.NoError(t, err)
		require.NoError(t, log.Append(ctx, thingFilter(thingID), thingVersion,
			GivenStorableEvent(t, typeChanged, `{"i":3}`, eventstore.T(tagThing, thingID))))

		// act
		events, version, err := log.Query(ctx, either)

		// assert
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.JSONEq(t, `{"i":1}`, string(events[0].PayloadJSON))
		assert.JSONEq(t, `{"i":2}`, string(events[1].PayloadJSON))
		assert.Equal(t, events[1].SequenceNumber, version)
	})

	t.Run("sequence number bound returns only newer events", func(t *testing.T) {
		// arrange
		ctx := context.Background()
		log := newLog(t)
		thingID := GivenUniqueID(t)
		filter := thingFilter(thingID)
		require.NoError(t, log.Append(ctx, filter, eventstore.NoEventsVersion,
			GivenStorableEvent(t, typeCreated, `{}`, eventstore.T(tagThing, thingID)),
			GivenStorableEvent(t, typeChanged, `{"late":true}`, eventstore.T(tagThing, thingID)),
		))
		all, _, err := log.Query(ctx, filter)
		require.NoError(t, err)
		require.Len(t, all, 2)

		// act
		newer, version, err := log.Query(ctx, filter.WithSequenceNumberHigherThan(all[0].SequenceNumber))

		// assert
		require.NoError(t, err)
		require.Len(t, newer, 1)
		assert.JSONEq(t, `{"late":true}`, string(newer[0].PayloadJSON))
		assert.Equal(t, all[1].SequenceNumber, version)
	})

	t.Run("concurrent appends with the same expected version let exactly one win", func(t *testing.T) {
		// arrange
		ctx := context.Background()
		log := newLog(t)
		thingID := GivenUniqueID(t)
		filter := thingFilter(thingID)
		const writers = 8
		event := GivenStorableEvent(t, typeCreated, `{}`, eventstore.T(tagThing, thingID))

		var wg sync.WaitGroup
		errs := make(chan error, writers)

		// act
		for range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- log.Append(ctx, filter, eventstore.NoEventsVersion, event)
			}()
		}
		wg.Wait()
		close(errs)

		// assert
		succeeded, conflicted := 0, 0
		for err := range errs {
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict):
				conflicted++
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, writers-1, conflicted)
	})
}

// RunSnapshotStore runs the SnapshotStore contract against the store returned by newStore.
func RunSnapshotStore(t *testing.T, newStore func(t *testing.T) eventstore.SnapshotStore) {
	t.Run("load of a missing snapshot returns nil", func(t *testing.T) {
		store := newStore(t)

		snapshot, err := store.LoadSnapshot(context.Background(), "Thing", GivenUniqueID(t))

		require.NoError(t, err)
		assert.Nil(t, snapshot)
	})

	t.Run("saved snapshot is loaded back and a lower position never replaces it", func(t *testing.T) {
		// arrange
		ctx := context.Background()
		store := newStore(t)
		hash := GivenUniqueID(t)
		newer := GivenSnapshot(t, hash, 7, `{"count":7}`)
		older := GivenSnapshot(t, hash, 3, `{"count":3}`)

		// act
		require.NoError(t, store.SaveSnapshot(ctx, newer))
		require.NoError(t, store.SaveSnapshot(ctx, older))
		loaded, err := store.LoadSnapshot(ctx, "Thing", hash)

		// assert
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, uint(7), loaded.SequenceNumber)
		assert.JSONEq(t, `{"count":7}`, string(loaded.Data))
	})

	t.Run("deleted snapshot is gone", func(t *testing.T) {
		// arrange
		ctx := context.Background()
		store := newStore(t)
		hash := GivenUniqueID(t)
		require.NoError(t, store.SaveSnapshot(ctx, GivenSnapshot(t, hash, 1, `{}`)))

		// act
		require.NoError(t, store.DeleteSnapshot(ctx, "Thing", hash))
		loaded, err := store.LoadSnapshot(ctx, "Thing", hash)

		// assert
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})
}

func GivenUniqueID(t testing.TB) string {
	t.Helper()

	id, err := uuid.NewV7()
	require.NoError(t, err, "error in arranging test data")

	return id.String()
}

func GivenStorableEvent(t testing.TB, eventType string, payload string, tags ...eventstore.Tag) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEvent(
		eventType,
		time.Now().UTC().Truncate(time.Microsecond),
		[]byte(payload),
		[]byte(`{"source":"contract"}`),
		tags...,
	)
	require.NoError(t, err, "error in arranging test data")

	return event
}

func GivenSnapshot(t testing.TB, filterHash string, seq eventstore.MaxSequenceNumberUint, data string) eventstore.Snapshot {
	t.Helper()

	snapshot, err := eventstore.BuildSnapshot("Thing", filterHash, seq, []byte(data), time.Now().UTC())
	require.NoError(t, err, "error in arranging test data")

	return snapshot
}

func thingFilter(thingID string) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(typeCreated, typeChanged).
		AndAllTagsOf(eventstore.T(tagThing, thingID)).
		Finalize()
}

func ownerFilter(ownerID string) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AllTagsOf(eventstore.T(tagOwner, ownerID)).
		Finalize()
}
