// Package eventstore provides the core abstractions of a tag based, append-only event log
// with dynamic event streams.
//
// Every event carries one or more Tag(s) that associate it with the entities it affects.
// The events of one entity are not stored in a dedicated stream, they are selected from the
// single, totally ordered log with a Filter:
//   - event types (ANY of them)
//   - tags (ALL of them)
//   - multiple such items combined with OR
//
// Key types:
//   - EventLog: Query and Append with optimistic concurrency on the Filter
//   - Filter: the stream criteria of an entity
//   - StorableEvent: an event that can be appended and read back
//   - Snapshot, SnapshotStore: optional state checkpoints
//
// Common usage pattern:
//
//	filter := eventstore.BuildEventFilter().
//		Matching().
//		AnyEventTypeOf("DriverCreated", "DriverRemoved").
//		AndAllTagsOf(eventstore.T("Driver", driverID)).
//		Finalize()
//
//	events, maxSeq, err := eventLog.Query(ctx, filter)
//	if err != nil {
//		// handle error
//	}
//
//	newEvent, err := eventstore.BuildStorableEvent(eventType, occurredAt, payload, metadata, eventstore.T("Driver", driverID))
//	err = eventLog.Append(ctx, filter, maxSeq, newEvent)
package eventstore
