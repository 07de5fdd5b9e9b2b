package eventstore

import (
	"context"
)

// EventLog is the append-only, totally ordered storage of events.
//
// Query returns the events matching the Filter ordered by SequenceNumber,
// and the MaxSequenceNumberUint of the last returned event (NoEventsVersion if none).
//
// Append appends all events atomically, or none of them.
// It returns ErrConcurrencyConflict if the highest SequenceNumber of the events matching the Filter
// is not expectedMaxSequenceNumber at the time of the append.
// This is the only place where the optimistic concurrency check happens.
type EventLog interface {
	Query(ctx context.Context, filter Filter) (StorableEvents, MaxSequenceNumberUint, error)
	Append(
		ctx context.Context,
		filter Filter,
		expectedMaxSequenceNumber MaxSequenceNumberUint,
		event StorableEvent,
		additionalEvents ...StorableEvent,
	) error
}
