package eventstore

import (
	"errors"
)

var (
	ErrEmptyEventsTableName        = errors.New("events table name must not be empty")
	ErrNilDatabaseConnection       = errors.New("database connection must not be nil")
	ErrConcurrencyConflict         = errors.New("concurrency conflict: the stream was changed since it was loaded")
	ErrQueryingEventsFailed        = errors.New("querying events failed")
	ErrScanningDBRowFailed         = errors.New("scanning db row failed")
	ErrBuildingStorableEventFailed = errors.New("building storable event failed")
	ErrBuildingQueryFailed         = errors.New("building query failed")
	ErrAppendingEventFailed        = errors.New("appending the event failed")
	ErrGettingRowsAffectedFailed   = errors.New("getting rows affected failed")
	ErrEncodingTagsFailed          = errors.New("encoding tags failed")
	ErrDecodingTagsFailed          = errors.New("decoding tags failed")
)

// MaxSequenceNumberUint is the position of the last event of a "dynamic event stream" selected by a Filter.
// It doubles as the stream version used for optimistic concurrency control.
type MaxSequenceNumberUint = uint

// NoEventsVersion is the stream version of a Filter that matches no events yet.
// Engines start numbering positions at 1.
const NoEventsVersion MaxSequenceNumberUint = 0
