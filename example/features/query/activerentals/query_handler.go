package activerentals

import (
	"context"
	"errors"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/example/shared/shell"
)

var ErrQueryFailed = errors.New("active rentals query failed")

// QueryHandler projects the open rentals from an EventLog.
type QueryHandler struct {
	events eventstore.EventLog
}

func NewQueryHandler(events eventstore.EventLog) QueryHandler {
	return QueryHandler{events: events}
}

func (h QueryHandler) Handle(ctx context.Context, _ Query) (ActiveRentals, error) {
	storableEvents, maxSequence, err := h.events.Query(ctx, BuildEventFilter())
	if err != nil {
		return ActiveRentals{}, errors.Join(ErrQueryFailed, err)
	}

	history := make(shell.EventEnvelopes, 0, len(storableEvents))
	for _, storableEvent := range storableEvents {
		envelope, err := shell.EventEnvelopeFrom(storableEvent)
		if err != nil {
			return ActiveRentals{}, errors.Join(ErrQueryFailed, err)
		}

		history = append(history, envelope)
	}

	return Project(history, maxSequence), nil
}
