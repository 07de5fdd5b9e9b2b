package teamroster

import (
	"context"
	"errors"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/example/shared/shell"
)

var ErrQueryFailed = errors.New("team roster query failed")

// QueryHandler projects rosters from an EventLog.
type QueryHandler struct {
	events eventstore.EventLog
}

func NewQueryHandler(events eventstore.EventLog) QueryHandler {
	return QueryHandler{events: events}
}

// Handle projects the full roster.
func (h QueryHandler) Handle(ctx context.Context, q Query) (TeamRoster, error) {
	return h.HandleIncremental(ctx, q, TeamRoster{TeamID: q.TeamID})
}

// HandleIncremental applies only the events after base.SequenceNumber to base.
func (h QueryHandler) HandleIncremental(ctx context.Context, q Query, base TeamRoster) (TeamRoster, error) {
	filter := BuildEventFilter(q.TeamID).WithSequenceNumberHigherThan(base.SequenceNumber)

	storableEvents, maxSequence, err := h.events.Query(ctx, filter)
	if err != nil {
		return TeamRoster{}, errors.Join(ErrQueryFailed, err)
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return TeamRoster{}, errors.Join(ErrQueryFailed, err)
	}

	if len(storableEvents) == 0 {
		maxSequence = base.SequenceNumber
	}

	return Project(history, q, maxSequence, base), nil
}
