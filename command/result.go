package command

import (
	"time"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

// Result is returned to the caller for Accepted, Rejected, and Unchanged outcomes.
type Result struct {
	Outcome         Outcome
	Value           any                              // the handler's result value
	Version         eventstore.MaxSequenceNumberUint // stream version the decision was based on
	AppendedEvents  int
	RetryAttempts   int // number of reloads after concurrency conflicts
	TotalRetryDelay time.Duration
}

func (r Result) IsRejected() bool {
	return r.Outcome == Rejected
}
