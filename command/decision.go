package command

// Outcome classifies a Decision and the Result of a dispatch.
type Outcome int

const (
	Accepted Outcome = iota + 1
	Rejected
	Failed
	Unchanged
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	case Unchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Decision is what a handler decided for a command given the current state.
type Decision struct {
	outcome Outcome
	events  []Event
	result  any
	err     error
}

// Accept appends the events and returns result to the caller.
// Accept without events is the same as NoOp.
func Accept(result any, events ...Event) Decision {
	if len(events) == 0 {
		return NoOp(result)
	}

	return Decision{outcome: Accepted, events: events, result: result}
}

// Reject is a modeled business outcome, e.g. a duplicate registration.
// Nothing is appended, the caller receives result as a normal response.
func Reject(result any) Decision {
	return Decision{outcome: Rejected, result: result}
}

// Fail is an unmodeled condition, e.g. a required related entity does not exist.
// Nothing is appended, the caller receives err.
func Fail(err error) Decision {
	return Decision{outcome: Failed, err: err}
}

// NoOp returns result without appending anything.
func NoOp(result any) Decision {
	return Decision{outcome: Unchanged, result: result}
}

// Outcome returns how the handler decided.
func (d Decision) Outcome() Outcome {
	return d.outcome
}

// Events returns the events to append, empty unless the outcome is Accepted.
func (d Decision) Events() []Event {
	return d.events
}

// Result returns the value handed to the caller, nil for a Failed decision.
func (d Decision) Result() any {
	return d.result
}

// Err returns the error of a Failed decision.
func (d Decision) Err() error {
	return d.err
}

// HasEventsToAppend reports whether the dispatcher has to append anything.
func (d Decision) HasEventsToAppend() bool {
	return d.outcome == Accepted && len(d.events) > 0
}
