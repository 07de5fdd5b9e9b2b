package entity

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

var ErrDecodingEventFailed = errors.New("decoding event payload failed")

// Transition evolves a state of type S with one event type.
type Transition[S any] struct {
	eventType string
	apply     func(state S, event eventstore.StorableEvent) (S, error)
}

func (t Transition[S]) EventType() string {
	return t.eventType
}

// On registers evolve for eventType, the payload is decoded into E before evolve is called.
// evolve must be pure.
func On[S any, E any](eventType string, evolve func(state S, event E) S) Transition[S] {
	return Transition[S]{
		eventType: eventType,
		apply: func(state S, storable eventstore.StorableEvent) (S, error) {
			var event E
			if err := jsoniter.ConfigFastest.Unmarshal(storable.PayloadJSON, &event); err != nil {
				return state, errors.Join(ErrDecodingEventFailed, err)
			}

			return evolve(state, event), nil
		},
	}
}

// OnStorable registers evolve for eventType with access to the raw event, e.g. to its tags.
func OnStorable[S any](eventType string, evolve func(state S, event eventstore.StorableEvent) (S, error)) Transition[S] {
	return Transition[S]{eventType: eventType, apply: evolve}
}
