package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

var (
	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

type eventDecoder func(payloadJSON []byte) (command.Event, error)

var eventDecoders = map[string]eventDecoder{
	core.DriverCreatedEventType:           unmarshal[core.DriverCreated],
	core.DriverRemovedEventType:           unmarshal[core.DriverRemoved],
	core.TeamCreatedEventType:             unmarshal[core.TeamCreated],
	core.TeamRemovedEventType:             unmarshal[core.TeamRemoved],
	core.RaceCreatedEventType:             unmarshal[core.RaceCreated],
	core.RaceCancelledEventType:           unmarshal[core.RaceCancelled],
	core.RaceRatedEventType:               unmarshal[core.RaceRated],
	core.DriverPerformanceRatedEventType:  unmarshal[core.DriverPerformanceRated],
	core.AccountCreatedEventType:          unmarshal[core.AccountCreated],
	core.EmailVerifiedEventType:           unmarshal[core.EmailVerified],
	core.AccountMarkedUnverifiedEventType: unmarshal[core.AccountMarkedUnverified],
	core.BikeAddedToFleetEventType:        unmarshal[core.BikeAddedToFleet],
	core.BikeRemovedFromFleetEventType:    unmarshal[core.BikeRemovedFromFleet],
	core.BikeRentalRequestedEventType:     unmarshal[core.BikeRentalRequested],
	core.BikeReturnedEventType:            unmarshal[core.BikeReturned],
	core.GuestCheckedInEventType:          unmarshal[core.GuestCheckedIn],
	core.GuestCheckedOutEventType:         unmarshal[core.GuestCheckedOut],
}

// DomainEventsFrom converts multiple StorableEvents to domain events.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) ([]command.Event, error) {
	domainEvents := make([]command.Event, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its corresponding domain event.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (command.Event, error) {
	decode, ok := eventDecoders[storableEvent.EventType]
	if !ok {
		return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
	}

	return decode(storableEvent.PayloadJSON)
}

func unmarshal[E command.Event](payloadJSON []byte) (command.Event, error) {
	var event E

	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &event); err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return event, nil
}
