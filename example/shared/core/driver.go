package core

import (
	"github.com/dcbkit/dcb-runtime-go/entity"
	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

const (
	DriverCreatedEventType = "DriverCreated"
	DriverRemovedEventType = "DriverRemoved"
)

// DriverCreated is tagged with the driver and the team, the team roster is built from it.
type DriverCreated struct {
	TeamID     string `json:"teamId"`
	DriverID   string `json:"driverId"`
	DriverName string `json:"driverName"`
}

func (e DriverCreated) EventType() string { return DriverCreatedEventType }

func (e DriverCreated) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T(TagDriver, e.DriverID), eventstore.T(TagTeam, e.TeamID))
}

type DriverRemoved struct {
	DriverID string `json:"driverId"`
	TeamID   string `json:"teamId,omitempty"`
}

func (e DriverRemoved) EventType() string { return DriverRemovedEventType }

func (e DriverRemoved) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T(TagDriver, e.DriverID), eventstore.T(TagTeam, e.TeamID))
}

// DriverStatus is the lifecycle of a driver, the zero value means the driver was never created.
type DriverStatus string

const (
	DriverActive  DriverStatus = "ACTIVE"
	DriverRetired DriverStatus = "REMOVED"
)

type DriverState struct {
	Status DriverStatus `json:"status"`
	TeamID string       `json:"teamId"`
	Name   string       `json:"name"`
}

func (s DriverState) IsActive() bool {
	return s.Status == DriverActive
}

// DriverEntity is the driver lifecycle, used to create and remove drivers.
var DriverEntity = entity.Define(
	"Driver",
	func() DriverState { return DriverState{} },
	DriverCriteria,
	entity.On(DriverCreatedEventType, func(s DriverState, e DriverCreated) DriverState {
		s.Status = DriverActive
		s.TeamID = e.TeamID
		s.Name = e.DriverName
		return s
	}),
	entity.On(DriverRemovedEventType, func(s DriverState, _ DriverRemoved) DriverState {
		s.Status = DriverRetired
		return s
	}),
).WithIDParser(ParseDriverID)

func DriverCriteria(id DriverID) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(DriverCreatedEventType, DriverRemovedEventType).
		AndAllTagsOf(eventstore.T(TagDriver, string(id))).
		Finalize()
}
