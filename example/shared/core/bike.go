package core

import (
	"github.com/dcbkit/dcb-runtime-go/entity"
	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

const (
	BikeAddedToFleetEventType     = "BikeAddedToFleet"
	BikeRemovedFromFleetEventType = "BikeRemovedFromFleet"
	BikeRentalRequestedEventType  = "BikeRentalRequested"
	BikeReturnedEventType         = "BikeReturned"
)

type BikeAddedToFleet struct {
	BikeID   string `json:"bikeId"`
	Location string `json:"location"`
	BikeType string `json:"bikeType"`
}

func (e BikeAddedToFleet) EventType() string { return BikeAddedToFleetEventType }

func (e BikeAddedToFleet) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T(TagBike, e.BikeID))
}

type BikeRemovedFromFleet struct {
	BikeID string `json:"bikeId"`
	Reason string `json:"reason"`
}

func (e BikeRemovedFromFleet) EventType() string { return BikeRemovedFromFleetEventType }

func (e BikeRemovedFromFleet) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T(TagBike, e.BikeID))
}

// BikeRentalRequested is tagged with the bike, the user, and the rental.
type BikeRentalRequested struct {
	RentalID string `json:"rentalId"`
	BikeID   string `json:"bikeId"`
	UserID   string `json:"userId"`
}

func (e BikeRentalRequested) EventType() string { return BikeRentalRequestedEventType }

func (e BikeRentalRequested) EventTags() eventstore.Tags {
	return rentalTags(e.RentalID, e.BikeID, e.UserID)
}

type BikeReturned struct {
	RentalID string `json:"rentalId"`
	BikeID   string `json:"bikeId"`
	UserID   string `json:"userId"`
}

func (e BikeReturned) EventType() string { return BikeReturnedEventType }

func (e BikeReturned) EventTags() eventstore.Tags {
	return rentalTags(e.RentalID, e.BikeID, e.UserID)
}

func rentalTags(rentalID, bikeID, userID string) eventstore.Tags {
	return eventstore.NewTags(
		eventstore.T(TagRental, rentalID),
		eventstore.T(TagBike, bikeID),
		eventstore.T(TagUser, userID),
	)
}

// BikeStatus is the fleet membership of a bike, the zero value means the bike was never added.
type BikeStatus string

const (
	BikeInFleet BikeStatus = "IN_FLEET"
	BikeRetired BikeStatus = "REMOVED"
)

type FleetState struct {
	Status   BikeStatus `json:"status"`
	Location string     `json:"location"`
	BikeType string     `json:"bikeType"`
}

// FleetEntity is the fleet membership of one bike.
var FleetEntity = entity.Define(
	"Bike",
	func() FleetState { return FleetState{} },
	FleetCriteria,
	entity.On(BikeAddedToFleetEventType, func(s FleetState, e BikeAddedToFleet) FleetState {
		s.Status = BikeInFleet
		s.Location = e.Location
		s.BikeType = e.BikeType
		return s
	}),
	entity.On(BikeRemovedFromFleetEventType, func(s FleetState, _ BikeRemovedFromFleet) FleetState {
		s.Status = BikeRetired
		return s
	}),
).WithIDParser(ParseBikeID)

func FleetCriteria(id BikeID) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(BikeAddedToFleetEventType, BikeRemovedFromFleetEventType).
		AndAllTagsOf(eventstore.T(TagBike, string(id))).
		Finalize()
}

// RentalState spans one bike and one user. Its stream also holds events of other bikes rented by the user
// and of other users renting the bike, so everything is keyed by id.
type RentalState struct {
	Bikes              map[string]BikeStatus `json:"bikes"`
	ActiveRentalByBike map[string]string     `json:"activeRentalByBike"`
	ActiveRentalByUser map[string]string     `json:"activeRentalByUser"`
}

func NewRentalState() RentalState {
	return RentalState{
		Bikes:              make(map[string]BikeStatus),
		ActiveRentalByBike: make(map[string]string),
		ActiveRentalByUser: make(map[string]string),
	}
}

func (s RentalState) BikeStatus(bikeID string) BikeStatus {
	return s.Bikes[bikeID]
}

func (s RentalState) ActiveRentalOfBike(bikeID string) (string, bool) {
	rentalID, ok := s.ActiveRentalByBike[bikeID]
	return rentalID, ok
}

func (s RentalState) ActiveRentalOfUser(userID string) (string, bool) {
	rentalID, ok := s.ActiveRentalByUser[userID]
	return rentalID, ok
}

func (s RentalState) ensureMaps() RentalState {
	if s.Bikes == nil || s.ActiveRentalByBike == nil || s.ActiveRentalByUser == nil {
		fresh := NewRentalState()
		for k, v := range s.Bikes {
			fresh.Bikes[k] = v
		}
		for k, v := range s.ActiveRentalByBike {
			fresh.ActiveRentalByBike[k] = v
		}
		for k, v := range s.ActiveRentalByUser {
			fresh.ActiveRentalByUser[k] = v
		}

		return fresh
	}

	return s
}

// RentalEntity decides on rentals and returns for a (user, bike) pair.
var RentalEntity = entity.Define(
	"Rental",
	NewRentalState,
	RentalCriteria,
	entity.On(BikeAddedToFleetEventType, func(s RentalState, e BikeAddedToFleet) RentalState {
		s = s.ensureMaps()
		s.Bikes[e.BikeID] = BikeInFleet
		return s
	}),
	entity.On(BikeRemovedFromFleetEventType, func(s RentalState, e BikeRemovedFromFleet) RentalState {
		s = s.ensureMaps()
		s.Bikes[e.BikeID] = BikeRetired
		return s
	}),
	entity.On(BikeRentalRequestedEventType, func(s RentalState, e BikeRentalRequested) RentalState {
		s = s.ensureMaps()
		s.ActiveRentalByBike[e.BikeID] = e.RentalID
		s.ActiveRentalByUser[e.UserID] = e.RentalID
		return s
	}),
	entity.On(BikeReturnedEventType, func(s RentalState, e BikeReturned) RentalState {
		s = s.ensureMaps()
		if s.ActiveRentalByBike[e.BikeID] == e.RentalID {
			delete(s.ActiveRentalByBike, e.BikeID)
		}
		if s.ActiveRentalByUser[e.UserID] == e.RentalID {
			delete(s.ActiveRentalByUser, e.UserID)
		}
		return s
	}),
).WithIDParser(ParseRentalTarget)

// RentalCriteria selects the fleet and rental events of the bike and the rental events of the user.
func RentalCriteria(target RentalTarget) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			BikeAddedToFleetEventType,
			BikeRemovedFromFleetEventType,
			BikeRentalRequestedEventType,
			BikeReturnedEventType,
		).
		AndAllTagsOf(eventstore.T(TagBike, target.BikeID)).
		OrMatching().
		AnyEventTypeOf(BikeRentalRequestedEventType, BikeReturnedEventType).
		AndAllTagsOf(eventstore.T(TagUser, target.UserID)).
		Finalize()
}
