package core

import (
	"github.com/dcbkit/dcb-runtime-go/entity"
	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

const (
	RaceCreatedEventType            = "RaceCreated"
	RaceCancelledEventType          = "RaceCancelled"
	RaceRatedEventType              = "RaceRated"
	DriverPerformanceRatedEventType = "DriverPerformanceRated"
)

// RaceCreated is tagged with the race and with every participating driver.
type RaceCreated struct {
	RaceID                 string   `json:"raceId"`
	ParticipatingDriverIDs []string `json:"participatingDriverIds"`
	RaceDate               string   `json:"raceDate"`
	TrackName              string   `json:"trackName"`
}

func (e RaceCreated) EventType() string { return RaceCreatedEventType }

func (e RaceCreated) EventTags() eventstore.Tags {
	tags := []eventstore.Tag{eventstore.T(TagRace, e.RaceID)}
	for _, driverID := range e.ParticipatingDriverIDs {
		tags = append(tags, eventstore.T(TagDriver, driverID))
	}

	return eventstore.NewTags(tags...)
}

type RaceCancelled struct {
	RaceID string `json:"raceId"`
}

func (e RaceCancelled) EventType() string { return RaceCancelledEventType }

func (e RaceCancelled) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T(TagRace, e.RaceID))
}

type RaceRated struct {
	RaceID  string `json:"raceId"`
	UserID  string `json:"userId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

func (e RaceRated) EventType() string { return RaceRatedEventType }

func (e RaceRated) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T(TagRace, e.RaceID), eventstore.T(TagUser, e.UserID))
}

type DriverPerformanceRated struct {
	UserID   string `json:"userId"`
	DriverID string `json:"driverId"`
	RaceID   string `json:"raceId"`
	Rating   int    `json:"rating"`
}

func (e DriverPerformanceRated) EventType() string { return DriverPerformanceRatedEventType }

func (e DriverPerformanceRated) EventTags() eventstore.Tags {
	return eventstore.NewTags(
		eventstore.T(TagDriver, e.DriverID),
		eventstore.T(TagRace, e.RaceID),
		eventstore.T(TagUser, e.UserID),
	)
}

// RaceStatus is the lifecycle of a race, the zero value means the race was never created.
type RaceStatus string

const (
	RaceScheduled RaceStatus = "CREATED"
	RaceCanceled  RaceStatus = "CANCELLED"
)

type RaceState struct {
	Status       RaceStatus `json:"status"`
	RaceDate     string     `json:"raceDate"`
	TrackName    string     `json:"trackName"`
	Participants []string   `json:"participants"`
}

func (s RaceState) Exists() bool {
	return s.Status != ""
}

// RaceEntity is the race lifecycle, used to create and cancel races.
var RaceEntity = entity.Define(
	"Race",
	func() RaceState { return RaceState{} },
	RaceCriteria,
	entity.On(RaceCreatedEventType, func(s RaceState, e RaceCreated) RaceState {
		s.Status = RaceScheduled
		s.RaceDate = e.RaceDate
		s.TrackName = e.TrackName
		s.Participants = e.ParticipatingDriverIDs
		return s
	}),
	entity.On(RaceCancelledEventType, func(s RaceState, _ RaceCancelled) RaceState {
		s.Status = RaceCanceled
		return s
	}),
).WithIDParser(ParseRaceID)

func RaceCriteria(id RaceID) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(RaceCreatedEventType, RaceCancelledEventType).
		AndAllTagsOf(eventstore.T(TagRace, string(id))).
		Finalize()
}
