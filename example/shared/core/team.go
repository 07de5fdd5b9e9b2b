package core

import (
	"github.com/dcbkit/dcb-runtime-go/entity"
	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

const (
	TeamCreatedEventType = "TeamCreated"
	TeamRemovedEventType = "TeamRemoved"
)

type TeamCreated struct {
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
}

func (e TeamCreated) EventType() string { return TeamCreatedEventType }

func (e TeamCreated) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T(TagTeam, e.TeamID))
}

type TeamRemoved struct {
	TeamID string `json:"teamId"`
}

func (e TeamRemoved) EventType() string { return TeamRemovedEventType }

func (e TeamRemoved) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T(TagTeam, e.TeamID))
}

type TeamStatus string

const (
	TeamActive    TeamStatus = "ACTIVE"
	TeamDisbanded TeamStatus = "REMOVED"
)

type TeamState struct {
	Status TeamStatus `json:"status"`
	Name   string     `json:"name"`
}

var TeamEntity = entity.Define(
	"Team",
	func() TeamState { return TeamState{} },
	TeamCriteria,
	entity.On(TeamCreatedEventType, func(s TeamState, e TeamCreated) TeamState {
		s.Status = TeamActive
		s.Name = e.TeamName
		return s
	}),
	entity.On(TeamRemovedEventType, func(s TeamState, _ TeamRemoved) TeamState {
		s.Status = TeamDisbanded
		return s
	}),
).WithIDParser(ParseTeamID)

func TeamCriteria(id TeamID) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(TeamCreatedEventType, TeamRemovedEventType).
		AndAllTagsOf(eventstore.T(TagTeam, string(id))).
		Finalize()
}
