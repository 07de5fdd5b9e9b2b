package ratedriverperformance

import (
	"github.com/dcbkit/dcb-runtime-go/entity"
	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

type state struct {
	Rated  bool `json:"rated"`
	Rating int  `json:"rating"`
}

var Entity = entity.Define(
	"DriverRating",
	func() state { return state{} },
	BuildEventFilter,
	entity.On(core.DriverPerformanceRatedEventType, func(_ state, e core.DriverPerformanceRated) state {
		return state{Rated: true, Rating: e.Rating}
	}),
).WithIDParser(ParseTarget)

func BuildEventFilter(t Target) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.DriverPerformanceRatedEventType).
		AndAllTagsOf(
			eventstore.T(core.TagDriver, t.DriverID),
			eventstore.T(core.TagRace, t.RaceID),
			eventstore.T(core.TagUser, t.UserID),
		).
		Finalize()
}
