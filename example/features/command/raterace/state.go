package raterace

import (
	"github.com/dcbkit/dcb-runtime-go/entity"
	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

type state struct {
	Cancelled bool           `json:"cancelled"`
	Ratings   map[string]int `json:"ratings"` // latest rating by user
}

func initialState() state {
	return state{Ratings: map[string]int{}}
}

// Entity is the rating view of one race. Ratings are snapshotted every 100 events.
var Entity = entity.Define(
	"RaceRating",
	initialState,
	BuildEventFilter,
	entity.On(core.RaceCancelledEventType, func(s state, _ core.RaceCancelled) state {
		s.Cancelled = true
		return s
	}),
	entity.On(core.RaceRatedEventType, func(s state, e core.RaceRated) state {
		if s.Ratings == nil {
			s.Ratings = map[string]int{}
		}
		s.Ratings[e.UserID] = e.Rating
		return s
	}),
).WithIDParser(core.ParseRaceID).WithSnapshots(100, entity.JSONCodec[state]())

// BuildEventFilter selects the ratings and the cancellation of the race.
func BuildEventFilter(raceID core.RaceID) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.RaceRatedEventType, core.RaceCancelledEventType).
		AndAllTagsOf(eventstore.T(core.TagRace, string(raceID))).
		Finalize()
}
