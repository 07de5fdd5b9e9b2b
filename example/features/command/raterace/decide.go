package raterace

import (
	"errors"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

var ErrCannotRateCancelledRace = errors.New("cannot rate a cancelled race")

var Handler = command.Handler[Command, core.RaceID, state]{
	Entity: Entity,
	Target: func(c Command) core.RaceID { return core.RaceID(c.RaceID) },
	Decide: Decide,
}

// Decide appends RaceRated unless the race was cancelled.
// Ratings do not need a prior RaceCreated, the stream only holds ratings and the cancellation.
// A user rating the same race again replaces the earlier rating.
func Decide(c Command, s state) command.Decision {
	if s.Cancelled {
		return command.Fail(ErrCannotRateCancelledRace)
	}

	return command.Accept(
		core.Succeeded("Race rated successfully"),
		core.RaceRated{RaceID: c.RaceID, UserID: c.UserID, Rating: c.Rating, Comment: c.Comment},
	)
}
