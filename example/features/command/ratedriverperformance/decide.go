package ratedriverperformance

import (
	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

const (
	minRating = 1
	maxRating = 10
)

var Handler = command.Handler[Command, Target, state]{
	Entity: Entity,
	Target: func(c Command) Target { return Target{UserID: c.UserID, DriverID: c.DriverID, RaceID: c.RaceID} },
	Decide: Decide,
}

// Decide appends DriverPerformanceRated for a first rating within 1 to 10.
//
//	REJECT: "You have already rated this driver for this race"
//	REJECT: "Rating must be between 1 and 10"
func Decide(c Command, s state) command.Decision {
	if s.Rated {
		return command.Reject(core.Failed("You have already rated this driver for this race"))
	}

	if c.Rating < minRating || c.Rating > maxRating {
		return command.Reject(core.Failed("Rating must be between 1 and 10"))
	}

	return command.Accept(
		core.Succeeded("Driver performance rated successfully"),
		core.DriverPerformanceRated{UserID: c.UserID, DriverID: c.DriverID, RaceID: c.RaceID, Rating: c.Rating},
	)
}
