package createrace

import (
	"fmt"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

var Handler = command.Handler[Command, core.RaceID, core.RaceState]{
	Entity: core.RaceEntity,
	Target: func(c Command) core.RaceID { return core.RaceID(c.RaceID) },
	Decide: Decide,
}

// Decide creates a race once. A cancelled race id is not reused.
func Decide(c Command, s core.RaceState) command.Decision {
	if s.Exists() {
		return command.Reject(core.Failed(fmt.Sprintf("Race with id %s already exists", c.RaceID)))
	}

	return command.Accept(
		core.Succeeded("Race created successfully"),
		core.RaceCreated{
			RaceID:                 c.RaceID,
			ParticipatingDriverIDs: c.ParticipatingDriverIDs,
			RaceDate:               c.RaceDate,
			TrackName:              c.TrackName,
		},
	)
}
