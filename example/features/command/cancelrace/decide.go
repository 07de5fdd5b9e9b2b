package cancelrace

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

// Decide cancels a scheduled race.
//
//	REJECT: "Race with id X does not exist"
//	REJECT: "Race with id X is already cancelled"
func Decide(c Command, s core.RaceState) command.Decision {
	switch s.Status {
	case "":
		return command.Reject(core.Failed(fmt.Sprintf("Race with id %s does not exist", c.RaceID)))
	case core.RaceCanceled:
		return command.Reject(core.Failed(fmt.Sprintf("Race with id %s is already cancelled", c.RaceID)))
	}

	return command.Accept(core.Succeeded("Race cancelled successfully"), core.RaceCancelled{RaceID: c.RaceID})
}
