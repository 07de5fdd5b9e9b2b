package createteam

import (
	"fmt"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

var Handler = command.Handler[Command, core.TeamID, core.TeamState]{
	Entity: core.TeamEntity,
	Target: func(c Command) core.TeamID { return core.TeamID(c.TeamID) },
	Decide: Decide,
}

// Decide creates a team unless an active team with the same id exists.
func Decide(c Command, s core.TeamState) command.Decision {
	if s.Status == core.TeamActive {
		return command.Reject(core.Failed(fmt.Sprintf("Team with ID %s already exists and is active", c.TeamID)))
	}

	return command.Accept(
		core.Succeeded("Team created successfully"),
		core.TeamCreated{TeamID: c.TeamID, TeamName: c.TeamName},
	)
}
