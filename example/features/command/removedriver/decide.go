package removedriver

import (
	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

var Handler = command.Handler[Command, core.DriverID, core.DriverState]{
	Entity: core.DriverEntity,
	Target: func(c Command) core.DriverID { return core.DriverID(c.DriverID) },
	Decide: Decide,
}

// Decide removes an active driver. Removing a driver that is not active is rejected with
// "Driver does not exist". The removal keeps the team tag, so the team roster sees it.
func Decide(c Command, s core.DriverState) command.Decision {
	if !s.IsActive() {
		return command.Reject(core.Failed("Driver does not exist"))
	}

	return command.Accept(
		core.Succeeded("Driver removed successfully"),
		core.DriverRemoved{DriverID: c.DriverID, TeamID: s.TeamID},
	)
}
