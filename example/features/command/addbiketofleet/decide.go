package addbiketofleet

import (
	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

var Handler = command.Handler[Command, core.BikeID, core.FleetState]{
	Entity: core.FleetEntity,
	Target: func(c Command) core.BikeID { return core.BikeID(c.BikeID) },
	Decide: Decide,
}

// Decide adds a bike that is not in the fleet. A removed bike may be added again.
func Decide(c Command, s core.FleetState) command.Decision {
	if s.Status == core.BikeInFleet {
		return command.Reject(core.Failed("Bike already in fleet"))
	}

	return command.Accept(
		core.SucceededWithID("Bike added to fleet", c.BikeID),
		core.BikeAddedToFleet{BikeID: c.BikeID, Location: c.Location, BikeType: c.BikeType},
	)
}
