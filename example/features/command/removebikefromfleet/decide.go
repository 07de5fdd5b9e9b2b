package removebikefromfleet

import (
	"errors"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

var ErrBikeNotFound = errors.New("bike with given id does not exist")

var Handler = command.Handler[Command, core.BikeID, core.FleetState]{
	Entity: core.FleetEntity,
	Target: func(c Command) core.BikeID { return core.BikeID(c.BikeID) },
	Decide: Decide,
}

func Decide(c Command, s core.FleetState) command.Decision {
	switch s.Status {
	case "":
		return command.Fail(ErrBikeNotFound)
	case core.BikeRetired:
		return command.Reject(core.Failed("Bike is already removed from fleet"))
	}

	return command.Accept(
		core.Succeeded("Bike removed from fleet"),
		core.BikeRemovedFromFleet{BikeID: c.BikeID, Reason: c.Reason},
	)
}
