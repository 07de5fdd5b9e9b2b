package returnbike

import (
	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

var Handler = command.Handler[Command, core.RentalTarget, core.RentalState]{
	Entity: core.RentalEntity,
	Target: func(c Command) core.RentalTarget { return core.RentalTarget{UserID: c.UserID, BikeID: c.BikeID} },
	Decide: Decide,
}

func Decide(c Command, s core.RentalState) command.Decision {
	bikeRental, bikeRented := s.ActiveRentalOfBike(c.BikeID)
	userRental, userRenting := s.ActiveRentalOfUser(c.UserID)

	if !bikeRented || !userRenting || bikeRental != userRental {
		return command.Reject(core.Failed("No active rental of this bike by this user"))
	}

	return command.Accept(
		core.SucceededWithID("Bike returned", bikeRental),
		core.BikeReturned{RentalID: bikeRental, BikeID: c.BikeID, UserID: c.UserID},
	)
}
