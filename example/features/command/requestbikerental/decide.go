package requestbikerental

import (
	"errors"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

var (
	ErrBikeNotFound = errors.New("bike does not exist")
	ErrBikeRemoved  = errors.New("bike has been removed from the fleet")
)

// NewHandler binds Decide to the rental entity, rental ids come from ids.
func NewHandler(ids command.IDGenerator) command.Handler[Command, core.RentalTarget, core.RentalState] {
	return command.Handler[Command, core.RentalTarget, core.RentalState]{
		Entity: core.RentalEntity,
		Target: func(c Command) core.RentalTarget { return core.RentalTarget{UserID: c.UserID, BikeID: c.BikeID} },
		Decide: func(c Command, s core.RentalState) command.Decision {
			return Decide(c, s, ids.NewID)
		},
	}
}

// Decide requests a rental of a free bike.
//
//	ERROR: the bike does not exist or was removed from the fleet
//	REJECT: "Bike is already reserved"
//	REJECT: "User already has an active rental"
func Decide(c Command, s core.RentalState, newRentalID func() string) command.Decision {
	switch s.BikeStatus(c.BikeID) {
	case "":
		return command.Fail(ErrBikeNotFound)
	case core.BikeRetired:
		return command.Fail(ErrBikeRemoved)
	}

	if _, reserved := s.ActiveRentalOfBike(c.BikeID); reserved {
		return command.Reject(core.Failed("Bike is already reserved"))
	}

	if _, renting := s.ActiveRentalOfUser(c.UserID); renting {
		return command.Reject(core.Failed("User already has an active rental"))
	}

	rentalID := newRentalID()

	return command.Accept(
		core.SucceededWithID("Bike rental requested", rentalID),
		core.BikeRentalRequested{RentalID: rentalID, BikeID: c.BikeID, UserID: c.UserID},
	)
}
