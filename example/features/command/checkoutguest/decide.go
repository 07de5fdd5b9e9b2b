package checkoutguest

import (
	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

var Handler = command.Handler[Command, core.StayTarget, core.StayState]{
	Entity: core.StayEntity,
	Target: func(c Command) core.StayTarget {
		return core.StayTarget{BookingID: c.BookingID, GuestID: c.GuestID, ContainerID: c.ContainerID}
	},
	Decide: Decide,
}

// Decide checks the guest out only if the booking is the active stay of both the guest and the container.
func Decide(c Command, s core.StayState) command.Decision {
	target := core.StayTarget{BookingID: c.BookingID, GuestID: c.GuestID, ContainerID: c.ContainerID}
	if !s.CheckedIn(target) {
		return command.Reject(core.Failed("Guest is not checked in"))
	}

	return command.Accept(
		core.SucceededWithID("Guest checked out", c.BookingID),
		core.GuestCheckedOut{BookingID: c.BookingID, GuestID: c.GuestID, ContainerID: c.ContainerID},
	)
}
