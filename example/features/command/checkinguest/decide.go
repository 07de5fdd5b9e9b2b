package checkinguest

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

func Decide(c Command, s core.StayState) command.Decision {
	if s.BookingClosed(c.BookingID) {
		return command.Reject(core.Failed("Booking is already checked out"))
	}

	if bookingID, ok := s.ActiveBookingOfGuest(c.GuestID); ok {
		if bookingID == c.BookingID {
			return command.Reject(core.Failed("Guest is already checked in"))
		}
		return command.Reject(core.Failed("Guest is checked in under another booking"))
	}

	if _, ok := s.ActiveBookingOfContainer(c.ContainerID); ok {
		return command.Reject(core.Failed("Container is occupied"))
	}

	return command.Accept(
		core.SucceededWithID("Guest checked in", c.BookingID),
		core.GuestCheckedIn{BookingID: c.BookingID, GuestID: c.GuestID, ContainerID: c.ContainerID},
	)
}
