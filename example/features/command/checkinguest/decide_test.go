package checkinguest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/checkinguest"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

func Test_Decide_ChecksInIntoFreeContainer(t *testing.T) {
	decision := checkinguest.Decide(checkinguest.BuildCommand("bk1", "g1", "c1"), core.NewStayState())

	assert.Equal(t, command.Accepted, decision.Outcome())
	assert.Equal(t, core.SucceededWithID("Guest checked in", "bk1"), decision.Result())
	assert.Equal(t, []command.Event{core.GuestCheckedIn{BookingID: "bk1", GuestID: "g1", ContainerID: "c1"}}, decision.Events())
}

func Test_Decide_Rejects(t *testing.T) {
	occupied := core.NewStayState()
	occupied.ActiveBookingByContainer["c1"] = "bk0"

	guestIn := core.NewStayState()
	guestIn.ActiveBookingByGuest["g1"] = "bk0"

	sameBooking := core.NewStayState()
	sameBooking.ActiveBookingByGuest["g1"] = "bk1"
	sameBooking.ActiveBookingByContainer["c1"] = "bk1"

	closed := core.NewStayState()
	closed.ClosedBookings["bk1"] = true

	testCases := []struct {
		description string
		state       core.StayState
		message     string
	}{
		{description: "occupied container", state: occupied, message: "Container is occupied"},
		{description: "guest in another booking", state: guestIn, message: "Guest is checked in under another booking"},
		{description: "repeated check in", state: sameBooking, message: "Guest is already checked in"},
		{description: "checked out booking", state: closed, message: "Booking is already checked out"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			decision := checkinguest.Decide(checkinguest.BuildCommand("bk1", "g1", "c1"), tc.state)

			assert.Equal(t, command.Rejected, decision.Outcome())
			assert.Equal(t, core.Failed(tc.message), decision.Result())
			assert.Empty(t, decision.Events())
		})
	}
}
