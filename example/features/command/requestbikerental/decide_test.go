package requestbikerental_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/requestbikerental"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

func rentalID() string { return "r1" }

func Test_Decide(t *testing.T) {
	c := requestbikerental.BuildCommand("u1", "b1")

	t.Run("unknown bike", func(t *testing.T) {
		decision := requestbikerental.Decide(c, core.NewRentalState(), rentalID)
		assert.ErrorIs(t, decision.Err(), requestbikerental.ErrBikeNotFound)
	})

	t.Run("removed bike", func(t *testing.T) {
		s := core.NewRentalState()
		s.Bikes["b1"] = core.BikeRetired

		decision := requestbikerental.Decide(c, s, rentalID)
		assert.ErrorIs(t, decision.Err(), requestbikerental.ErrBikeRemoved)
	})

	t.Run("reserved bike", func(t *testing.T) {
		s := core.NewRentalState()
		s.Bikes["b1"] = core.BikeInFleet
		s.ActiveRentalByBike["b1"] = "r0"

		decision := requestbikerental.Decide(c, s, rentalID)
		assert.Equal(t, command.Rejected, decision.Outcome())
		assert.Equal(t, core.Failed("Bike is already reserved"), decision.Result())
	})

	t.Run("user already renting", func(t *testing.T) {
		s := core.NewRentalState()
		s.Bikes["b1"] = core.BikeInFleet
		s.ActiveRentalByUser["u1"] = "r0"

		decision := requestbikerental.Decide(c, s, rentalID)
		assert.Equal(t, command.Rejected, decision.Outcome())
		assert.Equal(t, core.Failed("User already has an active rental"), decision.Result())
	})

	t.Run("free bike", func(t *testing.T) {
		s := core.NewRentalState()
		s.Bikes["b1"] = core.BikeInFleet

		decision := requestbikerental.Decide(c, s, rentalID)
		assert.Equal(t, command.Accepted, decision.Outcome())
		assert.Equal(t, core.SucceededWithID("Bike rental requested", "r1"), decision.Result())
		assert.Equal(t, []command.Event{core.BikeRentalRequested{RentalID: "r1", BikeID: "b1", UserID: "u1"}}, decision.Events())
	})
}
