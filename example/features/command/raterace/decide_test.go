package raterace

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

func Test_Decide_Accept_ForRaceWithRatings(t *testing.T) {
	s := initialState()
	s.Ratings["u0"] = 2

	decision := Decide(BuildCommand("r1", "u1", 4, "great"), s)

	assert.Equal(t, command.Accepted, decision.Outcome())
	assert.Equal(t, []command.Event{core.RaceRated{RaceID: "r1", UserID: "u1", Rating: 4, Comment: "great"}}, decision.Events())
}

func Test_Decide_Accept_ForRaceWithoutEvents(t *testing.T) {
	decision := Decide(BuildCommand("r1", "u1", 4, ""), initialState())

	assert.Equal(t, command.Accepted, decision.Outcome())
	assert.Equal(t, []command.Event{core.RaceRated{RaceID: "r1", UserID: "u1", Rating: 4}}, decision.Events())
}

func Test_Decide_Fail_ForCancelledRace(t *testing.T) {
	s := initialState()
	s.Cancelled = true

	decision := Decide(BuildCommand("r1", "u1", 4, ""), s)

	assert.Equal(t, command.Failed, decision.Outcome())
	assert.ErrorIs(t, decision.Err(), ErrCannotRateCancelledRace)
}
