package createdriver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/createdriver"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

func Test_Decide_Accept_WhenDriverNeverExisted(t *testing.T) {
	// act
	decision := createdriver.Decide(createdriver.BuildCommand("t1", "d1", "Lewis"), core.DriverState{})

	// assert
	assert.Equal(t, command.Accepted, decision.Outcome())
	assert.Equal(t, core.Result{Success: true, Message: "Driver created successfully"}, decision.Result())
	assert.Equal(t, []command.Event{core.DriverCreated{TeamID: "t1", DriverID: "d1", DriverName: "Lewis"}}, decision.Events())
}

func Test_Decide_Reject_WhenDriverIsActive(t *testing.T) {
	// arrange
	state := core.DriverState{Status: core.DriverActive, TeamID: "t1", Name: "Lewis"}

	// act
	decision := createdriver.Decide(createdriver.BuildCommand("t1", "d1", "Lewis"), state)

	// assert
	assert.Equal(t, command.Rejected, decision.Outcome())
	assert.Equal(t, core.Result{Success: false, Message: "Driver already exists"}, decision.Result())
	assert.Empty(t, decision.Events())
}

func Test_Decide_Accept_WhenDriverWasRemoved(t *testing.T) {
	// arrange
	state := core.DriverState{Status: core.DriverRetired, TeamID: "t1", Name: "Lewis"}

	// act
	decision := createdriver.Decide(createdriver.BuildCommand("t2", "d1", "Lewis"), state)

	// assert
	assert.Equal(t, command.Accepted, decision.Outcome())
}

func Test_Decide_IsDeterministic(t *testing.T) {
	c := createdriver.BuildCommand("t1", "d1", "Lewis")

	assert.Equal(t, createdriver.Decide(c, core.DriverState{}), createdriver.Decide(c, core.DriverState{}))
}
