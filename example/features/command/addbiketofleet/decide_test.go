package addbiketofleet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/addbiketofleet"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

func Test_Decide(t *testing.T) {
	c := addbiketofleet.BuildCommand("b1", "Central Station", "city")

	assert.Equal(t, command.Accepted, addbiketofleet.Decide(c, core.FleetState{}).Outcome())
	assert.Equal(t, command.Accepted, addbiketofleet.Decide(c, core.FleetState{Status: core.BikeRetired}).Outcome())

	rejected := addbiketofleet.Decide(c, core.FleetState{Status: core.BikeInFleet})
	assert.Equal(t, command.Rejected, rejected.Outcome())
	assert.Equal(t, core.Failed("Bike already in fleet"), rejected.Result())
}
