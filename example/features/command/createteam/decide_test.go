package createteam_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/createteam"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

func Test_Decide(t *testing.T) {
	testCases := []struct {
		name    string
		state   core.TeamState
		outcome command.Outcome
		result  core.Result
	}{
		{
			name:    "new team",
			state:   core.TeamState{},
			outcome: command.Accepted,
			result:  core.Succeeded("Team created successfully"),
		},
		{
			name:    "active team",
			state:   core.TeamState{Status: core.TeamActive, Name: "Red"},
			outcome: command.Rejected,
			result:  core.Failed("Team with ID t1 already exists and is active"),
		},
		{
			name:    "removed team",
			state:   core.TeamState{Status: core.TeamDisbanded, Name: "Red"},
			outcome: command.Accepted,
			result:  core.Succeeded("Team created successfully"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decision := createteam.Decide(createteam.BuildCommand("t1", "Red"), tc.state)

			assert.Equal(t, tc.outcome, decision.Outcome())
			assert.Equal(t, tc.result, decision.Result())
		})
	}
}
