package ratedriverperformance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

func Test_Decide(t *testing.T) {
	testCases := []struct {
		name    string
		rating  int
		state   state
		outcome command.Outcome
		result  core.Result
	}{
		{"first rating", 7, state{}, command.Accepted, core.Succeeded("Driver performance rated successfully")},
		{"lowest rating", 1, state{}, command.Accepted, core.Succeeded("Driver performance rated successfully")},
		{"highest rating", 10, state{}, command.Accepted, core.Succeeded("Driver performance rated successfully")},
		{"too low", 0, state{}, command.Rejected, core.Failed("Rating must be between 1 and 10")},
		{"too high", 11, state{}, command.Rejected, core.Failed("Rating must be between 1 and 10")},
		{"rated before", 7, state{Rated: true, Rating: 3}, command.Rejected, core.Failed("You have already rated this driver for this race")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Decide(BuildCommand("u1", "d1", "r1", tc.rating), tc.state)

			assert.Equal(t, tc.outcome, decision.Outcome())
			assert.Equal(t, tc.result, decision.Result())
		})
	}
}

func Test_Target_RoundTripsThroughTheIdentityKey(t *testing.T) {
	target := Target{UserID: "u1", DriverID: "d1", RaceID: "r1"}

	parsed, err := ParseTarget(target.IdentityKey())

	require.NoError(t, err)
	assert.Equal(t, target, parsed)
}

func Test_BuildEventFilter_RequiresAllThreeTags(t *testing.T) {
	filter := BuildEventFilter(Target{UserID: "u1", DriverID: "d1", RaceID: "r1"})

	require.Len(t, filter.Items(), 1)
	assert.Len(t, filter.Items()[0].Tags(), 3)
	assert.Equal(t, []string{core.DriverPerformanceRatedEventType}, filter.Items()[0].EventTypes())
}
