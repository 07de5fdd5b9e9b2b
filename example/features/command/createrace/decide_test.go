package createrace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/createrace"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

func Test_Decide_Accept_TagsParticipatingDrivers(t *testing.T) {
	// act
	decision := createrace.Decide(createrace.BuildCommand("r1", "2025-05-04", "Monza", "d1", "d2"), core.RaceState{})

	// assert
	assert.Equal(t, command.Accepted, decision.Outcome())
	events := decision.Events()
	assert.Len(t, events, 1)
	assert.Equal(t, eventstore.NewTags(
		eventstore.T(core.TagDriver, "d1"),
		eventstore.T(core.TagDriver, "d2"),
		eventstore.T(core.TagRace, "r1"),
	), events[0].EventTags())
}

func Test_Decide_Reject_WhenRaceExists(t *testing.T) {
	for _, status := range []core.RaceStatus{core.RaceScheduled, core.RaceCanceled} {
		decision := createrace.Decide(createrace.BuildCommand("r1", "2025-05-04", "Monza"), core.RaceState{Status: status})

		assert.Equal(t, command.Rejected, decision.Outcome())
		assert.Equal(t, core.Failed("Race with id r1 already exists"), decision.Result())
	}
}
