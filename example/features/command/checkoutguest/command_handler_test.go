package checkoutguest_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/eventstore/memengine"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/checkinguest"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/checkoutguest"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

type testEnvironment struct {
	ctx        context.Context
	log        *memengine.EventStore
	dispatcher *command.Dispatcher
}

func setupTestEnvironment(t *testing.T) testEnvironment {
	t.Helper()

	log, err := memengine.NewEventStore()
	require.NoError(t, err)

	dispatcher, err := command.NewDispatcher(log, command.WithRetryOptions(command.WithBaseDelay(0)))
	require.NoError(t, err)

	return testEnvironment{ctx: context.Background(), log: log, dispatcher: dispatcher}
}

func (env testEnvironment) checkIn(t *testing.T, bookingID, guestID, containerID string) command.Result {
	t.Helper()

	result, err := command.Dispatch(env.ctx, env.dispatcher, checkinguest.Handler, checkinguest.BuildCommand(bookingID, guestID, containerID))
	require.NoError(t, err)

	return result
}

func Test_CommandHandler_ChecksOutCheckedInGuest(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	require.Equal(t, command.Accepted, env.checkIn(t, "bk1", "g1", "c1").Outcome)

	// act
	result, err := command.Dispatch(env.ctx, env.dispatcher, checkoutguest.Handler, checkoutguest.BuildCommand("bk1", "g1", "c1"))

	// assert
	require.NoError(t, err)
	assert.Equal(t, command.Accepted, result.Outcome)
	assert.Equal(t, core.SucceededWithID("Guest checked out", "bk1"), result.Value)
	assert.Equal(t, uint(1), result.Version)
}

func Test_CommandHandler_RejectsSecondCheckOut(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	env.checkIn(t, "bk1", "g1", "c1")
	_, err := command.Dispatch(env.ctx, env.dispatcher, checkoutguest.Handler, checkoutguest.BuildCommand("bk1", "g1", "c1"))
	require.NoError(t, err)

	// act
	result, err := command.Dispatch(env.ctx, env.dispatcher, checkoutguest.Handler, checkoutguest.BuildCommand("bk1", "g1", "c1"))

	// assert
	require.NoError(t, err)
	assert.Equal(t, command.Rejected, result.Outcome)
	assert.Equal(t, core.Failed("Guest is not checked in"), result.Value)
}

func Test_CommandHandler_CheckOutFreesContainerForNextGuest(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	env.checkIn(t, "bk1", "g1", "c1")
	require.Equal(t, command.Rejected, env.checkIn(t, "bk2", "g2", "c1").Outcome)
	_, err := command.Dispatch(env.ctx, env.dispatcher, checkoutguest.Handler, checkoutguest.BuildCommand("bk1", "g1", "c1"))
	require.NoError(t, err)

	// act
	result := env.checkIn(t, "bk2", "g2", "c1")

	// assert
	assert.Equal(t, command.Accepted, result.Outcome)
	assert.Equal(t, core.SucceededWithID("Guest checked in", "bk2"), result.Value)
}

func Test_CommandHandler_ConcurrentCheckInsIntoOneContainer_OnlyOneWins(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	guests := []string{"g1", "g2", "g3", "g4"}
	results := make([]command.Result, len(guests))
	errs := make([]error, len(guests))

	// act
	var wg sync.WaitGroup
	for i, guestID := range guests {
		wg.Add(1)
		go func(i int, guestID string) {
			defer wg.Done()
			results[i], errs[i] = command.Dispatch(
				env.ctx, env.dispatcher, checkinguest.Handler, checkinguest.BuildCommand("bk-"+guestID, guestID, "c1"),
			)
		}(i, guestID)
	}
	wg.Wait()

	// assert
	accepted := 0
	for i := range guests {
		require.NoError(t, errs[i])
		if results[i].Outcome == command.Accepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)

	events, _, err := env.log.Query(env.ctx, core.StayCriteria(core.StayTarget{BookingID: "bk-g1", GuestID: "g1", ContainerID: "c1"}))
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
