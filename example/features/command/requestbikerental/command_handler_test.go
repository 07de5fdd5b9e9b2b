package requestbikerental_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/eventstore/memengine"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/addbiketofleet"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/requestbikerental"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/returnbike"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

type testEnvironment struct {
	ctx        context.Context
	log        *memengine.EventStore
	dispatcher *command.Dispatcher
	request    command.Handler[requestbikerental.Command, core.RentalTarget, core.RentalState]
}

func setupTestEnvironment(t *testing.T, bikeIDs ...string) testEnvironment {
	t.Helper()

	log, err := memengine.NewEventStore()
	require.NoError(t, err)

	dispatcher, err := command.NewDispatcher(log, command.WithRetryOptions(command.WithBaseDelay(0)))
	require.NoError(t, err)

	env := testEnvironment{
		ctx:        context.Background(),
		log:        log,
		dispatcher: dispatcher,
		request:    requestbikerental.NewHandler(command.NewSequenceGenerator("rental")),
	}

	for _, bikeID := range bikeIDs {
		_, err = command.Dispatch(env.ctx, dispatcher, addbiketofleet.Handler, addbiketofleet.BuildCommand(bikeID, "Depot", "city"))
		require.NoError(t, err)
	}

	return env
}

func Test_CommandHandler_RentsFreeBike(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t, "b1")

	// act
	result, err := command.Dispatch(env.ctx, env.dispatcher, env.request, requestbikerental.BuildCommand("u1", "b1"))

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.SucceededWithID("Bike rental requested", "rental-1"), result.Value)
	assert.Equal(t, 1, result.AppendedEvents)
}

func Test_CommandHandler_RejectsSecondRentalOfBikeAndOfUser(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t, "b1", "b2")
	_, err := command.Dispatch(env.ctx, env.dispatcher, env.request, requestbikerental.BuildCommand("u1", "b1"))
	require.NoError(t, err)

	// act
	otherUser, err := command.Dispatch(env.ctx, env.dispatcher, env.request, requestbikerental.BuildCommand("u2", "b1"))
	require.NoError(t, err)
	otherBike, err := command.Dispatch(env.ctx, env.dispatcher, env.request, requestbikerental.BuildCommand("u1", "b2"))
	require.NoError(t, err)

	// assert
	assert.Equal(t, core.Failed("Bike is already reserved"), otherUser.Value)
	assert.Equal(t, core.Failed("User already has an active rental"), otherBike.Value)
}

func Test_CommandHandler_BikeCanBeRentedAgainAfterReturn(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t, "b1")
	_, err := command.Dispatch(env.ctx, env.dispatcher, env.request, requestbikerental.BuildCommand("u1", "b1"))
	require.NoError(t, err)
	returned, err := command.Dispatch(env.ctx, env.dispatcher, returnbike.Handler, returnbike.BuildCommand("u1", "b1"))
	require.NoError(t, err)
	require.Equal(t, command.Accepted, returned.Outcome)

	// act
	result, err := command.Dispatch(env.ctx, env.dispatcher, env.request, requestbikerental.BuildCommand("u2", "b1"))

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.SucceededWithID("Bike rental requested", "rental-2"), result.Value)
}

func Test_CommandHandler_ConcurrentRequestsForOneBike_OnlyOneWins(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t, "b1")
	users := []string{"u1", "u2", "u3", "u4"}
	results := make([]command.Result, len(users))
	errs := make([]error, len(users))

	// act
	var wg sync.WaitGroup
	for i, userID := range users {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			results[i], errs[i] = command.Dispatch(env.ctx, env.dispatcher, env.request, requestbikerental.BuildCommand(userID, "b1"))
		}(i, userID)
	}
	wg.Wait()

	// assert
	accepted := 0
	for i := range users {
		require.NoError(t, errs[i])
		if results[i].Outcome == command.Accepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
}
