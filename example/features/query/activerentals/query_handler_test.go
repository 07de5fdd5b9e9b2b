package activerentals_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/eventstore/memengine"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/addbiketofleet"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/requestbikerental"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/returnbike"
	"github.com/dcbkit/dcb-runtime-go/example/features/query/activerentals"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
	"github.com/dcbkit/dcb-runtime-go/example/shared/shell"
)

func Test_QueryHandler_ListsOnlyOpenRentals(t *testing.T) {
	// arrange
	ctx := context.Background()

	log, err := memengine.NewEventStore()
	require.NoError(t, err)

	dispatcher, err := command.NewDispatcher(log)
	require.NoError(t, err)

	bus := shell.NewBus(dispatcher, command.NewSequenceGenerator("rental"))
	for _, c := range []command.Command{
		addbiketofleet.BuildCommand("b1", "Depot", "city"),
		addbiketofleet.BuildCommand("b2", "Depot", "city"),
		requestbikerental.BuildCommand("u1", "b1"),
		requestbikerental.BuildCommand("u2", "b2"),
		returnbike.BuildCommand("u1", "b1"),
	} {
		result, dispatchErr := bus.Dispatch(ctx, c)
		require.NoError(t, dispatchErr)
		require.Equal(t, command.Accepted, result.Outcome, "%s should be accepted", c.CommandType())
	}

	// act
	rentals, err := activerentals.NewQueryHandler(log).Handle(ctx, activerentals.BuildQuery())

	// assert
	require.NoError(t, err)
	require.Equal(t, 1, rentals.Count)
	assert.Equal(t, "rental-2", rentals.Rentals[0].RentalID)
	assert.Equal(t, "b2", rentals.Rentals[0].BikeID)
	assert.Equal(t, "u2", rentals.Rentals[0].UserID)
	assert.False(t, rentals.Rentals[0].RentedAt.IsZero())
	assert.Equal(t, uint(5), rentals.SequenceNumber)
}

func Test_Project_OrdersByRentalTime(t *testing.T) {
	// arrange
	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	history := shell.EventEnvelopes{
		{SequenceNumber: 1, OccurredAt: t0.Add(time.Minute), DomainEvent: core.BikeRentalRequested{RentalID: "r1", BikeID: "b1", UserID: "u1"}},
		{SequenceNumber: 2, OccurredAt: t0, DomainEvent: core.BikeRentalRequested{RentalID: "r2", BikeID: "b2", UserID: "u2"}},
		{SequenceNumber: 3, OccurredAt: t0.Add(2 * time.Minute), DomainEvent: core.BikeRentalRequested{RentalID: "r3", BikeID: "b3", UserID: "u3"}},
		{SequenceNumber: 4, OccurredAt: t0.Add(3 * time.Minute), DomainEvent: core.BikeReturned{RentalID: "r3", BikeID: "b3", UserID: "u3"}},
	}

	// act
	rentals := activerentals.Project(history, 4)

	// assert
	require.Len(t, rentals.Rentals, 2)
	assert.Equal(t, "r2", rentals.Rentals[0].RentalID)
	assert.Equal(t, "r1", rentals.Rentals[1].RentalID)
	assert.Equal(t, 2, rentals.Count)
}
