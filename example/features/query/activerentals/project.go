package activerentals

import (
	"cmp"
	"slices"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
	"github.com/dcbkit/dcb-runtime-go/example/shared/shell"
)

// Project folds the rental history of the whole fleet into the open rentals.
//
//	INCLUDES: rentals that were requested and not returned
//	EXCLUDES: returned rentals
func Project(history shell.EventEnvelopes, maxSequence eventstore.MaxSequenceNumberUint) ActiveRentals {
	open := make(map[string]RentalInfo)

	for _, envelope := range history {
		switch e := envelope.DomainEvent.(type) {
		case core.BikeRentalRequested:
			open[e.RentalID] = RentalInfo{
				RentalID: e.RentalID,
				BikeID:   e.BikeID,
				UserID:   e.UserID,
				RentedAt: envelope.OccurredAt,
			}

		case core.BikeReturned:
			delete(open, e.RentalID)
		}
	}

	rentals := make([]RentalInfo, 0, len(open))
	for _, info := range open {
		rentals = append(rentals, info)
	}

	slices.SortFunc(rentals, func(a, b RentalInfo) int {
		return cmp.Or(a.RentedAt.Compare(b.RentedAt), cmp.Compare(a.RentalID, b.RentalID))
	})

	return ActiveRentals{
		Rentals:        rentals,
		Count:          len(rentals),
		SequenceNumber: maxSequence,
	}
}

// BuildEventFilter selects the rental requests and returns of all bikes.
func BuildEventFilter() eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.BikeRentalRequestedEventType,
			core.BikeReturnedEventType,
		).
		Finalize()
}
