package core

import (
	"github.com/dcbkit/dcb-runtime-go/entity"
)

// Entities returns a registry of the shared entity kinds, feature slices register their own kinds on top.
func Entities() *entity.Registry {
	return entity.NewRegistry(
		DriverEntity,
		TeamEntity,
		RaceEntity,
		AccountEntity,
		FleetEntity,
		RentalEntity,
		StayEntity,
	)
}
