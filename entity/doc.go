// Package entity turns slices of the event log into entity state.
//
// A Definition declares one kind of entity: its initial state, one transition per event type
// (registered explicitly with On), and the stream criteria that select its events for an identifier.
// The Loader folds the selected events in log order into the current state and reports the stream
// version the state is based on. Snapshots are an optional cache on top of that.
//
//	var driverKind = entity.Define(
//		"Driver",
//		func() driverState { return driverState{} },
//		func(id entity.ID) eventstore.Filter { ... },
//		entity.On(core.DriverCreatedEventType, func(s driverState, e core.DriverCreated) driverState { ... }),
//		entity.On(core.DriverRemovedEventType, func(s driverState, e core.DriverRemoved) driverState { ... }),
//	)
//
//	loaded, err := entity.Load(ctx, loader, driverKind, entity.ID("d1"))
package entity
