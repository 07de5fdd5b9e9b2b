package teamroster

import (
	"cmp"
	"slices"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

// Project folds the team's history into its roster. With a base roster only the newer events are applied.
//
//	INCLUDES: drivers created in the team and not removed since
//	EXCLUDES: removed drivers, and every driver once the team is removed
func Project(history []command.Event, q Query, maxSequence eventstore.MaxSequenceNumberUint, base ...TeamRoster) TeamRoster {
	roster := TeamRoster{TeamID: q.TeamID}
	drivers := make(map[string]DriverInfo)

	if len(base) > 0 {
		roster = base[0]
		for _, d := range base[0].Drivers {
			drivers[d.DriverID] = d
		}
	}

	for _, event := range history {
		switch e := event.(type) {
		case core.TeamCreated:
			roster.TeamName = e.TeamName
			roster.Status = core.TeamActive

		case core.TeamRemoved:
			roster.Status = core.TeamDisbanded
			clear(drivers)

		case core.DriverCreated:
			drivers[e.DriverID] = DriverInfo{DriverID: e.DriverID, DriverName: e.DriverName}

		case core.DriverRemoved:
			delete(drivers, e.DriverID)
		}
	}

	roster.Drivers = make([]DriverInfo, 0, len(drivers))
	for _, d := range drivers {
		roster.Drivers = append(roster.Drivers, d)
	}
	slices.SortFunc(roster.Drivers, func(a, b DriverInfo) int {
		return cmp.Or(cmp.Compare(a.DriverName, b.DriverName), cmp.Compare(a.DriverID, b.DriverID))
	})

	roster.Count = len(roster.Drivers)
	roster.SequenceNumber = maxSequence

	return roster
}

// BuildEventFilter selects the team lifecycle and the driver membership events of the team.
func BuildEventFilter(teamID string) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.TeamCreatedEventType,
			core.TeamRemovedEventType,
			core.DriverCreatedEventType,
			core.DriverRemovedEventType,
		).
		AndAllTagsOf(eventstore.T(core.TagTeam, teamID)).
		Finalize()
}
