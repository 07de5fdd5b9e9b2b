package teamroster

import (
	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

// DriverInfo is one active driver of the team.
type DriverInfo struct {
	DriverID   string `json:"driverId"`
	DriverName string `json:"driverName"`
}

// TeamRoster is the projected roster. Drivers are sorted by name, then by id.
type TeamRoster struct {
	TeamID         string                           `json:"teamId"`
	TeamName       string                           `json:"teamName"`
	Status         core.TeamStatus                  `json:"status"`
	Drivers        []DriverInfo                     `json:"drivers"`
	Count          int                              `json:"count"`
	SequenceNumber eventstore.MaxSequenceNumberUint `json:"sequenceNumber"`
}
