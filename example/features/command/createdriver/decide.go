package createdriver

import (
	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

const (
	messageCreated       = "Driver created successfully"
	messageAlreadyExists = "Driver already exists"
)

// Handler binds Decide to the driver entity.
var Handler = command.Handler[Command, core.DriverID, core.DriverState]{
	Entity: core.DriverEntity,
	Target: func(c Command) core.DriverID { return core.DriverID(c.DriverID) },
	Decide: Decide,
}

// Decide implements the business rules of creating a driver.
//
//	GIVEN: a driver that does not exist or was removed
//	WHEN: CreateDriver is received
//	THEN: DriverCreated is appended
//	REJECT: "Driver already exists" if the driver is active
func Decide(c Command, s core.DriverState) command.Decision {
	if s.IsActive() {
		return command.Reject(core.Failed(messageAlreadyExists))
	}

	return command.Accept(
		core.Succeeded(messageCreated),
		core.DriverCreated{TeamID: c.TeamID, DriverID: c.DriverID, DriverName: c.DriverName},
	)
}
