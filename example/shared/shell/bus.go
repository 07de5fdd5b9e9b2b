package shell

import (
	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/entity"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/addbiketofleet"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/cancelrace"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/checkinguest"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/checkoutguest"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/createaccount"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/createdriver"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/createrace"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/createteam"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/expireverification"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/ratedriverperformance"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/raterace"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/removebikefromfleet"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/removedriver"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/requestbikerental"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/returnbike"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/verifyemail"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

// NewBus registers every command handler of the example on a bus running on dispatcher.
// Verification tokens and rental ids come from ids.
func NewBus(dispatcher *command.Dispatcher, ids command.IDGenerator) *command.Bus {
	bus := command.NewBus(dispatcher)

	command.Register(bus, createdriver.Handler)
	command.Register(bus, removedriver.Handler)
	command.Register(bus, createteam.Handler)
	command.Register(bus, createrace.Handler)
	command.Register(bus, cancelrace.Handler)
	command.Register(bus, raterace.Handler)
	command.Register(bus, ratedriverperformance.Handler)
	command.Register(bus, createaccount.NewHandler(ids))
	command.Register(bus, verifyemail.Handler)
	command.Register(bus, expireverification.Handler)
	command.Register(bus, addbiketofleet.Handler)
	command.Register(bus, removebikefromfleet.Handler)
	command.Register(bus, requestbikerental.NewHandler(ids))
	command.Register(bus, returnbike.Handler)
	command.Register(bus, checkinguest.Handler)
	command.Register(bus, checkoutguest.Handler)

	return bus
}

// Entities returns every entity kind of the example, including the kinds private to a feature slice.
func Entities() *entity.Registry {
	registry := core.Entities()
	registry.Register(raterace.Entity, ratedriverperformance.Entity)

	return registry
}
