package expireverification

import (
	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

var Handler = command.Handler[Command, core.Email, core.AccountState]{
	Entity: core.AccountEntity,
	Target: func(c Command) core.Email { return core.Email(c.Email) },
	Decide: Decide,
}

func Decide(c Command, s core.AccountState) command.Decision {
	if s.Status != core.AccountPending {
		return command.NoOp(core.Succeeded("Nothing to expire"))
	}

	return command.Accept(core.Succeeded("Account marked unverified"), core.AccountMarkedUnverified{Email: c.Email})
}
