package createaccount

import (
	"errors"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

var ErrEmailAlreadyRegistered = errors.New("an account with this email address already exists")

// NewHandler binds Decide to the account entity, tokens come from ids.
func NewHandler(ids command.IDGenerator) command.Handler[Command, core.Email, core.AccountState] {
	return command.Handler[Command, core.Email, core.AccountState]{
		Entity: core.AccountEntity,
		Target: func(c Command) core.Email { return core.Email(c.Email) },
		Decide: func(c Command, s core.AccountState) command.Decision {
			return Decide(c, s, ids.NewID)
		},
	}
}

// Decide creates a pending account. newToken is only called when the account is created.
// An email that is already registered is an error.
func Decide(c Command, s core.AccountState, newToken func() string) command.Decision {
	if s.Exists() {
		return command.Fail(ErrEmailAlreadyRegistered)
	}

	return command.Accept(
		core.Succeeded("Account created successfully. Please check your email for verification."),
		core.AccountCreated{Email: c.Email, VerificationToken: newToken()},
	)
}
