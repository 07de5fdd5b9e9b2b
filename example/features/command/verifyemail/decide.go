package verifyemail

import (
	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

var Handler = command.Handler[Command, core.Email, core.AccountState]{
	Entity: core.AccountEntity,
	Target: func(c Command) core.Email { return core.Email(c.Email) },
	Decide: Decide,
}

// Decide verifies a pending account with the matching token.
//
//	NOOP: "Email is already verified"
//	REJECT: "Invalid verification token" for unknown accounts and wrong tokens
//	REJECT: "Verification token has expired" once the account was marked unverified
func Decide(c Command, s core.AccountState) command.Decision {
	switch {
	case s.Status == core.AccountVerified:
		return command.NoOp(core.Succeeded("Email is already verified"))
	case !s.Exists() || s.VerificationToken != c.VerificationToken:
		return command.Reject(core.Failed("Invalid verification token"))
	case s.Status == core.AccountUnverified:
		return command.Reject(core.Failed("Verification token has expired"))
	}

	return command.Accept(core.Succeeded("Email verified successfully"), core.EmailVerified{Email: c.Email})
}
