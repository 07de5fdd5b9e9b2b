package expireverification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/expireverification"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

func Test_Decide_MarksPendingAccountsUnverified(t *testing.T) {
	decision := expireverification.Decide(expireverification.BuildCommand("a@b.c"), core.AccountState{Status: core.AccountPending})

	assert.Equal(t, command.Accepted, decision.Outcome())
	assert.Equal(t, []command.Event{core.AccountMarkedUnverified{Email: "a@b.c"}}, decision.Events())
}

func Test_Decide_LeavesOtherAccountsAlone(t *testing.T) {
	for _, status := range []core.AccountStatus{"", core.AccountVerified, core.AccountUnverified} {
		decision := expireverification.Decide(expireverification.BuildCommand("a@b.c"), core.AccountState{Status: status})

		assert.Equal(t, command.Unchanged, decision.Outcome(), "status %q", status)
	}
}
