package command

import (
	"github.com/dcbkit/dcb-runtime-go/entity"
)

// Handler binds the decide function of a command type to the entity kind it targets.
//
// Decide must be pure: it must not read the clock or random sources for decisions that affect
// the business outcome. Handlers that need new identifiers get an IDGenerator injected when they are built.
type Handler[C Command, I entity.Identifier, S any] struct {
	Entity entity.Definition[I, S]
	Target func(cmd C) I
	Decide func(cmd C, state S) Decision
}
