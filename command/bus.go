package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dcbkit/dcb-runtime-go/entity"
)

var (
	ErrUnknownCommandType     = errors.New("no handler registered for command type")
	ErrUnexpectedCommandValue = errors.New("command value does not match the registered handler")
	ErrNilCommand             = errors.New("command must not be nil")
)

type dispatchFunc func(ctx context.Context, cmd Command) (Result, error)

// Bus routes commands by CommandType to their registered handlers and runs them on one Dispatcher.
type Bus struct {
	dispatcher *Dispatcher
	mu         sync.RWMutex
	handlers   map[string]dispatchFunc
}

// NewBus creates an empty Bus that runs its commands on dispatcher.
func NewBus(dispatcher *Dispatcher) *Bus {
	return &Bus{
		dispatcher: dispatcher,
		handlers:   make(map[string]dispatchFunc),
	}
}

// Register binds h to the CommandType of C. It panics if that type is already registered.
// C must be a value type whose CommandType does not depend on its fields.
func Register[C Command, I entity.Identifier, S any](b *Bus, h Handler[C, I, S]) {
	var zero C
	commandType := zero.CommandType()

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.handlers[commandType]; exists {
		panic(fmt.Sprintf("command: handler for %q registered twice", commandType))
	}

	b.handlers[commandType] = func(ctx context.Context, cmd Command) (Result, error) {
		typed, ok := cmd.(C)
		if !ok {
			return Result{}, fmt.Errorf("%w: %s got %T", ErrUnexpectedCommandValue, commandType, cmd)
		}

		return Dispatch(ctx, b.dispatcher, h, typed)
	}
}

// Dispatch runs cmd through the handler registered for its CommandType.
func (b *Bus) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	if cmd == nil {
		return Result{}, ErrNilCommand
	}

	b.mu.RLock()
	handle, ok := b.handlers[cmd.CommandType()]
	b.mu.RUnlock()

	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownCommandType, cmd.CommandType())
	}

	return handle(ctx, cmd)
}

// CommandTypes returns the registered command types, sorted.
func (b *Bus) CommandTypes() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	types := make([]string, 0, len(b.handlers))
	for commandType := range b.handlers {
		types = append(types, commandType)
	}
	sort.Strings(types)

	return types
}

// Dispatcher returns the Dispatcher the Bus runs on.
func (b *Bus) Dispatcher() *Dispatcher {
	return b.dispatcher
}
