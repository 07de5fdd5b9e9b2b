package entity

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

// Kind is the type-erased view of a Definition.
type Kind interface {
	Kind() string
	Resolve(id Identifier) eventstore.Filter
	ParseIdentifier(raw string) (Identifier, error)
	LoadState(ctx context.Context, loader *Loader, id Identifier) (any, eventstore.MaxSequenceNumberUint, error)
}

// Registry maps entity kinds to their definitions.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

// NewRegistry creates a Registry holding kinds.
func NewRegistry(kinds ...Kind) *Registry {
	r := &Registry{kinds: make(map[string]Kind)}
	r.Register(kinds...)

	return r
}

// Register adds kinds, registering a kind name twice panics.
func (r *Registry) Register(kinds ...Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range kinds {
		if _, exists := r.kinds[k.Kind()]; exists {
			panic(fmt.Sprintf("entity: kind %s is already registered", k.Kind()))
		}

		r.kinds[k.Kind()] = k
	}
}

// Resolve returns the stream criteria for the entity, an unknown kind panics.
func (r *Registry) Resolve(kind string, id Identifier) eventstore.Filter {
	return r.MustLookup(kind).Resolve(id)
}

// Lookup returns the registered kind.
func (r *Registry) Lookup(kind string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k, ok := r.kinds[kind]

	return k, ok
}

// MustLookup returns the registered kind, an unknown kind panics.
func (r *Registry) MustLookup(kind string) Kind {
	k, ok := r.Lookup(kind)
	if !ok {
		panic(fmt.Sprintf("entity: unknown kind %q", kind))
	}

	return k
}

// Kinds returns the sorted names of all registered kinds.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
