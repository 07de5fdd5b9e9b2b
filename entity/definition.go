package entity

import (
	"context"
	"fmt"
	"slices"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

// Definition declares a kind of entity identified by I with state S.
type Definition[I Identifier, S any] struct {
	kind          string
	initial       func() S
	criteria      func(id I) eventstore.Filter
	transitions   map[string]Transition[S]
	parseID       func(raw string) (I, error)
	snapshotEvery int
	codec         SnapshotCodec[S]
}

// Define creates a Definition. It panics on an empty kind, missing functions, or duplicate transitions,
// these are programmer errors.
func Define[I Identifier, S any](
	kind string,
	initial func() S,
	criteria func(id I) eventstore.Filter,
	transitions ...Transition[S],
) Definition[I, S] {

	if kind == "" {
		panic("entity: kind must not be empty")
	}

	if initial == nil || criteria == nil {
		panic(fmt.Sprintf("entity: %s needs an initial state and criteria", kind))
	}

	table := make(map[string]Transition[S], len(transitions))
	for _, t := range transitions {
		if _, exists := table[t.eventType]; exists {
			panic(fmt.Sprintf("entity: %s has more than one transition for %s", kind, t.eventType))
		}

		table[t.eventType] = t
	}

	return Definition[I, S]{
		kind:        kind,
		initial:     initial,
		criteria:    criteria,
		transitions: table,
	}
}

// WithSnapshots returns a copy that writes a snapshot after every replayed events, using codec.
func (d Definition[I, S]) WithSnapshots(every int, codec SnapshotCodec[S]) Definition[I, S] {
	d.snapshotEvery = every
	d.codec = codec

	return d
}

// WithIDParser returns a copy that can parse identifiers from strings, e.g. for the command line.
func (d Definition[I, S]) WithIDParser(parse func(raw string) (I, error)) Definition[I, S] {
	d.parseID = parse

	return d
}

func (d Definition[I, S]) Kind() string {
	return d.kind
}

// Initial returns a fresh initial state.
func (d Definition[I, S]) Initial() S {
	return d.initial()
}

// Criteria resolves the stream criteria of the entity identified by id.
func (d Definition[I, S]) Criteria(id I) eventstore.Filter {
	return d.criteria(id)
}

// Key returns the identity key, unique across kinds.
func (d Definition[I, S]) Key(id I) string {
	return d.kind + "/" + id.IdentityKey()
}

// EventTypes returns the sorted event types that have a transition.
func (d Definition[I, S]) EventTypes() []string {
	types := make([]string, 0, len(d.transitions))
	for t := range d.transitions {
		types = append(types, t)
	}

	slices.Sort(types)

	return types
}

// SnapshotsEnabled reports whether the definition has a snapshot policy.
func (d Definition[I, S]) SnapshotsEnabled() bool {
	return d.snapshotEvery > 0 && d.codec.Encode != nil && d.codec.Decode != nil
}

// Evolve applies the transition registered for the event type.
// Events without a transition are skipped, the state is returned unchanged and applied is false.
func (d Definition[I, S]) Evolve(state S, event eventstore.StorableEvent) (next S, applied bool, err error) {
	t, ok := d.transitions[event.EventType]
	if !ok {
		return state, false, nil
	}

	next, err = t.apply(state, event)
	if err != nil {
		return state, false, fmt.Errorf("%s: evolve %s at position %d: %w", d.kind, event.EventType, event.SequenceNumber, err)
	}

	return next, true, nil
}

// Fold evolves state with all events in order.
func (d Definition[I, S]) Fold(state S, events eventstore.StorableEvents) (S, error) {
	for _, event := range events {
		var err error

		state, _, err = d.Evolve(state, event)
		if err != nil {
			return state, err
		}
	}

	return state, nil
}

// Resolve implements Kind for the Registry, it panics if id is not an I.
func (d Definition[I, S]) Resolve(id Identifier) eventstore.Filter {
	typed, ok := id.(I)
	if !ok {
		panic(fmt.Sprintf("entity: %s cannot resolve an identifier of type %T", d.kind, id))
	}

	return d.criteria(typed)
}

// ParseIdentifier implements Kind for the Registry.
func (d Definition[I, S]) ParseIdentifier(raw string) (Identifier, error) {
	if d.parseID == nil {
		return nil, fmt.Errorf("%w: %s has no identifier parser", ErrInvalidIdentifier, d.kind)
	}

	id, err := d.parseID(raw)
	if err != nil {
		return nil, err
	}

	return id, nil
}

// LoadState implements Kind for the Registry.
func (d Definition[I, S]) LoadState(ctx context.Context, loader *Loader, id Identifier) (any, eventstore.MaxSequenceNumberUint, error) {
	typed, ok := id.(I)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s cannot load an identifier of type %T", ErrInvalidIdentifier, d.kind, id)
	}

	loaded, err := Load(ctx, loader, d, typed)
	if err != nil {
		return nil, 0, err
	}

	return loaded.State, loaded.Version, nil
}
