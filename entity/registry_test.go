package entity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcbkit/dcb-runtime-go/entity"
	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

type pairID struct {
	Left, Right string
}

func (p pairID) IdentityKey() string {
	return entity.CompositeKey(p.Left, p.Right)
}

func Test_Registry_ResolveIsPure(t *testing.T) {
	// arrange
	registry := entity.NewRegistry(counterKind)

	// act
	first := registry.Resolve("Counter", entity.ID("c1"))
	second := registry.Resolve("Counter", entity.ID("c1"))

	// assert
	assert.Equal(t, first, second)
	assert.Equal(t, counterCriteria("c1"), first)
	assert.Equal(t, []string{"Counter"}, registry.Kinds())
}

func Test_Registry_ProgrammerErrorsPanic(t *testing.T) {
	registry := entity.NewRegistry(counterKind)

	assert.Panics(t, func() { registry.Resolve("Unknown", entity.ID("x")) })
	assert.Panics(t, func() { registry.Resolve("Counter", pairID{Left: "a", Right: "b"}) })
	assert.Panics(t, func() { registry.Register(counterKind) })
}

func Test_Define_RejectsDuplicateTransitions(t *testing.T) {
	assert.Panics(t, func() {
		entity.Define(
			"Broken",
			func() int { return 0 },
			func(entity.ID) eventstore.Filter { return eventstore.BuildEventFilter().MatchingAnyEvent() },
			entity.On("Same", func(s int, _ struct{}) int { return s }),
			entity.On("Same", func(s int, _ struct{}) int { return s + 1 }),
		)
	})
}

func Test_Definition_KeyIsNamespacedByKind(t *testing.T) {
	assert.Equal(t, "Counter/c1", counterKind.Key(entity.ID("c1")))
	assert.Equal(t, []string{counterIncremented, counterOpened}, counterKind.EventTypes())
}

func Test_Registry_LoadsByName(t *testing.T) {
	// arrange
	ctx := context.Background()
	log := givenEventLog(t)
	givenCounterEvents(t, log, "c9", givenEvent(t, counterIncremented, `{"by":9}`, "c9"))
	registry := entity.NewRegistry(counterKind)
	kind := registry.MustLookup("Counter")

	// act
	id, err := kind.ParseIdentifier("c9")
	require.NoError(t, err)
	state, version, err := kind.LoadState(ctx, entity.NewLoader(log), id)

	// assert
	require.NoError(t, err)
	assert.Equal(t, counterState{Total: 9}, state)
	assert.Equal(t, uint(1), version)
}

func Test_SplitCompositeKey(t *testing.T) {
	parts, err := entity.SplitCompositeKey(pairID{Left: "u1", Right: "b1"}.IdentityKey(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "b1"}, parts)

	_, err = entity.SplitCompositeKey("u1", 2)
	assert.ErrorIs(t, err, entity.ErrInvalidIdentifier)

	_, err = entity.ParseID(" ")
	assert.ErrorIs(t, err, entity.ErrInvalidIdentifier)
}

func Test_ValidateIdentifier(t *testing.T) {
	testCases := []struct {
		name    string
		id      entity.Identifier
		wantErr bool
	}{
		{name: "simple", id: entity.ID("d1")},
		{name: "composite", id: pairID{Left: "u1", Right: "b1"}},
		{name: "empty", id: entity.ID(""), wantErr: true},
		{name: "blank", id: entity.ID("  "), wantErr: true},
		{name: "nil", id: nil, wantErr: true},
		{name: "composite with empty left part", id: pairID{Right: "b1"}, wantErr: true},
		{name: "composite with empty right part", id: pairID{Left: "u1"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := entity.ValidateIdentifier(tc.id)

			if tc.wantErr {
				assert.ErrorIs(t, err, entity.ErrInvalidIdentifier)
				return
			}

			assert.NoError(t, err)
		})
	}
}
