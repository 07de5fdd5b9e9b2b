package command

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// IDGenerator is the only sanctioned source of randomness for handlers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates time ordered UUIDs (version 7).
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

// NanoIDGenerator generates 21 character nano ids.
type NanoIDGenerator struct{}

func (NanoIDGenerator) NewID() string {
	return gonanoid.Must()
}

// SequenceGenerator generates "<prefix>-1", "<prefix>-2", ... and is safe for concurrent use.
type SequenceGenerator struct {
	prefix string
	next   atomic.Uint64
}

// NewSequenceGenerator starts counting at 1.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

func (g *SequenceGenerator) NewID() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.next.Add(1))
}
