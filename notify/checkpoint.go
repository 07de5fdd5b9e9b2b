package notify

import (
	"context"
	"sync"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

// CheckpointStore keeps the position of the last delivered event per tailer name.
type CheckpointStore interface {
	LoadCheckpoint(ctx context.Context, name string) (eventstore.MaxSequenceNumberUint, error)
	SaveCheckpoint(ctx context.Context, name string, position eventstore.MaxSequenceNumberUint) error
}

// MemoryCheckpointStore is a CheckpointStore for a single process, positions are lost on restart.
type MemoryCheckpointStore struct {
	mu        sync.Mutex
	positions map[string]eventstore.MaxSequenceNumberUint
}

// NewMemoryCheckpointStore creates a store where every tailer starts at position 0.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{positions: make(map[string]eventstore.MaxSequenceNumberUint)}
}

func (s *MemoryCheckpointStore) LoadCheckpoint(_ context.Context, name string) (eventstore.MaxSequenceNumberUint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.positions[name], nil
}

// SaveCheckpoint never moves a checkpoint backwards.
func (s *MemoryCheckpointStore) SaveCheckpoint(_ context.Context, name string, position eventstore.MaxSequenceNumberUint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if position > s.positions[name] {
		s.positions[name] = position
	}

	return nil
}
