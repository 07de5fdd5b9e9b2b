package memengine

import (
	"context"
	"slices"
	"sync"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

type snapshotKey struct {
	entityKind string
	filterHash string
}

// SnapshotStore keeps the latest Snapshot per (entity kind, filter hash).
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[snapshotKey]eventstore.Snapshot
}

// NewSnapshotStore creates an empty in-memory SnapshotStore.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[snapshotKey]eventstore.Snapshot)}
}

func (s *SnapshotStore) SaveSnapshot(_ context.Context, snapshot eventstore.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	key := snapshotKey{entityKind: snapshot.EntityKind, filterHash: snapshot.FilterHash}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.snapshots[key]; ok && existing.SequenceNumber > snapshot.SequenceNumber {
		return nil
	}

	snapshot.Data = slices.Clone(snapshot.Data)
	s.snapshots[key] = snapshot

	return nil
}

func (s *SnapshotStore) LoadSnapshot(_ context.Context, entityKind string, filterHash string) (*eventstore.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[snapshotKey{entityKind: entityKind, filterHash: filterHash}]
	if !ok {
		return nil, nil //nolint:nilnil
	}

	snapshot.Data = slices.Clone(snapshot.Data)

	return &snapshot, nil
}

func (s *SnapshotStore) DeleteSnapshot(_ context.Context, entityKind string, filterHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, snapshotKey{entityKind: entityKind, filterHash: filterHash})

	return nil
}

// Len returns the number of stored snapshots.
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.snapshots)
}
