package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrInvalidSnapshotJSON    = errors.New("snapshot json is not valid")
	ErrEmptyEntityKind        = errors.New("entity kind must not be empty")
	ErrEmptyFilterHash        = errors.New("filter hash must not be empty")
	ErrSavingSnapshotFailed   = errors.New("saving snapshot failed")
	ErrLoadingSnapshotFailed  = errors.New("loading snapshot failed")
	ErrDeletingSnapshotFailed = errors.New("deleting snapshot failed")
)

// Snapshot is a checkpoint of an entity state at a stream version.
// It is a cache: it can be deleted at any time and the state is rebuilt from the log.
type Snapshot struct {
	EntityKind     string                // Kind of entity (e.g., "Driver")
	FilterHash     string                // Hash of the stream criteria the state was folded from
	SequenceNumber MaxSequenceNumberUint // Stream version the state reflects
	Data           json.RawMessage       // Serialized state
	CreatedAt      time.Time
}

// Validate ensures the snapshot has valid data for storage operations.
func (s Snapshot) Validate() error {
	if s.EntityKind == "" {
		return ErrEmptyEntityKind
	}

	if s.FilterHash == "" {
		return ErrEmptyFilterHash
	}

	if !jsoniter.ConfigFastest.Valid(s.Data) {
		return ErrInvalidSnapshotJSON
	}

	return nil
}

// BuildSnapshot creates a new Snapshot with validation.
func BuildSnapshot(
	entityKind string,
	filterHash string,
	sequenceNumber MaxSequenceNumberUint,
	data json.RawMessage,
	createdAt time.Time,
) (Snapshot, error) {

	snapshot := Snapshot{
		EntityKind:     entityKind,
		FilterHash:     filterHash,
		SequenceNumber: sequenceNumber,
		Data:           data,
		CreatedAt:      createdAt,
	}

	if err := snapshot.Validate(); err != nil {
		return Snapshot{}, err
	}

	return snapshot, nil
}

// SnapshotStore persists Snapshot(s) keyed by (EntityKind, FilterHash).
//
// LoadSnapshot returns nil and no error if there is no snapshot.
// SaveSnapshot must not replace a snapshot with one of a lower SequenceNumber.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
	LoadSnapshot(ctx context.Context, entityKind string, filterHash string) (*Snapshot, error)
	DeleteSnapshot(ctx context.Context, entityKind string, filterHash string) error
}
