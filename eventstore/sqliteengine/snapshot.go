package sqliteengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

const (
	upsertSnapshot = `INSERT INTO snapshots (entity_kind, filter_hash, sequence_number, data, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (entity_kind, filter_hash) DO UPDATE SET
    sequence_number = excluded.sequence_number,
    data = excluded.data,
    created_at = excluded.created_at
WHERE snapshots.sequence_number <= excluded.sequence_number`
	selectSnapshot = `SELECT sequence_number, data, created_at FROM snapshots WHERE entity_kind = ? AND filter_hash = ?`
	deleteSnapshot = `DELETE FROM snapshots WHERE entity_kind = ? AND filter_hash = ?`
)

// SaveSnapshot upserts the snapshot unless a snapshot with a higher SequenceNumber is already stored.
func (es *EventStore) SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	_, err := es.db.ExecContext(ctx, upsertSnapshot,
		snapshot.EntityKind,
		snapshot.FilterHash,
		int64(snapshot.SequenceNumber), //nolint:gosec
		string(snapshot.Data),
		snapshot.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return errors.Join(eventstore.ErrSavingSnapshotFailed, err)
	}

	return nil
}

// LoadSnapshot returns nil and no error if there is no snapshot.
func (es *EventStore) LoadSnapshot(ctx context.Context, entityKind string, filterHash string) (*eventstore.Snapshot, error) {
	var (
		sequenceNumber int64
		data           string
		createdAt      int64
	)

	err := es.db.QueryRowContext(ctx, selectSnapshot, entityKind, filterHash).Scan(&sequenceNumber, &data, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil
	}
	if err != nil {
		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, err)
	}

	snapshot, err := eventstore.BuildSnapshot(
		entityKind,
		filterHash,
		eventstore.MaxSequenceNumberUint(sequenceNumber), //nolint:gosec
		[]byte(data),
		time.Unix(0, createdAt).UTC(),
	)
	if err != nil {
		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, err)
	}

	return &snapshot, nil
}

// DeleteSnapshot removes the snapshot, deleting a missing snapshot is not an error.
func (es *EventStore) DeleteSnapshot(ctx context.Context, entityKind string, filterHash string) error {
	if _, err := es.db.ExecContext(ctx, deleteSnapshot, entityKind, filterHash); err != nil {
		return errors.Join(eventstore.ErrDeletingSnapshotFailed, err)
	}

	return nil
}
