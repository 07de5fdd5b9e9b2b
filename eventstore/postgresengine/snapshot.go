package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

const (
	colEntityKind = "entity_kind"
	colFilterHash = "filter_hash"
	colData       = "data"
	colCreatedAt  = "created_at"
)

// SaveSnapshot upserts the snapshot unless a snapshot with a higher SequenceNumber is already stored.
func (es *EventStore) SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	start := time.Now()
	builder := goqu.Dialect(dialectPostgres)

	newerOnly := fmt.Sprintf("%s.%s <= excluded.%s",
		pq.QuoteIdentifier(es.snapshotTableName), colSequenceNumber, colSequenceNumber)

	upsert := builder.
		Insert(es.snapshotTableName).
		Rows(goqu.Record{
			colEntityKind:     snapshot.EntityKind,
			colFilterHash:     snapshot.FilterHash,
			colSequenceNumber: int64(snapshot.SequenceNumber), //nolint:gosec
			colData:           goqu.L(castJsonb, string(snapshot.Data)),
			colCreatedAt:      snapshot.CreatedAt,
		}).
		OnConflict(goqu.DoUpdate(colEntityKind+", "+colFilterHash, goqu.Record{
			colSequenceNumber: goqu.L("excluded." + colSequenceNumber),
			colData:           goqu.L("excluded." + colData),
			colCreatedAt:      goqu.L("excluded." + colCreatedAt),
		}).Where(goqu.L(newerOnly)))

	sqlQuery, _, err := upsert.ToSQL()
	if err != nil {
		return errors.Join(eventstore.ErrSavingSnapshotFailed, eventstore.ErrBuildingQueryFailed, err)
	}

	_, err = es.db.Exec(ctx, sqlQuery)
	es.logQueryWithDuration(ctx, sqlQuery, operationSaveSnapshot, time.Since(start))
	if err != nil {
		es.recordError(ctx, operationSaveSnapshot, errorTypeDatabaseExec)
		return errors.Join(eventstore.ErrSavingSnapshotFailed, err)
	}

	return nil
}

// LoadSnapshot returns nil and no error if there is no snapshot.
func (es *EventStore) LoadSnapshot(ctx context.Context, entityKind string, filterHash string) (*eventstore.Snapshot, error) {
	start := time.Now()

	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		From(es.snapshotTableName).
		Select(colSequenceNumber, colData, colCreatedAt).
		Where(goqu.Ex{colEntityKind: entityKind, colFilterHash: filterHash}).
		ToSQL()
	if err != nil {
		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, eventstore.ErrBuildingQueryFailed, err)
	}

	rows, err := es.db.Query(eventstore.WithStrongConsistency(ctx), sqlQuery)
	es.logQueryWithDuration(ctx, sqlQuery, operationLoadSnapshot, time.Since(start))
	if err != nil {
		es.recordError(ctx, operationLoadSnapshot, errorTypeDatabaseQuery)
		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, err)
	}
	defer es.closeRows(ctx, rows)

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, err)
		}

		return nil, nil //nolint:nilnil
	}

	var (
		sequenceNumber int64
		data           []byte
		createdAt      time.Time
	)

	if err := rows.Scan(&sequenceNumber, &data, &createdAt); err != nil {
		es.recordError(ctx, operationLoadSnapshot, errorTypeRowScan)
		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, eventstore.ErrScanningDBRowFailed, err)
	}

	snapshot, err := eventstore.BuildSnapshot(
		entityKind,
		filterHash,
		eventstore.MaxSequenceNumberUint(sequenceNumber),
		slices.Clone(data),
		createdAt.UTC(),
	)
	if err != nil {
		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, err)
	}

	return &snapshot, nil
}

func (es *EventStore) DeleteSnapshot(ctx context.Context, entityKind string, filterHash string) error {
	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		Delete(es.snapshotTableName).
		Where(goqu.Ex{colEntityKind: entityKind, colFilterHash: filterHash}).
		ToSQL()
	if err != nil {
		return errors.Join(eventstore.ErrDeletingSnapshotFailed, eventstore.ErrBuildingQueryFailed, err)
	}

	if _, err := es.db.Exec(ctx, sqlQuery); err != nil {
		return errors.Join(eventstore.ErrDeletingSnapshotFailed, err)
	}

	return nil
}
