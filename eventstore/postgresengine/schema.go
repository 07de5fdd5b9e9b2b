package postgresengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var ErrCreatingSchemaFailed = errors.New("creating schema failed")

const (
	ddlEventsTable = `CREATE TABLE IF NOT EXISTS %s (
    sequence_number BIGSERIAL PRIMARY KEY,
    event_type TEXT NOT NULL,
    occurred_at TIMESTAMPTZ NOT NULL,
    payload JSONB NOT NULL,
    metadata JSONB NOT NULL,
    tags JSONB NOT NULL
)`
	ddlTagsIndex      = `CREATE INDEX IF NOT EXISTS %s ON %s USING GIN (tags jsonb_path_ops)`
	ddlEventTypeIndex = `CREATE INDEX IF NOT EXISTS %s ON %s (event_type, sequence_number)`
	ddlSnapshotsTable = `CREATE TABLE IF NOT EXISTS %s (
    entity_kind TEXT NOT NULL,
    filter_hash TEXT NOT NULL,
    sequence_number BIGINT NOT NULL,
    data JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (entity_kind, filter_hash)
)`
)

// CreateSchema creates the events and snapshots tables and their indexes if they do not exist.
func (es *EventStore) CreateSchema(ctx context.Context) error {
	events := pq.QuoteIdentifier(es.eventTableName)
	snapshots := pq.QuoteIdentifier(es.snapshotTableName)

	statements := []string{
		fmt.Sprintf(ddlEventsTable, events),
		fmt.Sprintf(ddlTagsIndex, pq.QuoteIdentifier(es.eventTableName+"_tags_idx"), events),
		fmt.Sprintf(ddlEventTypeIndex, pq.QuoteIdentifier(es.eventTableName+"_event_type_idx"), events),
		fmt.Sprintf(ddlSnapshotsTable, snapshots),
	}

	if _, err := es.db.ExecInTx(ctx, statements...); err != nil {
		return errors.Join(ErrCreatingSchemaFailed, err)
	}

	es.logOperation(ctx, "schema created", "events_table", es.eventTableName, "snapshots_table", es.snapshotTableName)

	return nil
}
