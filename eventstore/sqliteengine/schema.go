package sqliteengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrMigratingSchemaFailed = errors.New("migrating sqlite schema failed")

// migrations are applied in order, PRAGMA user_version records how many ran.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS events (
    sequence_number INTEGER PRIMARY KEY AUTOINCREMENT,
    event_type TEXT NOT NULL,
    occurred_at INTEGER NOT NULL,
    payload TEXT NOT NULL,
    metadata TEXT NOT NULL,
    tags TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS events_event_type_idx ON events (event_type, sequence_number)`,
		`CREATE TABLE IF NOT EXISTS event_tags (
    tag_key TEXT NOT NULL,
    tag_value TEXT NOT NULL,
    sequence_number INTEGER NOT NULL REFERENCES events (sequence_number),
    PRIMARY KEY (tag_key, tag_value, sequence_number)
) WITHOUT ROWID`,
		`CREATE TABLE IF NOT EXISTS snapshots (
    entity_kind TEXT NOT NULL,
    filter_hash TEXT NOT NULL,
    sequence_number INTEGER NOT NULL,
    data TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (entity_kind, filter_hash)
)`,
	},
}

func migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Join(ErrMigratingSchemaFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	var version int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return errors.Join(ErrMigratingSchemaFailed, err)
	}

	for i := version; i < len(migrations); i++ {
		for _, statement := range migrations[i] {
			if _, err := tx.ExecContext(ctx, statement); err != nil {
				return errors.Join(ErrMigratingSchemaFailed, fmt.Errorf("migration %d: %w", i+1, err))
			}
		}
	}

	if version < len(migrations) {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", len(migrations))); err != nil {
			return errors.Join(ErrMigratingSchemaFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Join(ErrMigratingSchemaFailed, err)
	}

	return nil
}
