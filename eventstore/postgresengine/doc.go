// Package postgresengine provides a PostgreSQL implementation of eventstore.EventLog and eventstore.SnapshotStore.
//
// It supports three database adapters (pgxpool, sql.DB with lib/pq, sqlx) and an optional read replica
// for eventually consistent queries.
//
// Events carry their tags in a jsonb column. A filter item becomes
//
//	event_type IN (...) AND tags @> '[{"key":"Driver","value":"d1"}]'
//
// and an append is a single INSERT ... SELECT guarded by a CTE computing the max sequence number
// of the filter, so it inserts nothing if the stream moved on.
//
// Usage:
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	store, _ := postgresengine.NewEventStoreFromPGXPool(pool, postgresengine.WithLogger(slog.Default()))
//	_ = store.CreateSchema(ctx)
//
//	events, maxSeq, _ := store.Query(ctx, filter)
//	err := store.Append(ctx, filter, maxSeq, newEvent)
package postgresengine
