// Package adapters provide database adapter implementations for the PostgreSQL event store.
//
// All adapters present pgxpool.Pool, sql.DB, and sqlx.DB through the common DBAdapter interface.
// Statements are fully rendered SQL strings built by the engine.
package adapters
