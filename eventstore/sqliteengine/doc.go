// Package sqliteengine is a single-file EventLog and SnapshotStore on SQLite, built on the pure Go modernc.org/sqlite driver.
//
// It is meant for the CLI, local development, and tests that need a durable log without a database server.
// Every Append runs in an IMMEDIATE transaction, so the concurrency check and the insert see the same log
// even across processes that share the file.
package sqliteengine
