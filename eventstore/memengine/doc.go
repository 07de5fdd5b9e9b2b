// Package memengine provides an in-memory implementation of eventstore.EventLog and eventstore.SnapshotStore.
//
// It honors the same optimistic concurrency contract as the durable engines and is meant for tests,
// local development, and the command-line simulation. Nothing survives the process.
package memengine
