// Package oteladapters implements the eventstore observability interfaces on OpenTelemetry.
//
// The event log engines, the entity loader, and the command dispatcher all accept these adapters:
//
//	logger := oteladapters.NewLogger("dcb-runtime")
//	metrics := oteladapters.NewMetrics(otel.Meter("dcb-runtime"))
//	tracing := oteladapters.NewTracing(otel.Tracer("dcb-runtime"))
package oteladapters
