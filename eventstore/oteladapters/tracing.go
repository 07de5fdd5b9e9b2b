package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

var (
	_ eventstore.TracingCollector = (*Tracing)(nil)
	_ eventstore.SpanContext      = (*Span)(nil)
)

// Tracing starts one OpenTelemetry span per observed operation.
type Tracing struct {
	tracer trace.Tracer
}

func NewTracing(tracer trace.Tracer) *Tracing {
	return &Tracing{tracer: tracer}
}

func (t *Tracing) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	if t.tracer == nil {
		return ctx, nil
	}

	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attributesOf(attrs)...))

	return ctx, &Span{span: span}
}

// FinishSpan sets the attributes and the status and ends the span. Spans of other collectors are ignored.
func (t *Tracing) FinishSpan(spanCtx eventstore.SpanContext, status string, attrs map[string]string) {
	s, ok := spanCtx.(*Span)
	if !ok || s == nil {
		return
	}

	s.span.SetAttributes(attributesOf(attrs)...)
	s.SetStatus(status)
	s.span.End()
}

// Span wraps a trace.Span.
type Span struct {
	span trace.Span
}

// SetStatus maps the status labels of the engines and the dispatcher to span codes.
// A rejected command is a business outcome, not an error.
func (s *Span) SetStatus(status string) {
	switch status {
	case "success", "idempotent", "rejected":
		s.span.SetStatus(codes.Ok, "")
	case "error":
		s.span.SetStatus(codes.Error, "operation failed")
	case "conflict":
		s.span.SetStatus(codes.Error, "concurrency conflict")
	case "canceled":
		s.span.SetStatus(codes.Error, "operation canceled")
	default:
		s.span.SetAttributes(attribute.String("status", status))
	}
}

func (s *Span) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}
