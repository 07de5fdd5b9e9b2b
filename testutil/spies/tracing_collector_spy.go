package spies

import (
	"context"
	"maps"
	"sync"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

// SpanContextSpy records status and attributes set on a span.
type SpanContextSpy struct {
	mu         sync.Mutex
	status     string
	attributes map[string]string
}

func (c *SpanContextSpy) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = status
}

func (c *SpanContextSpy) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}

	c.attributes[key] = value
}

func (c *SpanContextSpy) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status
}

func (c *SpanContextSpy) Attributes() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return maps.Clone(c.attributes)
}

// SpanRecord represents one started span.
type SpanRecord struct {
	Name            string
	StartAttributes map[string]string
	FinishStatus    string
	EndAttributes   map[string]string
	Finished        bool
	Span            *SpanContextSpy
}

// TracingCollectorSpy captures all spans started and finished through eventstore.TracingCollector.
type TracingCollectorSpy struct {
	mu    sync.Mutex
	spans []*SpanRecord
}

func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

func (s *TracingCollectorSpy) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, eventstore.SpanContext) {

	s.mu.Lock()
	defer s.mu.Unlock()

	span := &SpanContextSpy{}
	s.spans = append(s.spans, &SpanRecord{Name: name, StartAttributes: maps.Clone(attrs), Span: span})

	return ctx, span
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx eventstore.SpanContext, status string, attrs map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.spans {
		if record.Span == spanCtx {
			record.Finished = true
			record.FinishStatus = status
			record.EndAttributes = maps.Clone(attrs)

			return
		}
	}
}

// Spans returns copies of the captured span records.
func (s *TracingCollectorSpy) Spans() []SpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SpanRecord, 0, len(s.spans))
	for _, r := range s.spans {
		out = append(out, *r)
	}

	return out
}
