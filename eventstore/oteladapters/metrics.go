package oteladapters

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

var (
	_ eventstore.MetricsCollector           = (*Metrics)(nil)
	_ eventstore.ContextualMetricsCollector = (*Metrics)(nil)
)

// Metrics maps durations to histograms in seconds, counters to Int64Counter(s), and values to gauges.
// Instruments are created on first use and cached by name. Instruments the meter refuses are skipped.
type Metrics struct {
	meter metric.Meter

	mu         sync.Mutex
	histograms map[string]metric.Float64Histogram
	counters   map[string]metric.Int64Counter
	gauges     map[string]metric.Float64Gauge
}

func NewMetrics(meter metric.Meter) *Metrics {
	return &Metrics{
		meter:      meter,
		histograms: make(map[string]metric.Float64Histogram),
		counters:   make(map[string]metric.Int64Counter),
		gauges:     make(map[string]metric.Float64Gauge),
	}
}

func (m *Metrics) RecordDuration(name string, duration time.Duration, labels map[string]string) {
	m.RecordDurationContext(context.Background(), name, duration, labels)
}

func (m *Metrics) RecordDurationContext(ctx context.Context, name string, duration time.Duration, labels map[string]string) {
	if h := m.histogram(name); h != nil {
		h.Record(ctx, duration.Seconds(), metric.WithAttributes(attributesOf(labels)...))
	}
}

func (m *Metrics) IncrementCounter(name string, labels map[string]string) {
	m.IncrementCounterContext(context.Background(), name, labels)
}

func (m *Metrics) IncrementCounterContext(ctx context.Context, name string, labels map[string]string) {
	if c := m.counter(name); c != nil {
		c.Add(ctx, 1, metric.WithAttributes(attributesOf(labels)...))
	}
}

func (m *Metrics) RecordValue(name string, value float64, labels map[string]string) {
	m.RecordValueContext(context.Background(), name, value, labels)
}

func (m *Metrics) RecordValueContext(ctx context.Context, name string, value float64, labels map[string]string) {
	if g := m.gauge(name); g != nil {
		g.Record(ctx, value, metric.WithAttributes(attributesOf(labels)...))
	}
}

func (m *Metrics) histogram(name string) metric.Float64Histogram {
	if m.meter == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.histograms[name]; ok {
		return h
	}

	h, err := m.meter.Float64Histogram(name, metric.WithUnit("s"))
	if err != nil {
		return nil
	}
	m.histograms[name] = h

	return h
}

func (m *Metrics) counter(name string) metric.Int64Counter {
	if m.meter == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.counters[name]; ok {
		return c
	}

	c, err := m.meter.Int64Counter(name)
	if err != nil {
		return nil
	}
	m.counters[name] = c

	return c
}

func (m *Metrics) gauge(name string) metric.Float64Gauge {
	if m.meter == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if g, ok := m.gauges[name]; ok {
		return g
	}

	g, err := m.meter.Float64Gauge(name)
	if err != nil {
		return nil
	}
	m.gauges[name] = g

	return g
}

func attributesOf(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for key, value := range labels {
		attrs = append(attrs, attribute.String(key, value))
	}

	return attrs
}
