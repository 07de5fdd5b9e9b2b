// Package promadapters implements eventstore.MetricsCollector on the Prometheus client.
//
// The collector creates one vector per metric name on first use. The label names are fixed by that first use,
// later calls with missing labels record them as empty, unknown labels are dropped.
package promadapters

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

var _ eventstore.MetricsCollector = (*Metrics)(nil)

// DefaultBuckets are the latency buckets in seconds.
var DefaultBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

type vec[T any] struct {
	labelNames []string
	metric     T
}

// Metrics maps durations to HistogramVec(s), counters to CounterVec(s),
// and values to CounterVec(s) for names ending in "_total" and GaugeVec(s) otherwise.
type Metrics struct {
	reg     prometheus.Registerer
	buckets []float64

	mu         sync.Mutex
	histograms map[string]vec[*prometheus.HistogramVec]
	counters   map[string]vec[*prometheus.CounterVec]
	gauges     map[string]vec[*prometheus.GaugeVec]
}

// Option configures Metrics.
type Option func(*Metrics)

// WithBuckets overrides DefaultBuckets.
func WithBuckets(buckets []float64) Option {
	return func(m *Metrics) { m.buckets = buckets }
}

// NewMetrics registers the vectors with reg as they are created.
func NewMetrics(reg prometheus.Registerer, options ...Option) *Metrics {
	m := &Metrics{
		reg:        reg,
		buckets:    DefaultBuckets,
		histograms: make(map[string]vec[*prometheus.HistogramVec]),
		counters:   make(map[string]vec[*prometheus.CounterVec]),
		gauges:     make(map[string]vec[*prometheus.GaugeVec]),
	}

	for _, option := range options {
		option(m)
	}

	return m
}

func (m *Metrics) RecordDuration(name string, duration time.Duration, labels map[string]string) {
	v := m.histogram(name, labels)
	v.metric.WithLabelValues(valuesOf(v.labelNames, labels)...).Observe(duration.Seconds())
}

func (m *Metrics) IncrementCounter(name string, labels map[string]string) {
	v := m.counter(name, labels)
	v.metric.WithLabelValues(valuesOf(v.labelNames, labels)...).Inc()
}

func (m *Metrics) RecordValue(name string, value float64, labels map[string]string) {
	if strings.HasSuffix(name, "_total") {
		if value < 0 {
			return
		}

		v := m.counter(name, labels)
		v.metric.WithLabelValues(valuesOf(v.labelNames, labels)...).Add(value)

		return
	}

	v := m.gauge(name, labels)
	v.metric.WithLabelValues(valuesOf(v.labelNames, labels)...).Set(value)
}

func (m *Metrics) histogram(name string, labels map[string]string) vec[*prometheus.HistogramVec] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.histograms[name]; ok {
		return v
	}

	names := namesOf(labels)
	h := register(m.reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    name,
		Help:    helpOf(name),
		Buckets: m.buckets,
	}, names))

	v := vec[*prometheus.HistogramVec]{labelNames: names, metric: h}
	m.histograms[name] = v

	return v
}

func (m *Metrics) counter(name string, labels map[string]string) vec[*prometheus.CounterVec] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.counters[name]; ok {
		return v
	}

	names := namesOf(labels)
	c := register(m.reg, prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: helpOf(name)}, names))

	v := vec[*prometheus.CounterVec]{labelNames: names, metric: c}
	m.counters[name] = v

	return v
}

func (m *Metrics) gauge(name string, labels map[string]string) vec[*prometheus.GaugeVec] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.gauges[name]; ok {
		return v
	}

	names := namesOf(labels)
	g := register(m.reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: helpOf(name)}, names))

	v := vec[*prometheus.GaugeVec]{labelNames: names, metric: g}
	m.gauges[name] = v

	return v
}

// register returns the already registered collector if an equal one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}

	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
	}

	return c
}

func namesOf(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

func valuesOf(names []string, labels map[string]string) []string {
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = labels[name]
	}

	return values
}

func helpOf(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
