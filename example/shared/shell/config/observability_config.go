package config

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/eventstore/oteladapters"
	"github.com/dcbkit/dcb-runtime-go/eventstore/promadapters"
)

const instrumentationName = "github.com/dcbkit/dcb-runtime-go"

// Observability bundles what the engines, the loader, and the dispatcher log, measure, and trace to.
type Observability struct {
	Logger   *oteladapters.Logger
	Metrics  *promadapters.Metrics
	Registry *prometheus.Registry

	// Set by EnableOTLP. OTLP metrics replace the Prometheus ones for the eventstore components.
	Tracing     *oteladapters.Tracing
	OTLPMetrics *oteladapters.Metrics
	telemetry   *TelemetryProviders
}

// NewObservability logs text at cfg.LogLevel to w and collects metrics into a fresh registry
// that also carries the Go runtime and process collectors.
func NewObservability(cfg Config, w io.Writer) Observability {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return Observability{
		Logger:   oteladapters.NewLoggerFromHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel})),
		Metrics:  promadapters.NewMetrics(registry),
		Registry: registry,
	}
}

// EnableOTLP exports traces and metrics over OTLP when cfg.Endpoint is set, it does nothing otherwise.
func (o *Observability) EnableOTLP(ctx context.Context, cfg OTLPConfig) error {
	if cfg.Endpoint == "" {
		return nil
	}

	providers, err := NewTelemetryProviders(ctx, cfg)
	if err != nil {
		return err
	}

	o.telemetry = providers
	o.Tracing = oteladapters.NewTracing(providers.TracerProvider.Tracer(instrumentationName))
	o.OTLPMetrics = oteladapters.NewMetrics(providers.MeterProvider.Meter(instrumentationName))

	return nil
}

// Shutdown flushes the OTLP exporters, if any.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o.telemetry == nil {
		return nil
	}

	return o.telemetry.Shutdown(ctx)
}

// EventstoreLogger returns the logger as an interface value, nil if there is none.
func (o Observability) EventstoreLogger() eventstore.Logger {
	if o.Logger == nil {
		return nil
	}

	return o.Logger
}

// EventstoreMetrics returns the metrics collector as an interface value, nil if there is none.
func (o Observability) EventstoreMetrics() eventstore.MetricsCollector {
	if o.OTLPMetrics != nil {
		return o.OTLPMetrics
	}

	if o.Metrics == nil {
		return nil
	}

	return o.Metrics
}

// EventstoreTracing returns the tracing collector as an interface value, nil without OTLP.
func (o Observability) EventstoreTracing() eventstore.TracingCollector {
	if o.Tracing == nil {
		return nil
	}

	return o.Tracing
}
