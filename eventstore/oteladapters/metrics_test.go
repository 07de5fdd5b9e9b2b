package oteladapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/dcbkit/dcb-runtime-go/eventstore/oteladapters"
)

func givenMetrics() (*oteladapters.Metrics, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return oteladapters.NewMetrics(provider.Meter("test")), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Aggregation {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m.Data
			}
		}
	}

	t.Fatalf("metric %s not found", name)

	return nil
}

func Test_Metrics_RecordDuration_RecordsSecondsWithLabels(t *testing.T) {
	// arrange
	metrics, reader := givenMetrics()

	// act
	metrics.RecordDuration("eventstore_query_duration_seconds", 150*time.Millisecond,
		map[string]string{"operation": "query", "engine": "memory"})

	// assert
	histogram, ok := collect(t, reader, "eventstore_query_duration_seconds").(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(1), histogram.DataPoints[0].Count)
	assert.InDelta(t, 0.15, histogram.DataPoints[0].Sum, 0.001)

	expected := attribute.NewSet(attribute.String("operation", "query"), attribute.String("engine", "memory"))
	assert.True(t, histogram.DataPoints[0].Attributes.Equals(&expected))
}

func Test_Metrics_IncrementCounter_ReusesTheInstrument(t *testing.T) {
	// arrange
	metrics, reader := givenMetrics()
	labels := map[string]string{"command_type": "CreateDriver", "status": "success"}

	// act
	metrics.IncrementCounter("commandhandler_handle_calls_total", labels)
	metrics.IncrementCounterContext(context.Background(), "commandhandler_handle_calls_total", labels)

	// assert
	sum, ok := collect(t, reader, "commandhandler_handle_calls_total").(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
}

func Test_Metrics_RecordValue_KeepsTheLastValue(t *testing.T) {
	// arrange
	metrics, reader := givenMetrics()

	// act
	metrics.RecordValue("eventstore_events_appended_total", 3, nil)
	metrics.RecordValueContext(context.Background(), "eventstore_events_appended_total", 5, nil)

	// assert
	gauge, ok := collect(t, reader, "eventstore_events_appended_total").(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 5.0, gauge.DataPoints[0].Value, 0.0001)
}

func Test_Metrics_WithoutMeter_DoesNothing(t *testing.T) {
	metrics := oteladapters.NewMetrics(nil)

	assert.NotPanics(t, func() {
		metrics.RecordDuration("d", time.Second, nil)
		metrics.IncrementCounter("c", nil)
		metrics.RecordValue("v", 1, nil)
	})
}
