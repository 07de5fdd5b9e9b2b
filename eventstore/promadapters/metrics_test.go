package promadapters_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcbkit/dcb-runtime-go/eventstore/promadapters"
)

func seriesCount(t *testing.T, reg *prometheus.Registry, name string) int {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() == name {
			return len(family.GetMetric())
		}
	}

	return 0
}

func Test_IncrementCounter_CountsPerLabelValues(t *testing.T) {
	// arrange
	reg := prometheus.NewRegistry()
	metrics := promadapters.NewMetrics(reg)

	// act
	metrics.IncrementCounter("commandhandler_handle_calls_total", map[string]string{"command_type": "CreateDriver", "status": "success"})
	metrics.IncrementCounter("commandhandler_handle_calls_total", map[string]string{"command_type": "CreateDriver", "status": "success"})
	metrics.IncrementCounter("commandhandler_handle_calls_total", map[string]string{"command_type": "CreateDriver", "status": "rejected"})

	// assert
	assert.Equal(t, 2, seriesCount(t, reg, "commandhandler_handle_calls_total"))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)

	total := 0.0
	for _, m := range families[0].GetMetric() {
		total += m.GetCounter().GetValue()
	}
	assert.InDelta(t, 3.0, total, 0.0001)
}

func Test_RecordValue_AddsToCountersAndSetsGauges(t *testing.T) {
	// arrange
	reg := prometheus.NewRegistry()
	metrics := promadapters.NewMetrics(reg)
	labels := map[string]string{"engine": "memory"}

	// act
	metrics.RecordValue("eventstore_events_appended_total", 2, labels)
	metrics.RecordValue("eventstore_events_appended_total", 3, labels)
	metrics.RecordValue("eventstore_events_appended_total", -1, labels)
	metrics.RecordValue("notify_tailer_position", 7, nil)
	metrics.RecordValue("notify_tailer_position", 9, nil)

	// assert
	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, family := range families {
		m := family.GetMetric()[0]
		switch family.GetName() {
		case "eventstore_events_appended_total":
			values[family.GetName()] = m.GetCounter().GetValue()
		case "notify_tailer_position":
			values[family.GetName()] = m.GetGauge().GetValue()
		}
	}

	assert.InDelta(t, 5.0, values["eventstore_events_appended_total"], 0.0001)
	assert.InDelta(t, 9.0, values["notify_tailer_position"], 0.0001)
}

func Test_RecordDuration_ObservesSeconds(t *testing.T) {
	// arrange
	reg := prometheus.NewRegistry()
	metrics := promadapters.NewMetrics(reg, promadapters.WithBuckets([]float64{0.1, 1}))

	// act
	metrics.RecordDuration("eventstore_query_duration_seconds", 250*time.Millisecond, map[string]string{"operation": "query"})

	// assert
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)

	histogram := families[0].GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(1), histogram.GetSampleCount())
	assert.InDelta(t, 0.25, histogram.GetSampleSum(), 0.0001)
}

func Test_MissingLabels_AreRecordedEmpty(t *testing.T) {
	// arrange
	reg := prometheus.NewRegistry()
	metrics := promadapters.NewMetrics(reg)

	// act
	metrics.IncrementCounter("c_total", map[string]string{"a": "1", "b": "2"})
	metrics.IncrementCounter("c_total", map[string]string{"a": "1", "x": "ignored"})

	// assert
	assert.Equal(t, 2, seriesCount(t, reg, "c_total"))
}

func Test_TwoCollectorsOnOneRegistry_ShareTheVectors(t *testing.T) {
	// arrange
	reg := prometheus.NewRegistry()
	first := promadapters.NewMetrics(reg)
	second := promadapters.NewMetrics(reg)

	// act
	first.IncrementCounter("shared_total", map[string]string{"k": "v"})
	second.IncrementCounter("shared_total", map[string]string{"k": "v"})

	// assert
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.InDelta(t, 2.0, families[0].GetMetric()[0].GetCounter().GetValue(), 0.0001)
}
