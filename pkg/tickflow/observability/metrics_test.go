package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupMetricsTest(t *testing.T) (MetricsRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("shutdown meter provider: %v", err)
		}
	})

	m, err := NewMetricsRecorderFor(provider)
	require.NoError(t, err)
	return m, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumBy totals an int64 counter over data points carrying key=value.
func sumBy(t *testing.T, m *metricdata.Metrics, key, value string) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64], got %T", m.Data)

	var total int64
	for _, dp := range sum.DataPoints {
		if key == "" {
			total += dp.Value
			continue
		}
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.Emit() == value {
			total += dp.Value
		}
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	original := otel.GetMeterProvider()
	provider := sdkmetric.NewMeterProvider()
	otel.SetMeterProvider(provider)
	defer otel.SetMeterProvider(original)

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop)
}

func TestRecordCycle(t *testing.T) {
	m, reader := setupMetricsTest(t)
	ctx := context.Background()

	m.RecordCycle(ctx, 2, time.Millisecond, nil)
	m.RecordCycle(ctx, 2, time.Millisecond, nil)
	m.RecordCycle(ctx, 1, time.Millisecond, errors.New("panic in work"))

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumBy(t, findMetric(rm, "tickflow.cycles"), "success", "true"))
	assert.Equal(t, int64(1), sumBy(t, findMetric(rm, "tickflow.cycles"), "success", "false"))
	assert.Equal(t, int64(1), sumBy(t, findMetric(rm, "tickflow.cycle.errors"), "", ""))

	latency := findMetric(rm, "tickflow.cycle.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestRecordPhase(t *testing.T) {
	m, reader := setupMetricsTest(t)

	m.RecordPhase(context.Background(), "producer", "switch", 3*time.Millisecond)

	rm := collectMetrics(t, reader)
	latency := findMetric(rm, "tickflow.phase.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)

	dp := hist.DataPoints[0]
	region, _ := dp.Attributes.Value("region")
	phase, _ := dp.Attributes.Value("phase")
	assert.Equal(t, "producer", region.AsString())
	assert.Equal(t, "switch", phase.AsString())
	assert.InDelta(t, 3.0, dp.Sum, 0.001)
}

func TestRecordBuffer(t *testing.T) {
	m, reader := setupMetricsTest(t)
	ctx := context.Background()

	m.RecordBuffer(ctx, "producer", "consumer", 4, 1)
	m.RecordBuffer(ctx, "producer", "consumer", 0, 1)
	m.RecordBuffer(ctx, "producer", "logger", 1, 1)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(4), sumBy(t, findMetric(rm, "tickflow.buffer.items"), "to", "consumer"))
	assert.Equal(t, int64(2), sumBy(t, findMetric(rm, "tickflow.buffer.deliveries"), "to", "consumer"))
	assert.Equal(t, int64(3), sumBy(t, findMetric(rm, "tickflow.buffer.deliveries"), "from", "producer"))
}
