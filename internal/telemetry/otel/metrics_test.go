package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"internship-portal/backend/internal/telemetry"
)

func TestMetricsEmitter_CountsEvents(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetricsEmitter(mp)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, m.Emit(ctx, &telemetry.Event{Type: telemetry.EventLogin, Role: "student", Provider: "demo"}))
	require.NoError(t, m.Emit(ctx, &telemetry.Event{Type: telemetry.EventLogin, Role: "student", Provider: "demo"}))
	require.NoError(t, m.Emit(ctx, nil))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)
	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
}

func TestMetricsEmitter_Nil(t *testing.T) {
	var m *MetricsEmitter
	assert.NoError(t, m.Emit(context.Background(), &telemetry.Event{}))
}
