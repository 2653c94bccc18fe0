package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNewProviders_EmptyEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "   "} {
		p, err := NewProviders(context.Background(), Settings{Endpoint: endpoint, ServiceName: "test"})
		require.NoError(t, err)
		assert.NotNil(t, p.TracerProvider)
		assert.NotNil(t, p.MeterProvider)
		assert.NotNil(t, p.LoggerProvider)
		assert.NoError(t, p.Shutdown(context.Background()))
	}
}

func TestGrpcTarget(t *testing.T) {
	testCases := []struct {
		endpoint string
		override bool
		target   string
		insecure bool
	}{
		{"localhost:4317", false, "localhost:4317", true},
		{"http://collector:4317/v1/traces", false, "collector:4317", true},
		{"https://collector:4317", false, "collector:4317", false},
		{"https://collector:4317", true, "collector:4317", true},
	}
	for _, tc := range testCases {
		target, insecure, err := grpcTarget(tc.endpoint, tc.override)
		require.NoError(t, err, tc.endpoint)
		assert.Equal(t, tc.target, target, tc.endpoint)
		assert.Equal(t, tc.insecure, insecure, tc.endpoint)
	}
}

func TestNewProviders_InvalidEndpoint(t *testing.T) {
	for _, endpoint := range []string{"http://", "http://[invalid"} {
		_, err := NewProviders(context.Background(), Settings{Endpoint: endpoint, ServiceName: "test"})
		assert.Error(t, err, endpoint)
	}
}

func TestNewProviders_ExportersAreLazy(t *testing.T) {
	// gRPC exporters dial lazily, so construction succeeds without a collector.
	p, err := NewProviders(context.Background(), Settings{Endpoint: "localhost:4317", ServiceName: "test", Environment: "test"})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = p.Shutdown(ctx)
}

func TestSetGlobal(t *testing.T) {
	p, err := NewProviders(context.Background(), Settings{ServiceName: "test"})
	require.NoError(t, err)
	p.SetGlobal()
	assert.Equal(t, p.TracerProvider, otel.GetTracerProvider())
	assert.Equal(t, p.MeterProvider, otel.GetMeterProvider())
}
