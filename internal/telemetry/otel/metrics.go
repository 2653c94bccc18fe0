package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"internship-portal/backend/internal/telemetry"
)

// MetricsEmitter counts session events by type, role and provider.
type MetricsEmitter struct {
	events metric.Int64Counter
}

// NewMetricsEmitter registers the portal session counters on provider.
func NewMetricsEmitter(provider metric.MeterProvider) (*MetricsEmitter, error) {
	meter := provider.Meter("portal.session")
	events, err := meter.Int64Counter("portal.session.events",
		metric.WithDescription("Session lifecycle events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}
	return &MetricsEmitter{events: events}, nil
}

func (m *MetricsEmitter) Emit(ctx context.Context, event *telemetry.Event) error {
	if m == nil || event == nil {
		return nil
	}
	m.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", event.Type),
		attribute.String("role", event.Role),
		attribute.String("provider", event.Provider),
	))
	return nil
}
