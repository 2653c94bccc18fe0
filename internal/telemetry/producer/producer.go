// Package producer publishes session telemetry events to Kafka.
package producer

import (
	"context"

	"internship-portal/backend/internal/telemetry"
)

// Producer emits telemetry events to an external stream.
type Producer interface {
	// Emit sends a single event. Returns an error only on write failure; callers typically log and ignore.
	Emit(ctx context.Context, event *telemetry.Event) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
