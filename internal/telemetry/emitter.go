// Package telemetry carries session lifecycle events to best-effort sinks (OTel logs, metrics, Kafka, audit).
package telemetry

import (
	"context"
	"errors"
	"time"
)

// Event types emitted by the agent.
const (
	EventBootstrap   = "session.bootstrap"
	EventLogin       = "session.login"
	EventLoginFailed = "session.login_failed"
	EventLogout      = "session.logout"
	EventChanged     = "session.changed"
	EventProfile     = "profile.updated"
	EventGRPCRequest = "grpc.request"
)

// Event is one session lifecycle event. Empty fields are omitted by sinks.
type Event struct {
	Type      string            `json:"type"`
	UserID    string            `json:"user_id,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Role      string            `json:"role,omitempty"`
	Provider  string            `json:"provider,omitempty"`
	Source    string            `json:"source,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	At        time.Time         `json:"at"`
}

// EventEmitter emits telemetry events. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}

// Multi fans an event out to every non-nil emitter and joins their errors.
type Multi []EventEmitter

func (m Multi) Emit(ctx context.Context, event *Event) error {
	var errs []error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
