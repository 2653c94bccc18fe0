// Package audit persists session lifecycle events to the audit_logs table.
package audit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"internship-portal/backend/internal/audit/domain"
	auditrepo "internship-portal/backend/internal/audit/repository"
	"internship-portal/backend/internal/telemetry"
)

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, metadata string)
}

// Logger implements AuditLogger and telemetry.EventEmitter over the audit repository.
type Logger struct {
	repo auditrepo.Repository
	log  *zap.Logger
	now  func() time.Time
}

// NewLogger returns a Logger that persists to repo. log may be nil.
func NewLogger(repo auditrepo.Repository, log *zap.Logger) *Logger {
	if log == nil {
		log = zap.L()
	}
	return &Logger{repo: repo, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, metadata string) {
	if err := l.write(ctx, userID, action, resource, metadata); err != nil {
		l.log.Warn("audit: failed to log event", zap.String("action", action), zap.String("resource", resource), zap.Error(err))
	}
}

func (l *Logger) write(ctx context.Context, userID, action, resource, metadata string) error {
	if l.repo == nil {
		return nil
	}
	return l.repo.Create(ctx, &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		Metadata:  metadata,
		CreatedAt: l.now(),
	})
}

// Emit records a telemetry event. The resource is the event type's prefix
// (session.login is action "login" on resource "session").
func (l *Logger) Emit(ctx context.Context, event *telemetry.Event) error {
	if event == nil {
		return nil
	}
	resource, action, ok := strings.Cut(event.Type, ".")
	if !ok {
		resource, action = "session", event.Type
	}
	meta := map[string]string{}
	for k, v := range event.Metadata {
		meta[k] = v
	}
	if event.Role != "" {
		meta["role"] = event.Role
	}
	if event.Provider != "" {
		meta["provider"] = event.Provider
	}
	if event.SessionID != "" {
		meta["session_id"] = event.SessionID
	}
	var metadata string
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		metadata = string(b)
	}
	return l.write(ctx, event.UserID, action, resource, metadata)
}
