package domain

import "time"

// AuditLog is one persisted session lifecycle entry.
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	Metadata  string
	CreatedAt time.Time
}
