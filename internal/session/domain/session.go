package domain

import (
	"time"

	identitydomain "internship-portal/backend/internal/identity/domain"
)

// State is the live session tuple. Authenticated is true iff Identity is non-nil.
// Loading is true only until the initial bootstrap completes.
type State struct {
	Identity      *identitydomain.Identity
	Role          identitydomain.Role
	Authenticated bool
	Loading       bool
}

// IsDemo reports whether the signed-in identity is a demo identity.
func (s State) IsDemo() bool {
	return s.Identity.IsDemo()
}

// Roleless reports the terminal "signed in but no role" state.
func (s State) Roleless() bool {
	return !s.Loading && s.Authenticated && !s.Role.Valid()
}

// Record is the server-side session kept by the identity store.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	RoleHint  string    `json:"role_hint,omitempty"`
	TokenHash string    `json:"token_hash"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EventType is the kind of auth change published on the session channel.
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

// ChangeEvent is the Pub/Sub payload announcing a sign-in or sign-out.
type ChangeEvent struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	RoleHint  string    `json:"role_hint,omitempty"`
	At        time.Time `json:"at"`
}
