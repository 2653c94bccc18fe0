// Package store is the remote identity store: credential sign-in against Postgres,
// session records and change notifications in Redis, and a signed session token
// kept on disk so a restarted agent can restore its session.
package store

import (
	"context"

	"internship-portal/backend/internal/identity/domain"
)

// Store is the identity store contract the session core depends on.
type Store interface {
	// GetSession returns the identity of the persisted session, or nil when there is none.
	GetSession(ctx context.Context) (*domain.Identity, error)
	// SignIn verifies credentials. Rejected credentials are reported as *AuthError.
	SignIn(ctx context.Context, email, password string) (*domain.Identity, error)
	SignOut(ctx context.Context) error
	// OnChange registers fn for sign-in (identity) and sign-out (nil) notifications.
	OnChange(fn func(*domain.Identity)) (unsubscribe func())
}

// AuthError is a sign-in rejection whose Message is safe to show the user verbatim.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ErrInvalidCredentials is the message for unknown accounts and wrong passwords alike.
const ErrInvalidCredentials = "Invalid login credentials"
