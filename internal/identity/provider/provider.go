// Package provider selects, per call, where an identity comes from: the fixed
// demo table or the remote identity store.
package provider

import (
	"context"
	"errors"

	"internship-portal/backend/internal/identity/domain"
)

// ErrNoMatch is returned by DemoProvider.SignIn when the pair is not a demo account.
var ErrNoMatch = errors.New("not a demo account")

// IdentityProvider issues and revokes identities.
type IdentityProvider interface {
	Kind() domain.AuthProvider
	SignIn(ctx context.Context, email, password string) (*domain.Identity, error)
	SignOut(ctx context.Context, identity *domain.Identity) error
}

// Selector picks the provider for a login attempt or a signed-in identity.
// Either provider may be nil: demo accounts disabled, or no remote backend configured.
type Selector struct {
	Demo   *DemoProvider
	Remote IdentityProvider
}

// ForLogin returns the demo provider when the pair matches a demo account,
// else the remote provider (nil when none is configured).
func (s Selector) ForLogin(email, password string) IdentityProvider {
	if s.Demo != nil {
		if _, ok := s.Demo.Match(email, password); ok {
			return s.Demo
		}
	}
	if s.Remote == nil {
		return nil
	}
	return s.Remote
}

// ForIdentity returns the provider that issued identity.
func (s Selector) ForIdentity(identity *domain.Identity) IdentityProvider {
	if identity.IsDemo() && s.Demo != nil {
		return s.Demo
	}
	if s.Remote == nil {
		return nil
	}
	return s.Remote
}
