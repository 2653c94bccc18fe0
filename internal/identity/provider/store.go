package provider

import (
	"context"

	"internship-portal/backend/internal/identity/domain"
	"internship-portal/backend/internal/identity/store"
)

// StoreProvider adapts the remote identity store to IdentityProvider.
type StoreProvider struct {
	store store.Store
}

// NewStoreProvider wraps s.
func NewStoreProvider(s store.Store) *StoreProvider {
	return &StoreProvider{store: s}
}

func (p *StoreProvider) Kind() domain.AuthProvider { return domain.AuthProviderReal }

func (p *StoreProvider) SignIn(ctx context.Context, email, password string) (*domain.Identity, error) {
	return p.store.SignIn(ctx, email, password)
}

func (p *StoreProvider) SignOut(ctx context.Context, _ *domain.Identity) error {
	return p.store.SignOut(ctx)
}
