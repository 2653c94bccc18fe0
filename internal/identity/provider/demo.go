package provider

import (
	"context"

	"internship-portal/backend/internal/identity/domain"
)

// DemoPassword is the fixed password shared by every demo account.
const DemoPassword = "password"

// DemoAccount is one entry of the demo table.
type DemoAccount struct {
	Identity domain.Identity
	Role     domain.Role
}

// DefaultDemoAccounts returns the three built-in demo accounts, one per role.
func DefaultDemoAccounts() []DemoAccount {
	return []DemoAccount{
		{Identity: domain.Identity{ID: "demo-student", Email: "user@example.com"}, Role: domain.RoleStudent},
		{Identity: domain.Identity{ID: "demo-company", Email: "entreprise@example.com"}, Role: domain.RoleCompany},
		{Identity: domain.Identity{ID: "demo-admin", Email: "admin@example.com"}, Role: domain.RoleAdmin},
	}
}

// DemoProvider serves identities from a fixed in-memory table without touching any store.
type DemoProvider struct {
	byEmail map[string]DemoAccount
	byID    map[string]DemoAccount
}

// NewDemoProvider indexes accounts by normalized email and id.
func NewDemoProvider(accounts []DemoAccount) *DemoProvider {
	p := &DemoProvider{
		byEmail: make(map[string]DemoAccount, len(accounts)),
		byID:    make(map[string]DemoAccount, len(accounts)),
	}
	for _, a := range accounts {
		a.Identity.Email = domain.NormalizeEmail(a.Identity.Email)
		a.Identity.Provider = domain.AuthProviderDemo
		a.Identity.RoleHint = string(a.Role)
		p.byEmail[a.Identity.Email] = a
		p.byID[a.Identity.ID] = a
	}
	return p
}

func (p *DemoProvider) Kind() domain.AuthProvider { return domain.AuthProviderDemo }

// Match reports the demo account for email when password is the demo password.
func (p *DemoProvider) Match(email, password string) (DemoAccount, bool) {
	if password != DemoPassword {
		return DemoAccount{}, false
	}
	a, ok := p.byEmail[domain.NormalizeEmail(email)]
	return a, ok
}

// RoleOf returns the canonical role of a demo identity.
func (p *DemoProvider) RoleOf(identity *domain.Identity) (domain.Role, bool) {
	if p == nil || identity == nil {
		return domain.RoleNone, false
	}
	a, ok := p.byID[identity.ID]
	return a.Role, ok
}

func (p *DemoProvider) SignIn(_ context.Context, email, password string) (*domain.Identity, error) {
	a, ok := p.Match(email, password)
	if !ok {
		return nil, ErrNoMatch
	}
	ident := a.Identity
	return &ident, nil
}

// SignOut is a no-op; demo sessions only exist in the agent's memory.
func (p *DemoProvider) SignOut(context.Context, *domain.Identity) error { return nil }
