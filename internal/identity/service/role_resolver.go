package service

import (
	"context"

	"go.uber.org/zap"

	"internship-portal/backend/internal/identity/domain"
	"internship-portal/backend/internal/logger"
)

// RoleLookup is the minimal role repository needed by the resolver.
type RoleLookup interface {
	GetRole(ctx context.Context, userID string) (string, bool, error)
}

// DemoRoles resolves demo identities without a store round trip.
type DemoRoles interface {
	RoleOf(identity *domain.Identity) (domain.Role, bool)
}

// RoleResolver maps an identity to its portal role: the role table first,
// then the identity's own role hint.
type RoleResolver struct {
	lookup RoleLookup
	demo   DemoRoles
	log    *zap.Logger
}

// NewRoleResolver returns a resolver. lookup may be nil (demo-only agent);
// demo may be nil when demo accounts are disabled.
func NewRoleResolver(lookup RoleLookup, demo DemoRoles, log *zap.Logger) *RoleResolver {
	return &RoleResolver{lookup: lookup, demo: demo, log: logger.OrGlobal(log)}
}

// Resolve never fails. Lookup errors, missing rows and unknown labels fall back
// to the role hint; with neither, the result is RoleNone.
func (r *RoleResolver) Resolve(ctx context.Context, identity *domain.Identity) domain.Role {
	if identity == nil {
		return domain.RoleNone
	}
	if identity.IsDemo() {
		if r.demo != nil {
			if role, ok := r.demo.RoleOf(identity); ok {
				return role
			}
		}
		return hint(identity)
	}
	if r.lookup != nil {
		raw, found, err := r.lookup.GetRole(ctx, identity.ID)
		switch {
		case err != nil:
			r.log.Warn("role lookup failed; using role hint", zap.String("user_id", identity.ID), zap.Error(err))
		case found:
			if role, ok := domain.ParseRole(raw); ok {
				return role
			}
			r.log.Warn("unrecognised stored role; using role hint", zap.String("user_id", identity.ID), zap.String("role", raw))
		}
	}
	return hint(identity)
}

func hint(identity *domain.Identity) domain.Role {
	role, _ := domain.ParseRole(identity.RoleHint)
	return role
}
