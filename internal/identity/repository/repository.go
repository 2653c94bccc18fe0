package repository

import (
	"context"

	"internship-portal/backend/internal/identity/domain"
)

// Repository defines read access to account credentials and portal roles.
type Repository interface {
	GetCredentialByEmail(ctx context.Context, email string) (*domain.Credential, error)
	GetCredentialByID(ctx context.Context, userID string) (*domain.Credential, error)
	GetRole(ctx context.Context, userID string) (string, bool, error)
}
