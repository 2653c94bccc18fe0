package repository

import (
	"context"
	"errors"

	identitydomain "internship-portal/backend/internal/identity/domain"
	"internship-portal/backend/internal/profile/domain"
)

// ErrNotFound is returned by UpdateBase when the user has no base record.
var ErrNotFound = errors.New("profile not found")

// Base is the role-independent profile row.
type Base struct {
	UserID    string
	Email     string
	Role      string
	FirstName string
	LastName  string
	Phone     string
	Address   string
	Bio       string
}

// Repository reads and writes profile records.
type Repository interface {
	// GetBase returns nil, nil when the user has no base record.
	GetBase(ctx context.Context, userID string) (*Base, error)
	// GetExtension returns nil, nil when the role table has no row for the user.
	GetExtension(ctx context.Context, role identitydomain.Role, userID string) (domain.Extension, error)
	// UpdateBase writes the non-nil contact and name fields of u.
	UpdateBase(ctx context.Context, userID string, u domain.Update) error
}
