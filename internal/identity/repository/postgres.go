package repository

import (
	"context"
	"database/sql"
	"errors"

	"internship-portal/backend/internal/identity/domain"
)

const (
	credentialColumns = `id, email, password_hash, COALESCE(metadata_role, '')`

	getCredentialByEmail = `SELECT ` + credentialColumns + ` FROM users WHERE email = $1`
	getCredentialByID    = `SELECT ` + credentialColumns + ` FROM users WHERE id = $1`
	getRole              = `SELECT role FROM portal_users WHERE user_id = $1`
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an identity repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetCredentialByEmail returns the credential for email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetCredentialByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	return r.scanCredential(r.db.QueryRowContext(ctx, getCredentialByEmail, domain.NormalizeEmail(email)))
}

// GetCredentialByID returns the credential for userID, or nil if not found.
func (r *PostgresRepository) GetCredentialByID(ctx context.Context, userID string) (*domain.Credential, error) {
	return r.scanCredential(r.db.QueryRowContext(ctx, getCredentialByID, userID))
}

func (r *PostgresRepository) scanCredential(row *sql.Row) (*domain.Credential, error) {
	var c domain.Credential
	if err := row.Scan(&c.UserID, &c.Email, &c.PasswordHash, &c.MetadataRole); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// GetRole returns the raw role label stored for userID. found is false when the
// user has no portal row or the role column is NULL.
func (r *PostgresRepository) GetRole(ctx context.Context, userID string) (string, bool, error) {
	var role sql.NullString
	if err := r.db.QueryRowContext(ctx, getRole, userID).Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	if !role.Valid || role.String == "" {
		return "", false, nil
	}
	return role.String, true, nil
}
