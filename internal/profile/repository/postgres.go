package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	identitydomain "internship-portal/backend/internal/identity/domain"
	"internship-portal/backend/internal/profile/domain"
)

const (
	getBase = `SELECT user_id, email, COALESCE(role, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
COALESCE(phone, ''), COALESCE(address, ''), COALESCE(bio, '')
FROM portal_users WHERE user_id = $1`

	getStudent = `SELECT COALESCE(specialization, ''), COALESCE(level, ''), COALESCE(birth_date, ''),
COALESCE(cv_url, ''), COALESCE(photo_url, ''), COALESCE(university, ''), COALESCE(github, ''),
COALESCE(linkedin, ''), internships_completed, reports_submitted
FROM students WHERE user_id = $1`

	getCompany = `SELECT COALESCE(company_name, ''), COALESCE(industry, ''), COALESCE(website, ''),
COALESCE(description, ''), COALESCE(validation_status, ''), COALESCE(logo_url, ''), COALESCE(location, ''),
offers_published, students_hired
FROM companies WHERE user_id = $1`

	getAdministrator = `SELECT COALESCE(department, ''), COALESCE(position, ''), COALESCE(access_level, ''), COALESCE(school, '')
FROM administrators WHERE user_id = $1`

	updateBase = `UPDATE portal_users SET
first_name = COALESCE($2, first_name),
last_name = COALESCE($3, last_name),
phone = COALESCE($4, phone),
address = COALESCE($5, address),
updated_at = now()
WHERE user_id = $1`
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a profile repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetBase(ctx context.Context, userID string) (*Base, error) {
	var b Base
	err := r.db.QueryRowContext(ctx, getBase, userID).
		Scan(&b.UserID, &b.Email, &b.Role, &b.FirstName, &b.LastName, &b.Phone, &b.Address, &b.Bio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// GetExtension issues exactly one query, against the table of role. RoleNone issues none.
func (r *PostgresRepository) GetExtension(ctx context.Context, role identitydomain.Role, userID string) (domain.Extension, error) {
	var (
		ext domain.Extension
		err error
	)
	switch role {
	case identitydomain.RoleStudent:
		var s domain.StudentExtension
		err = r.db.QueryRowContext(ctx, getStudent, userID).Scan(&s.Specialization, &s.Level, &s.BirthDate, &s.CVURL, &s.PhotoURL,
			&s.University, &s.GitHub, &s.LinkedIn, &s.InternshipsCompleted, &s.ReportsSubmitted)
		ext = s
	case identitydomain.RoleCompany:
		var c domain.CompanyExtension
		err = r.db.QueryRowContext(ctx, getCompany, userID).Scan(&c.CompanyName, &c.Industry, &c.Website, &c.Description, &c.ValidationStatus,
			&c.LogoURL, &c.Location, &c.OffersPublished, &c.StudentsHired)
		ext = c
	case identitydomain.RoleAdmin:
		var a domain.AdminExtension
		err = r.db.QueryRowContext(ctx, getAdministrator, userID).Scan(&a.Department, &a.Position, &a.AccessLevel, &a.School)
		ext = a
	default:
		return nil, nil
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s extension: %w", role, err)
	}
	return domain.WithDefaults(ext), nil
}

// UpdateBase returns ErrNotFound when no row was updated.
func (r *PostgresRepository) UpdateBase(ctx context.Context, userID string, u domain.Update) error {
	res, err := r.db.ExecContext(ctx, updateBase, userID,
		nullable(u.FirstName), nullable(u.LastName), nullable(u.Phone), nullable(u.Address))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
