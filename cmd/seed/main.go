// seed inserts sample portal accounts for local testing: one real account per role
// plus one account without a role. Idempotent: skips when the seed student already exists.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"internship-portal/backend/internal/config"
	"internship-portal/backend/internal/db"
	"internship-portal/backend/internal/identity/domain"
	"internship-portal/backend/internal/logger"
	"internship-portal/backend/internal/security"
)

const seedPassword = "password123"

type seedUser struct {
	id        string
	email     string
	role      domain.Role
	firstName string
	lastName  string
	phone     string
	address   string
}

var seedUsers = []seedUser{
	{id: "seed-student-001", email: "student@portal.test", role: domain.RoleStudent, firstName: "Amina", lastName: "Benali", phone: "+33 6 11 22 33 44", address: "12 rue des Écoles, Lyon"},
	{id: "seed-company-001", email: "company@portal.test", role: domain.RoleCompany, firstName: "Claire", lastName: "Martin", phone: "+33 1 40 00 00 00", address: "8 avenue de la République, Paris"},
	{id: "seed-admin-001", email: "admin@portal.test", role: domain.RoleAdmin, firstName: "Marc", lastName: "Leroy", address: "1 place de l'Université, Lyon"},
	// No portal role: signs in but lands on the incomplete-account view.
	{id: "seed-pending-001", email: "pending@portal.test", firstName: "Nora", lastName: "Petit"},
}

const (
	insertUser = `INSERT INTO users (id, email, password_hash, metadata_role, created_at) VALUES ($1, $2, $3, $4, $5)`

	insertPortalUser = `INSERT INTO portal_users (user_id, email, role, last_name, first_name, phone, address, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	insertStudent = `INSERT INTO students (user_id, specialization, level, university, github, internships_completed, reports_submitted)
VALUES ($1, 'Informatique', 'Master 1', 'Université Lyon 1', 'github.com/abenali', 1, 2)`

	insertCompany = `INSERT INTO companies (user_id, company_name, industry, website, description, validation_status, location, offers_published, students_hired)
VALUES ($1, 'Innova Labs', 'Logiciel', 'https://innova.example', 'Studio produit B2B', 'validated', 'Paris', 3, 1)`

	insertAdministrator = `INSERT INTO administrators (user_id, department, position, access_level, school)
VALUES ($1, 'Relations entreprises', 'Responsable des stages', 'full', 'Université Lyon 1')`
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, flush, err := logger.Install(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer flush()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db", zap.Error(err))
	}
	defer conn.Close()

	ctx := context.Background()
	var existing string
	err = conn.QueryRowContext(ctx, `SELECT id FROM users WHERE email = $1`, seedUsers[0].email).Scan(&existing)
	if err == nil {
		log.Info("seed already applied; skipping", zap.String("email", seedUsers[0].email))
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Fatal("seed check", zap.Error(err))
	}

	hash, err := security.NewHasher(cfg.BcryptCost).Hash([]byte(seedPassword))
	if err != nil {
		log.Fatal("hash password", zap.Error(err))
	}
	if err := seed(ctx, conn, hash, time.Now().UTC()); err != nil {
		log.Fatal("seed", zap.Error(err))
	}
	for _, u := range seedUsers {
		log.Info("seeded account", zap.String("email", u.email), zap.String("role", u.role.String()))
	}
	log.Info("all seed accounts share one password", zap.String("password", seedPassword))
}

func seed(ctx context.Context, conn *sql.DB, passwordHash string, now time.Time) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range seedUsers {
		role := nullable(string(u.role))
		if _, err := tx.ExecContext(ctx, insertUser, u.id, u.email, passwordHash, role, now); err != nil {
			return fmt.Errorf("create user %s: %w", u.email, err)
		}
		if _, err := tx.ExecContext(ctx, insertPortalUser, u.id, u.email, role, u.lastName, u.firstName, nullable(u.phone), nullable(u.address), now); err != nil {
			return fmt.Errorf("create portal user %s: %w", u.email, err)
		}
		var ext string
		switch u.role {
		case domain.RoleStudent:
			ext = insertStudent
		case domain.RoleCompany:
			ext = insertCompany
		case domain.RoleAdmin:
			ext = insertAdministrator
		default:
			continue
		}
		if _, err := tx.ExecContext(ctx, ext, u.id); err != nil {
			return fmt.Errorf("create %s extension for %s: %w", u.role, u.email, err)
		}
	}
	return tx.Commit()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
