package db

import "embed"

// MigrationFS holds the SQL migration files under migrations/.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
