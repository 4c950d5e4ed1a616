// Package migrations embeds SQL migration files into the binary, so
// CampusGate can migrate its schema without loose .sql files on disk.
package migrations

import (
	"embed"

	"github.com/lucaferri/campusgate/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	// Register embedded migrations with the database package.
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
