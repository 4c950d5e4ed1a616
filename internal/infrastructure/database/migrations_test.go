package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lucaferri/campusgate/internal/infrastructure/database"
	_ "github.com/lucaferri/campusgate/migrations"
)

func openMigratedDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "migrate.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestMigrate_CreatesSchema(t *testing.T) {
	db := openMigratedDB(t)
	ctx := context.Background()

	for _, table := range []string{"users", "roles", "user_roles", "areas", "machines", "tasks", "audit_logs"} {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q missing after migration: %v", table, err)
		}
	}
}

func TestMigrate_SeedsCanonicalRoles(t *testing.T) {
	db := openMigratedDB(t)

	var count int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM roles WHERE name IN ('student','teacher','director','employee','owner','system-admin')",
	).Scan(&count)
	if err != nil {
		t.Fatalf("counting roles: %v", err)
	}
	if count != 6 {
		t.Errorf("canonical roles seeded = %d, want 6", count)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openMigratedDB(t)

	// Re-running must be a no-op, not a duplicate-table error.
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestMigrateDown_RollsBackLatest(t *testing.T) {
	db := openMigratedDB(t)
	ctx := context.Background()

	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}

	// Latest migration is the audit schema; its table should be gone.
	var name string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'audit_logs'",
	).Scan(&name)
	if err == nil {
		t.Error("audit_logs should be dropped after MigrateDown()")
	}

	// users is from an earlier migration and must survive.
	err = db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'users'",
	).Scan(&name)
	if err != nil {
		t.Errorf("users table should survive MigrateDown(): %v", err)
	}
}
