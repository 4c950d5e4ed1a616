package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lucaferri/campusgate/internal/infrastructure/database"
	_ "github.com/lucaferri/campusgate/migrations"
)

// testDB opens a migrated temp database for repository tests.
func testDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "auth_test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

// createTestUser inserts a user with a pre-hashed password and returns it.
func createTestUser(t *testing.T, users *UserRepository, username string) *User {
	t.Helper()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hashing test password: %v", err)
	}
	user, err := users.Create(context.Background(), username, hash)
	if err != nil {
		t.Fatalf("creating test user %q: %v", username, err)
	}
	return user
}
