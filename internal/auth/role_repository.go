package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lucaferri/campusgate/internal/infrastructure/database"
)

// RoleRepository persists role names and user-role assignments.
type RoleRepository struct {
	db *database.DB
}

// NewRoleRepository creates a repository backed by the given database.
func NewRoleRepository(db *database.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Exists reports whether a role name is known.
func (r *RoleRepository) Exists(ctx context.Context, name string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM roles WHERE name = ?", name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("role exists: %w", err)
	}
	return true, nil
}

// Create adds a new role name. Creating an existing role is a no-op.
func (r *RoleRepository) Create(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, "INSERT OR IGNORE INTO roles (name) VALUES (?)", name); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// Assign grants a role to a user. Assigning an already-held role is a
// no-op. Returns ErrRoleNotFound for an unknown role name.
func (r *RoleRepository) Assign(ctx context.Context, userID, roleName string) error {
	ok, err := r.Exists(ctx, roleName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrRoleNotFound, roleName)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_roles (user_id, role_name) VALUES (?, ?)`,
		userID, roleName,
	)
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

// RolesForUser returns the set of roles held by a user. A user with no
// assignments gets an empty set, not an error.
func (r *RoleRepository) RolesForUser(ctx context.Context, userID string) (RoleSet, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT role_name FROM user_roles WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("roles for user: %w", err)
	}
	defer rows.Close()

	roles := make(RoleSet)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles for user: %w", err)
	}
	return roles, nil
}
