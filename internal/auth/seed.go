package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// SeedOwner creates the initial owner account on an empty credential store
// so a fresh deployment is never locked out. It does nothing if any user
// already exists. The generated password is returned so the caller can log
// it once at startup; it is not stored anywhere in plaintext.
func SeedOwner(ctx context.Context, users *UserRepository, roles *RoleRepository, logger *slog.Logger) (string, error) {
	count, err := users.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("seed owner: %w", err)
	}
	if count > 0 {
		return "", nil
	}

	password, err := randomPassword()
	if err != nil {
		return "", fmt.Errorf("seed owner: %w", err)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("seed owner: %w", err)
	}

	user, err := users.Create(ctx, "owner", hash)
	if err != nil {
		return "", fmt.Errorf("seed owner: %w", err)
	}
	for _, role := range []string{RoleOwner, RoleSystemAdmin} {
		if err := roles.Assign(ctx, user.ID, role); err != nil {
			return "", fmt.Errorf("seed owner: %w", err)
		}
	}

	logger.Warn("seeded initial owner account; change this password immediately",
		"user_id", user.ID,
		"username", user.Username,
	)
	return password, nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
