package session

import (
	"context"
	"time"

	"github.com/lucaferri/campusgate/internal/auth"
)

// Store is the session state backend. Implementations must be safe for
// concurrent use. All values carry a TTL; an expired entry behaves exactly
// like a deleted one.
type Store interface {
	// SetTokenID records the live token identifier for (user, kind),
	// replacing any previous one. Replacement is what revokes the old token.
	SetTokenID(ctx context.Context, userID string, kind auth.TokenKind, tokenID string, ttl time.Duration) error

	// GetTokenID returns the live token identifier for (user, kind), or
	// "" when none is stored.
	GetTokenID(ctx context.Context, userID string, kind auth.TokenKind) (string, error)

	// DeleteTokenID removes the live token identifier for (user, kind).
	// Deleting an absent entry is not an error.
	DeleteTokenID(ctx context.Context, userID string, kind auth.TokenKind) error

	// SetRoles caches the user's role set.
	SetRoles(ctx context.Context, userID string, roles auth.RoleSet, ttl time.Duration) error

	// GetRoles returns the cached role set. ok is false when no entry
	// exists; callers must treat that as "no roles", never as "allow".
	GetRoles(ctx context.Context, userID string) (roles auth.RoleSet, ok bool, err error)

	// DeleteRoles drops the cached role set.
	DeleteRoles(ctx context.Context, userID string) error

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Key layout shared by all store implementations.
func tokenKey(userID string, kind auth.TokenKind) string {
	return "user_" + userID + ":" + string(kind) + "_token_identifier"
}

func rolesKey(userID string) string {
	return "user_" + userID + ":roles"
}
