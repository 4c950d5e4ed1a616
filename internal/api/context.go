package api

import (
	"context"

	"github.com/lucaferri/campusgate/internal/auth"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	// ctxKeyRequestID is the context key for the request ID.
	ctxKeyRequestID contextKey = "request_id"

	// ctxKeyClaims is the context key for the verified session claims.
	ctxKeyClaims contextKey = "session_claims"

	// ctxKeyRoles is the context key for the cached role set.
	ctxKeyRoles contextKey = "session_roles"
)

// withSession attaches verified claims and the cached role set to the
// request context.
func withSession(ctx context.Context, claims *auth.Claims, roles auth.RoleSet) context.Context {
	ctx = context.WithValue(ctx, ctxKeyClaims, claims)
	return context.WithValue(ctx, ctxKeyRoles, roles)
}

// sessionClaims returns the verified claims, or nil for an
// unauthenticated request on an optional-session route.
func sessionClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(ctxKeyClaims).(*auth.Claims)
	return claims
}

// sessionRoles returns the cached role set. Absent means no roles.
func sessionRoles(ctx context.Context) auth.RoleSet {
	roles, ok := ctx.Value(ctxKeyRoles).(auth.RoleSet)
	if !ok {
		return auth.NewRoleSet()
	}
	return roles
}
