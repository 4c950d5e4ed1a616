package auth

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// TokenKind distinguishes the two session token types.
type TokenKind string

const (
	// KindAccess is a short-lived token authorising individual requests.
	KindAccess TokenKind = "access"

	// KindRefresh is a long-lived token used solely to mint new access tokens.
	KindRefresh TokenKind = "refresh"
)

// Valid reports whether k is a known token kind.
func (k TokenKind) Valid() bool {
	return k == KindAccess || k == KindRefresh
}

// Canonical role names. The roles table is open-ended; these six are seeded
// by migration and referenced by route policies.
const (
	RoleStudent     = "student"
	RoleTeacher     = "teacher"
	RoleDirector    = "director"
	RoleEmployee    = "employee"
	RoleOwner       = "owner"
	RoleSystemAdmin = "system-admin"
)

// User represents an account in the credential store.
// The password is stored only as a one-way bcrypt hash, never in plaintext.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialised
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleSet is an unordered set of role names. The empty set is a valid,
// meaningful "no roles" state: it denies every role-gated operation.
type RoleSet map[string]struct{}

// NewRoleSet builds a RoleSet from role names.
func NewRoleSet(names ...string) RoleSet {
	s := make(RoleSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Contains reports whether the set holds the given role name.
func (s RoleSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Intersects reports whether the two sets share at least one role.
func (s RoleSet) Intersects(other RoleSet) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for name := range small {
		if large.Contains(name) {
			return true
		}
	}
	return false
}

// Names returns the role names in sorted order, for stable JSON output.
func (s RoleSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Policy holds the account validation rules from configuration.
type Policy struct {
	MinUsernameLength int
	MinPasswordLength int
}

// ValidateUsername checks a proposed username against the policy.
// Uniqueness is enforced by the repository, not here.
func (p Policy) ValidateUsername(username string) error {
	if len(username) < p.MinUsernameLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrUsernameTooShort, p.MinUsernameLength)
	}
	return nil
}

// ValidatePassword checks a proposed password against the policy.
func (p Policy) ValidatePassword(password string) error {
	if len(password) < p.MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooShort, p.MinPasswordLength)
	}
	return nil
}

// Sentinel errors. The api package resolves these to HTTP statuses and
// user-facing messages; nothing below the boundary formats responses.
var (
	// ErrAuthFailed covers both unknown-user and wrong-password so callers
	// cannot distinguish which field was wrong.
	ErrAuthFailed = errors.New("bad username or password")

	ErrTokenExpired     = errors.New("token has expired")
	ErrSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrWrongKind        = errors.New("wrong token kind")
	ErrNotFresh         = errors.New("fresh token required")
	ErrForbidden        = errors.New("insufficient role")

	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameExists   = errors.New("username already exists")
	ErrUsernameTooShort = errors.New("username too short")
	ErrPasswordTooShort = errors.New("password too short")
	ErrRoleNotFound     = errors.New("role not found")
)
