package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lucaferri/campusgate/internal/auth"
)

// TokenPair is the result of a password login. UserID identifies the
// session owner for logging and auditing; it never enters the response body.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"-"`
}

// Config carries the token lifetimes.
type Config struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Manager drives the session lifecycle on top of the codec, the
// credential repositories, and the session store.
type Manager struct {
	codec  *auth.Codec
	store  Store
	users  *auth.UserRepository
	roles  *auth.RoleRepository
	cfg    Config
	logger *slog.Logger
}

// NewManager wires a session manager.
func NewManager(codec *auth.Codec, store Store, users *auth.UserRepository, roles *auth.RoleRepository, cfg Config, logger *slog.Logger) *Manager {
	return &Manager{
		codec:  codec,
		store:  store,
		users:  users,
		roles:  roles,
		cfg:    cfg,
		logger: logger,
	}
}

// Login checks credentials and starts a new session: a fresh access token
// and a refresh token, both registered as the single live tokens for the
// user. Any previous session tokens become revoked by the overwrite.
// Unknown username and wrong password both return ErrAuthFailed.
func (m *Manager) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := m.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	access, accessID, err := m.codec.Mint(user.ID, auth.KindAccess, true, m.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	refresh, refreshID, err := m.codec.Mint(user.ID, auth.KindRefresh, false, m.cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := m.store.SetTokenID(ctx, user.ID, auth.KindAccess, accessID, m.cfg.AccessTTL); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := m.store.SetTokenID(ctx, user.ID, auth.KindRefresh, refreshID, m.cfg.RefreshTTL); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := m.cacheRoles(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	m.logger.Info("user logged in", "user_id", user.ID)
	return &TokenPair{AccessToken: access, RefreshToken: refresh, UserID: user.ID}, nil
}

// FreshLogin re-checks the password for an already-authenticated user and
// issues a new fresh access token, without touching the refresh token.
// Used to gate sensitive operations behind a recent password entry.
func (m *Manager) FreshLogin(ctx context.Context, username, password string) (access string, userID string, err error) {
	user, err := m.authenticate(ctx, username, password)
	if err != nil {
		return "", "", err
	}

	access, accessID, err := m.codec.Mint(user.ID, auth.KindAccess, true, m.cfg.AccessTTL)
	if err != nil {
		return "", "", fmt.Errorf("fresh login: %w", err)
	}
	if err := m.store.SetTokenID(ctx, user.ID, auth.KindAccess, accessID, m.cfg.AccessTTL); err != nil {
		return "", "", fmt.Errorf("fresh login: %w", err)
	}
	if err := m.cacheRoles(ctx, user.ID); err != nil {
		return "", "", fmt.Errorf("fresh login: %w", err)
	}

	m.logger.Info("fresh login", "user_id", user.ID)
	return access, user.ID, nil
}

// Refresh exchanges a live refresh token for a new non-fresh access token
// and reports which user it belongs to. The refresh token itself is not
// rotated; it stays live until it expires, the user logs in again, or the
// user logs out.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (access string, userID string, err error) {
	claims, err := m.Authenticate(ctx, refreshToken, auth.KindRefresh, false)
	if err != nil {
		return "", "", err
	}

	access, accessID, err := m.codec.Mint(claims.Subject, auth.KindAccess, false, m.cfg.AccessTTL)
	if err != nil {
		return "", "", fmt.Errorf("refresh: %w", err)
	}
	if err := m.store.SetTokenID(ctx, claims.Subject, auth.KindAccess, accessID, m.cfg.AccessTTL); err != nil {
		return "", "", fmt.Errorf("refresh: %w", err)
	}
	return access, claims.Subject, nil
}

// Logout revokes the user's whole session: both live token identifiers
// and the cached roles are deleted, so any outstanding token fails its
// next liveness check.
func (m *Manager) Logout(ctx context.Context, userID string) error {
	if err := m.store.DeleteTokenID(ctx, userID, auth.KindAccess); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if err := m.store.DeleteTokenID(ctx, userID, auth.KindRefresh); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if err := m.store.DeleteRoles(ctx, userID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	m.logger.Info("user logged out", "user_id", userID)
	return nil
}

// Authenticate fully validates a presented token: signature, expiry, kind,
// optional freshness, then liveness against the store. This is the single
// entry point the HTTP middleware uses.
func (m *Manager) Authenticate(ctx context.Context, tokenString string, kind auth.TokenKind, requireFresh bool) (*auth.Claims, error) {
	claims, err := m.codec.Verify(tokenString, kind, requireFresh)
	if err != nil {
		return nil, err
	}
	if err := m.checkLiveness(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// checkLiveness compares the token's identifier against the stored live
// one. A missing or different identifier means the token was revoked,
// whether by logout, by a newer login, or by store-side expiry.
func (m *Manager) checkLiveness(ctx context.Context, claims *auth.Claims) error {
	liveID, err := m.store.GetTokenID(ctx, claims.Subject, claims.Kind)
	if err != nil {
		return fmt.Errorf("liveness check: %w", err)
	}
	if liveID == "" || liveID != claims.ID {
		return auth.ErrTokenRevoked
	}
	return nil
}

// CachedRoles returns the role set from the session store. No cached
// entry means no roles; authorisation never falls back to the database.
func (m *Manager) CachedRoles(ctx context.Context, userID string) (auth.RoleSet, error) {
	roles, ok, err := m.store.GetRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cached roles: %w", err)
	}
	if !ok {
		return auth.NewRoleSet(), nil
	}
	return roles, nil
}

// RefreshRoleCache re-reads the user's roles from the database and
// replaces the cached set. Called after role assignments change.
func (m *Manager) RefreshRoleCache(ctx context.Context, userID string) error {
	if err := m.cacheRoles(ctx, userID); err != nil {
		return fmt.Errorf("refresh role cache: %w", err)
	}
	return nil
}

func (m *Manager) authenticate(ctx context.Context, username, password string) (*auth.User, error) {
	user, err := m.users.GetByUsername(ctx, username)
	if errors.Is(err, auth.ErrUserNotFound) {
		return nil, auth.ErrAuthFailed
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, auth.ErrAuthFailed
	}
	return user, nil
}

// cacheRoles snapshots the user's roles into the store. The cache lives
// as long as a refresh token can, so a session never outlives its roles.
func (m *Manager) cacheRoles(ctx context.Context, userID string) error {
	roles, err := m.roles.RolesForUser(ctx, userID)
	if err != nil {
		return err
	}
	return m.store.SetRoles(ctx, userID, roles, m.cfg.RefreshTTL)
}
