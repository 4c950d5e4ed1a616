// Package session owns the token lifecycle: login, refresh, logout, and
// the revocation model behind them.
//
// Revocation is implicit. The store keeps exactly one live token
// identifier per (user, kind); minting a new token overwrites the old
// identifier, so the previous token fails its liveness check without any
// blocklist. Logout deletes the identifiers outright.
//
// The store also caches each user's role set so per-request authorisation
// never touches the credential database. The cache fails closed: a user
// with no cached entry has no roles.
package session
