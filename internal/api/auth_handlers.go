package api

import (
	"errors"
	"net/http"

	"github.com/lucaferri/campusgate/internal/audit"
	"github.com/lucaferri/campusgate/internal/auth"
)

// handleLogin starts a session from form credentials. A successful login
// replaces any previous session for the user: last login wins.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username, password, ok := formCredentials(w, r)
	if !ok {
		return
	}

	pair, err := s.sessions.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthFailed) {
			s.audit.Record(r.Context(), audit.ActionLoginFailed, "", clientAddr(r), username)
		}
		s.writeDomainError(w, err)
		return
	}

	s.audit.Record(r.Context(), audit.ActionLogin, pair.UserID, clientAddr(r), "")
	writeJSON(w, http.StatusOK, pair)
}

// handleFreshLogin re-authenticates with the password and returns a new
// fresh access token, leaving the refresh token untouched.
func (s *Server) handleFreshLogin(w http.ResponseWriter, r *http.Request) {
	username, password, ok := formCredentials(w, r)
	if !ok {
		return
	}

	access, userID, err := s.sessions.FreshLogin(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthFailed) {
			s.audit.Record(r.Context(), audit.ActionLoginFailed, "", clientAddr(r), username)
		}
		s.writeDomainError(w, err)
		return
	}

	s.audit.Record(r.Context(), audit.ActionFreshLogin, userID, clientAddr(r), "")
	writeJSON(w, http.StatusOK, map[string]string{"access_token": access})
}

// handleRefresh exchanges the presented refresh token for a new non-fresh
// access token. The refresh middleware has already checked liveness.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	access, userID, err := s.sessions.Refresh(r.Context(), bearerToken(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.audit.Record(r.Context(), audit.ActionRefresh, userID, clientAddr(r), "")
	writeJSON(w, http.StatusOK, map[string]string{"access_token": access})
}

// handleLogout revokes the whole session before responding.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	if err := s.sessions.Logout(r.Context(), claims.Subject); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.audit.Record(r.Context(), audit.ActionLogout, claims.Subject, clientAddr(r), "")
	writeJSON(w, http.StatusOK, map[string]string{"msg": "logged out"})
}

// formCredentials reads username and password form fields, writing a 400
// and returning ok=false when either is missing.
func formCredentials(w http.ResponseWriter, r *http.Request) (username, password string, ok bool) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "malformed form body")
		return "", "", false
	}
	username = r.PostFormValue("username")
	password = r.PostFormValue("password")
	if username == "" || password == "" {
		writeBadRequest(w, "username and password are required")
		return "", "", false
	}
	return username, password, true
}
