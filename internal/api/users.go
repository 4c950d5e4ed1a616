package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lucaferri/campusgate/internal/audit"
	"github.com/lucaferri/campusgate/internal/auth"
)

// userResponse is a user record with the password hash stripped and the
// role list attached.
type userResponse struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
	RoleList  []string `json:"role_list"`
}

func newUserResponse(user *auth.User, roles auth.RoleSet) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
		RoleList:  roles.Names(),
	}
}

// handleUserData returns the caller's own account record.
func (s *Server) handleUserData(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	user, err := s.users.GetByID(r.Context(), claims.Subject)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user, sessionRoles(r.Context())))
}

// handleUpdateUsername changes the caller's username. The new name is the
// raw request body. Fresh-token gating is enforced by the route.
func (s *Server) handleUpdateUsername(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	username, ok := rawBody(w, r)
	if !ok {
		return
	}
	if err := s.policy.ValidateUsername(username); err != nil {
		s.writeDomainError(w, err)
		return
	}

	if err := s.users.UpdateUsername(r.Context(), claims.Subject, username); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.audit.Record(r.Context(), audit.ActionUsernameChange, claims.Subject, clientAddr(r), "")
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Username updated successfully"})
}

// handleUpdatePassword changes the caller's password. The new password is
// the raw request body.
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	password, ok := rawBody(w, r)
	if !ok {
		return
	}
	if err := s.policy.ValidatePassword(password); err != nil {
		s.writeDomainError(w, err)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.users.UpdatePassword(r.Context(), claims.Subject, hash); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.audit.Record(r.Context(), audit.ActionPasswordChange, claims.Subject, clientAddr(r), "")
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Password updated successfully"})
}

// handleInsertUser creates an account, optionally with an initial role.
// The route is gated to owner and system-admin sessions.
func (s *Server) handleInsertUser(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "malformed form body")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	rolename := r.PostFormValue("rolename")

	if err := s.policy.ValidateUsername(username); err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.policy.ValidatePassword(password); err != nil {
		s.writeDomainError(w, err)
		return
	}
	// The role name is checked before the insert so a rejected request
	// never leaves a role-less account behind.
	if rolename != "" {
		ok, err := s.roles.Exists(r.Context(), rolename)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		if !ok {
			s.writeDomainError(w, fmt.Errorf("%w: %q", auth.ErrRoleNotFound, rolename))
			return
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	user, err := s.users.Create(r.Context(), username, hash)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	roles := auth.NewRoleSet()
	if rolename != "" {
		if err := s.roles.Assign(r.Context(), user.ID, rolename); err != nil {
			s.writeDomainError(w, err)
			return
		}
		roles = auth.NewRoleSet(rolename)
	}

	s.audit.Record(r.Context(), audit.ActionUserCreated, claims.Subject, clientAddr(r), user.ID)
	writeJSON(w, http.StatusOK, newUserResponse(user, roles))
}

// rawBody reads the whole request body as a trimmed string, per the
// update-username/update-password wire format.
func rawBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "unreadable request body")
		return "", false
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		writeBadRequest(w, "request body is required")
		return "", false
	}
	return value, true
}
