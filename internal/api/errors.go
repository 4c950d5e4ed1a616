package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lucaferri/campusgate/internal/auth"
	"github.com/lucaferri/campusgate/internal/facility"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeForbidden    = "forbidden"
	ErrCodeInternal     = "internal_error"
	ErrCodeUpstream     = "upstream_unavailable"
)

// ValidationError is the response shape for policy violations. The
// exceptionType field lets clients branch without parsing the message.
type ValidationError struct {
	Msg           string `json:"msg"`
	ExceptionType string `json:"exceptionType"`
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeValidationError writes a 400 policy-violation response.
func writeValidationError(w http.ResponseWriter, msg, exceptionType string) {
	writeJSON(w, http.StatusBadRequest, ValidationError{
		Msg:           msg,
		ExceptionType: exceptionType,
	})
}

// writeDomainError resolves a sentinel error from the lower layers to an
// HTTP response. This is the only place error kinds map onto statuses;
// anything unrecognised is an infrastructure failure and fails closed
// as a 500.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrAuthFailed):
		writeUnauthorized(w, auth.ErrAuthFailed.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		writeUnauthorized(w, "token has expired")
	case errors.Is(err, auth.ErrSignatureInvalid):
		writeUnauthorized(w, "token signature is invalid")
	case errors.Is(err, auth.ErrTokenRevoked):
		writeUnauthorized(w, "token has been revoked")
	case errors.Is(err, auth.ErrWrongKind):
		writeUnauthorized(w, "wrong token kind")
	case errors.Is(err, auth.ErrNotFresh):
		writeUnauthorized(w, "fresh token required")
	case errors.Is(err, auth.ErrTokenInvalid):
		writeUnauthorized(w, "invalid token")
	case errors.Is(err, auth.ErrForbidden):
		writeForbidden(w, "insufficient role")
	case errors.Is(err, facility.ErrNotOwner):
		writeForbidden(w, facility.ErrNotOwner.Error())
	case errors.Is(err, auth.ErrUserNotFound):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, facility.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "task not found")
	case errors.Is(err, auth.ErrUsernameTooShort):
		writeValidationError(w, err.Error(), "UsernameTooShortException")
	case errors.Is(err, auth.ErrPasswordTooShort):
		writeValidationError(w, err.Error(), "PasswordTooShortException")
	case errors.Is(err, auth.ErrUsernameExists):
		writeValidationError(w, err.Error(), "UsernameAlreadyExistingException")
	case errors.Is(err, auth.ErrRoleNotFound):
		writeValidationError(w, err.Error(), "RoleNotFoundException")
	default:
		s.logger.Error("internal error", "error", err)
		writeInternalError(w, "internal server error")
	}
}
