package api

import (
	"net/http"
	"strconv"

	"github.com/lucaferri/campusgate/internal/audit"
)

// handleAuditLog returns the audit trail, newest first. Supports
// ?action=, ?user_id= and ?limit= filters. Gated to system-admin/owner.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	filter := audit.Filter{
		Action: r.URL.Query().Get("action"),
		UserID: r.URL.Query().Get("user_id"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	entries, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
