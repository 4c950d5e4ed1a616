package api

import (
	"encoding/json"
	"net/http"

	"github.com/lucaferri/campusgate/internal/audit"
	"github.com/lucaferri/campusgate/internal/facility"
)

// handleUserTasks lists the caller's tasks, optionally narrowed to one
// area via ?area_id=.
func (s *Server) handleUserTasks(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	tasks, err := s.tasks.ListByUser(r.Context(), claims.Subject, r.URL.Query().Get("area_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// taskUpdateRequest is the body of PUT /user-task-update.
type taskUpdateRequest struct {
	TaskID    string `json:"task_id"`
	Completed bool   `json:"completed"`
}

// handleUserTaskUpdate flips a task's completion flag. A caller may only
// touch their own tasks; anyone else's task returns 403 with no mutation.
func (s *Server) handleUserTaskUpdate(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	var req taskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}
	if req.TaskID == "" {
		writeBadRequest(w, "task_id is required")
		return
	}

	task, err := s.tasks.GetByID(r.Context(), req.TaskID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if task.UserID != claims.Subject {
		s.audit.Record(r.Context(), audit.ActionAccessDenied, claims.Subject, clientAddr(r), req.TaskID)
		s.writeDomainError(w, facility.ErrNotOwner)
		return
	}

	if err := s.tasks.SetCompleted(r.Context(), task.ID, req.Completed); err != nil {
		s.writeDomainError(w, err)
		return
	}
	task.Completed = req.Completed
	writeJSON(w, http.StatusOK, task)
}
