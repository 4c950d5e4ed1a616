package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lucaferri/campusgate/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
// Session and role middleware are composed explicitly per route; nothing
// is protected by default.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	accessSession := s.verifySession(sessionOptions{kind: auth.KindAccess})
	freshSession := s.verifySession(sessionOptions{kind: auth.KindAccess, requireFresh: true})
	refreshSession := s.verifySession(sessionOptions{kind: auth.KindRefresh})
	optionalSession := s.verifySession(sessionOptions{kind: auth.KindAccess, optional: true})

	// Public surface
	r.With(optionalSession).Get("/", s.handleBanner)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
	r.Post("/login", s.handleLogin)
	r.Post("/fresh-login", s.handleFreshLogin)

	// Token lifecycle
	r.With(refreshSession).Get("/refresh", s.handleRefresh)
	r.With(refreshSession).Post("/refresh", s.handleRefresh)
	r.With(accessSession).Delete("/logout", s.handleLogout)

	// Account management
	r.With(accessSession).Get("/user-data", s.handleUserData)
	r.With(freshSession).Put("/update-username", s.handleUpdateUsername)
	r.With(freshSession).Put("/update-password", s.handleUpdatePassword)
	r.With(accessSession, s.requireRole(auth.NewRoleSet(auth.RoleOwner, auth.RoleSystemAdmin))).
		Post("/insert-user", s.handleInsertUser)

	// Tasks and machines
	r.With(accessSession).Get("/user-tasks", s.handleUserTasks)
	r.With(accessSession).Put("/user-task-update", s.handleUserTaskUpdate)
	r.With(accessSession, s.requireRole(auth.NewRoleSet(auth.RoleEmployee, auth.RoleSystemAdmin, auth.RoleOwner))).
		Get("/machines", s.handleMachines)

	// Downstream sensor API pass-through
	r.With(accessSession).Get("/monitoring", s.handleMonitoring)
	r.With(accessSession).Get("/querying", s.handleQuerying)
	r.With(accessSession).Get("/get-sensor-info", s.handleSensorInfo)

	// Role demonstration routes
	r.With(accessSession, s.requireRole(auth.NewRoleSet(auth.RoleStudent, auth.RoleTeacher, auth.RoleDirector))).
		Get("/public", s.handlePublicArea)
	r.With(accessSession, s.forbidRole(auth.NewRoleSet(auth.RoleStudent))).
		Get("/teachers-only", s.handleTeachersArea)

	// Audit trail
	r.With(accessSession, s.requireRole(auth.NewRoleSet(auth.RoleSystemAdmin, auth.RoleOwner))).
		Get("/audit-log", s.handleAuditLog)

	return r
}

// handleBanner confirms the service is up. Authenticated callers get
// their username back; anonymous ones just get the banner.
func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"message": "Authentication Service is online",
		"version": s.version,
	}
	if claims := sessionClaims(r.Context()); claims != nil {
		if user, err := s.users.GetByID(r.Context(), claims.Subject); err == nil {
			response["username"] = user.Username
		}
	}
	writeJSON(w, http.StatusOK, response)
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	if s.store != nil {
		if err := s.store.HealthCheck(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, map[string]any{
		"status":  status,
		"version": s.version,
	})
}
