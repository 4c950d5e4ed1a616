package api

import "net/http"

// handleMachines lists machines, optionally narrowed to one area via
// ?area_id=. The route is gated to staff roles.
func (s *Server) handleMachines(w http.ResponseWriter, r *http.Request) {
	machines, err := s.machines.List(r.Context(), r.URL.Query().Get("area_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"machines": machines})
}

// handlePublicArea greets any caller holding one of the allowed roles.
func (s *Server) handlePublicArea(w http.ResponseWriter, r *http.Request) {
	s.handleAreaGreeting(w, r, " entered the public area")
}

// handleTeachersArea greets any caller not holding a denied role.
func (s *Server) handleTeachersArea(w http.ResponseWriter, r *http.Request) {
	s.handleAreaGreeting(w, r, " entered the teachers area")
}

func (s *Server) handleAreaGreeting(w http.ResponseWriter, r *http.Request, suffix string) {
	claims := sessionClaims(r.Context())

	user, err := s.users.GetByID(r.Context(), claims.Subject)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": user.Username + suffix})
}
