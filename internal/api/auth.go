package api

import (
	"net/http"
)

// handleWSTicket exchanges the caller's bearer token for a single-use
// WebSocket ticket, so the token never appears in a URL.
func (s *Server) handleWSTicket(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeUnauthorized(w, "bearer token required")
		return
	}

	ticket := s.tickets.Issue(claims.Subject, claims.Role)
	writeJSON(w, http.StatusOK, map[string]any{
		"ticket":     ticket,
		"expires_in": int(s.tickets.TTL().Seconds()),
	})
}
