package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// maxIDLen bounds data point identifiers taken from the URL.
const maxIDLen = 256

// setStateRequest is the body of PUT /states/{id}.
type setStateRequest struct {
	// Value is written as-is. In demo mode a null value asks for a
	// generated one.
	Value any `json:"value"`
}

// handleListStates returns every cached value.
func (s *Server) handleListStates(w http.ResponseWriter, _ *http.Request) {
	states := s.core.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"states": states,
		"count":  len(states),
	})
}

// handleGetState returns one cached value.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	id, ok := pointID(w, r)
	if !ok {
		return
	}

	st, found := s.core.Get(id)
	if !found {
		writeNotFound(w, "no value for "+id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"val":     st.Value,
		"ts":      st.Timestamp,
		"watched": s.core.IsWatched(id),
	})
}

// handleSetState forwards a write. It answers 202: the new value is only
// confirmed when it comes back from the backend.
func (s *Server) handleSetState(w http.ResponseWriter, r *http.Request) {
	id, ok := pointID(w, r)
	if !ok {
		return
	}

	var req setStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	s.commands.Send(r.Context(), id, req.Value)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"id":     id,
		"status": "accepted",
		"demo":   s.commands.Demo(),
	})
}

func pointID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if id == "" || len(id) > maxIDLen {
		writeBadRequest(w, "invalid data point ID")
		return "", false
	}
	return id, true
}
