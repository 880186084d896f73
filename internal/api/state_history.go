package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/tileboard/internal/history"
)

// historyResponse is one journal entry as served over HTTP.
type historyResponse struct {
	Val        any    `json:"val"`
	Ts         int64  `json:"ts"`
	RecordedAt string `json:"recorded_at"`
}

// handleGetStateHistory returns the most recent journal entries for a
// data point, newest first.
func (s *Server) handleGetStateHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeUnavailable(w, "history is disabled")
		return
	}

	id, ok := pointID(w, r)
	if !ok {
		return
	}

	limit, err := parseHistoryLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	entries, err := s.history.Recent(r.Context(), id, limit)
	if err != nil {
		s.logger.Error("history query failed", "id", id, "error", err)
		writeInternalError(w, "failed to read history")
		return
	}

	out := make([]historyResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyResponse{
			Val:        e.State.Value,
			Ts:         e.State.Timestamp,
			RecordedAt: e.RecordedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"entries": out,
		"count":   len(out),
	})
}

// parseHistoryLimit parses the limit query parameter with bounds enforcement.
func parseHistoryLimit(raw string) (int, error) {
	if raw == "" {
		return history.DefaultLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("invalid limit")
	}
	if limit > history.MaxLimit {
		return 0, fmt.Errorf("limit exceeds maximum of %d", history.MaxLimit)
	}
	return limit, nil
}
