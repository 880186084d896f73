package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/tileboard/internal/dashboard"
)

// handleListPages lists the configured pages and which one is open.
func (s *Server) handleListPages(w http.ResponseWriter, _ *http.Request) {
	pages := s.pages.Pages()
	if pages == nil {
		pages = []dashboard.PageInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pages":   pages,
		"current": s.pages.Current(),
	})
}

// handleCurrentPage returns the open page with every element's current
// rendering. A browser that missed patches can resync from it.
func (s *Server) handleCurrentPage(w http.ResponseWriter, _ *http.Request) {
	page, ok := s.core.Page()
	if !ok {
		writeNotFound(w, "no page open")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleOpenPage navigates every connected browser to the named page.
func (s *Server) handleOpenPage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.pages.Open(name); err != nil {
		switch {
		case errors.Is(err, dashboard.ErrPageNotFound):
			writeNotFound(w, "page not found: "+name)
		case errors.Is(err, dashboard.ErrNoPages):
			writeUnavailable(w, "no page configuration loaded")
		default:
			s.logger.Error("opening page failed", "page", name, "error", err)
			writeInternalError(w, "failed to open page")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"current": name})
}

// handleReloadPages re-reads the page file and reopens the current page.
func (s *Server) handleReloadPages(w http.ResponseWriter, _ *http.Request) {
	if err := s.pages.Reload(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pages":   len(s.pages.Pages()),
		"current": s.pages.Current(),
	})
}
