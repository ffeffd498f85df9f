// internal/server/handlers_catalog.go
package server

import (
	"net/http"
)

func (s *Server) handlePrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := s.catalog.Programs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"programs": programs})
}

func (s *Server) handleProgramBySlug(w http.ResponseWriter, r *http.Request) {
	program, err := s.catalog.ProgramBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, program)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.catalog.Page(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.catalog.Settings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
