// internal/server/handlers_dashboard.go
package server

import (
	"net/http"

	stderrors "voluntra-backend/internal/common/errors"
	"voluntra-backend/internal/models"
)

// maxUploadBytes caps document uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// requireIdentity resolves the bearer token and rejects anonymous requests.
func (s *Server) requireIdentity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	identity, err := s.identityFromRequest(r)
	if err != nil {
		writeError(w, err)
		return models.Identity{}, false
	}
	if identity.UID == "" {
		writeError(w, stderrors.NewUnauthenticatedError("missing bearer token"))
		return models.Identity{}, false
	}
	return identity, true
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	records, err := s.dashboard.ApplicationsForUser(r.Context(), identity.UID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"applications": records})
}

func (s *Server) handleApplication(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	record, err := s.dashboard.Application(r.Context(), identity.UID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"application": record,
		"tasks":       s.dashboard.Tasks(record),
	})
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "A file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := s.dashboard.UploadDocument(
		r.Context(),
		identity.UID,
		r.PathValue("id"),
		r.PathValue("taskKey"),
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
