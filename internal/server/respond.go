// internal/server/respond.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	stderrors "voluntra-backend/internal/common/errors"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeError renders any error as the standard error envelope. Unstructured
// errors are masked behind a generic 500 so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	var stdErr *stderrors.StandardError
	if !errors.As(err, &stdErr) {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": map[string]interface{}{
				"code":    "INTERNAL",
				"message": "Internal server error",
			},
		})
		return
	}
	writeJSON(w, statusFor(stdErr.Code), map[string]interface{}{"error": stdErr})
}

func statusFor(code stderrors.ErrorCode) int {
	switch code {
	case stderrors.ErrCodeUnauthenticated, stderrors.ErrCodeTokenInvalid:
		return http.StatusUnauthorized
	case stderrors.ErrCodeDocumentNotFound:
		return http.StatusNotFound
	case stderrors.ErrCodeIncompleteField, stderrors.ErrCodeMissingConsent,
		stderrors.ErrCodeRecordInvalid, stderrors.ErrCodeWebhookInvalid,
		stderrors.ErrCodeDurationNotOffered:
		return http.StatusBadRequest
	case stderrors.ErrCodeDuplicateSubmission, stderrors.ErrCodeSubmissionInFlight:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
