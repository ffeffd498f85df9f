// internal/server/handlers_payments.go
package server

import (
	"encoding/json"
	"io"
	"net/http"
)

// maxWebhookBytes bounds the webhook payload read.
const maxWebhookBytes = 64 << 10

type createIntentRequest struct {
	ApplicationID string `json:"applicationId"`
	ProgramID     string `json:"programId"`
}

func (s *Server) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Only the record owner can open a payment for it.
	if _, err := s.dashboard.Application(r.Context(), identity.UID, req.ApplicationID); err != nil {
		writeError(w, err)
		return
	}

	intent, err := s.payments.CreateSetupFeeIntent(r.Context(), req.ApplicationID, identity.UID, req.ProgramID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, intent)
}

func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		http.Error(w, "Failed to read payload", http.StatusBadRequest)
		return
	}

	if err := s.webhooks.Process(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
