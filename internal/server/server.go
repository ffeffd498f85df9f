// internal/server/server.go

// Package server exposes the HTTP API: intake sessions, the program catalog,
// the traveler dashboard and the payment endpoints.
package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voluntra-backend/internal/catalog"
	"voluntra-backend/internal/common/logger"
	"voluntra-backend/internal/common/observability"
	"voluntra-backend/internal/dashboard"
	"voluntra-backend/internal/intake"
	"voluntra-backend/internal/models"
	"voluntra-backend/internal/notify"
	"voluntra-backend/internal/payments"
)

// TokenVerifier resolves a bearer token into an identity.
type TokenVerifier interface {
	Verify(ctx context.Context, sessionToken string) (models.Identity, error)
}

// HealthChecker reports readiness of one backing dependency.
type HealthChecker func(ctx context.Context) error

type Server struct {
	sessions  *intake.SessionManager
	catalog   *catalog.Service
	dashboard *dashboard.Service
	payments  *payments.Service
	webhooks  *payments.WebhookProcessor
	notifier  *notify.Notifier
	verifier  TokenVerifier
	obs       *observability.Observability
	health    map[string]HealthChecker
	durations []int
	logger    logger.Logger
}

type Deps struct {
	Sessions  *intake.SessionManager
	Catalog   *catalog.Service
	Dashboard *dashboard.Service
	Payments  *payments.Service
	Webhooks  *payments.WebhookProcessor
	Notifier  *notify.Notifier
	Verifier  TokenVerifier
	Obs       *observability.Observability
	Health    map[string]HealthChecker

	// Durations are the stay lengths the site offers, in weeks.
	Durations []int
}

func New(deps Deps, log logger.Logger) *Server {
	if len(deps.Durations) == 0 {
		deps.Durations = []int{2, 4}
	}
	return &Server{
		sessions:  deps.Sessions,
		catalog:   deps.Catalog,
		dashboard: deps.Dashboard,
		payments:  deps.Payments,
		webhooks:  deps.Webhooks,
		notifier:  deps.Notifier,
		verifier:  deps.Verifier,
		obs:       deps.Obs,
		health:    deps.Health,
		durations: deps.Durations,
		logger:    log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/intake/sessions", s.handleStartSession)
	mux.HandleFunc("GET /api/intake/sessions/{id}", s.handleSessionState)
	mux.HandleFunc("POST /api/intake/sessions/{id}/authenticate", s.handleAuthenticate)
	mux.HandleFunc("PUT /api/intake/sessions/{id}/draft", s.handleUpdateDraft)
	mux.HandleFunc("POST /api/intake/sessions/{id}/advance", s.handleAdvance)
	mux.HandleFunc("POST /api/intake/sessions/{id}/back", s.handleBack)
	mux.HandleFunc("POST /api/intake/sessions/{id}/submit", s.handleSubmit)
	mux.HandleFunc("DELETE /api/intake/sessions/{id}", s.handleEndSession)

	mux.HandleFunc("GET /api/programs", s.handlePrograms)
	mux.HandleFunc("GET /api/programs/{slug}", s.handleProgramBySlug)
	mux.HandleFunc("GET /api/pages/{slug}", s.handlePage)
	mux.HandleFunc("GET /api/settings", s.handleSettings)

	mux.HandleFunc("GET /api/dashboard/applications", s.handleListApplications)
	mux.HandleFunc("GET /api/dashboard/applications/{id}", s.handleApplication)
	mux.HandleFunc("POST /api/dashboard/applications/{id}/documents/{taskKey}", s.handleUploadDocument)

	mux.HandleFunc("POST /api/payments/intent", s.handleCreateIntent)
	mux.HandleFunc("POST /api/webhooks/stripe", s.handleStripeWebhook)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return withObservability(mux, s.obs, s.logger)
}

// bearerToken extracts the Authorization bearer token, empty when absent.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// identityFromRequest verifies the bearer token when one is present. Absent
// token means an anonymous request, not an error.
func (s *Server) identityFromRequest(r *http.Request) (models.Identity, error) {
	token := bearerToken(r)
	if token == "" {
		return models.Identity{}, nil
	}
	return s.verifier.Verify(r.Context(), token)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	healthy := true
	for name, check := range s.health {
		if err := check(r.Context()); err != nil {
			checks[name] = err.Error()
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{
		"healthy": healthy,
		"checks":  checks,
	})
}
