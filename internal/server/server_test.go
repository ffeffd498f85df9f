// internal/server/server_test.go
package server

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"voluntra-backend/internal/catalog"
	"voluntra-backend/internal/common/database"
	stderrors "voluntra-backend/internal/common/errors"
	"voluntra-backend/internal/common/logger"
	"voluntra-backend/internal/dashboard"
	"voluntra-backend/internal/intake"
	"voluntra-backend/internal/models"
	"voluntra-backend/internal/payments"
)

const testSecret = "whsec_test"

type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, token string) (models.Identity, error) {
	if token == "good-token" {
		return models.Identity{UID: "uid-42", Email: "amara@example.org"}, nil
	}
	return models.Identity{}, stderrors.NewTokenInvalidError("unknown token")
}

type stubSubmitter struct {
	calls int
}

func (s *stubSubmitter) Submit(ctx context.Context, input intake.SubmitInput) (string, error) {
	s.calls++
	return "app-123", nil
}

// memStore backs catalog, dashboard and webhook handlers in one fake.
type memStore struct {
	docs    map[string]map[string]map[string]interface{} // collection -> id -> data
	updates map[string]map[string]interface{}
}

func newMemStore() *memStore {
	return &memStore{
		docs:    map[string]map[string]map[string]interface{}{},
		updates: map[string]map[string]interface{}{},
	}
}

func (m *memStore) put(collection, id string, data map[string]interface{}) {
	if m.docs[collection] == nil {
		m.docs[collection] = map[string]map[string]interface{}{}
	}
	m.docs[collection][id] = data
}

func (m *memStore) Get(ctx context.Context, collection, id string) (*database.Document, error) {
	data, ok := m.docs[collection][id]
	if !ok {
		return nil, stderrors.NewDocumentNotFoundError(collection, id)
	}
	return &database.Document{ID: id, Data: data}, nil
}

func (m *memStore) GetAll(ctx context.Context, collection string) ([]database.Document, error) {
	var out []database.Document
	for id, data := range m.docs[collection] {
		out = append(out, database.Document{ID: id, Data: data})
	}
	return out, nil
}

func (m *memStore) Query(ctx context.Context, collection string, filters map[string]interface{}) ([]database.Document, error) {
	var out []database.Document
	for id, data := range m.docs[collection] {
		match := true
		for field, want := range filters {
			if data[field] != want {
				match = false
				break
			}
		}
		if match {
			out = append(out, database.Document{ID: id, Data: data})
		}
	}
	return out, nil
}

func (m *memStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	m.updates[id] = fields
	return nil
}

type memUploader struct{}

func (memUploader) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	io.Copy(io.Discard, r)
	return "https://storage.googleapis.com/test-bucket/" + objectName, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memStore, *stubSubmitter) {
	t.Helper()
	log := logger.NewTestLogger(t)
	store := newMemStore()
	submitter := &stubSubmitter{}

	store.put("applications", "app-123", map[string]interface{}{
		"userId":        "uid-42",
		"programId":     "ghana-teaching",
		"paymentStatus": models.PaymentStatusPendingSetupFee,
		"status":        models.ApplicationStatusSubmitted,
		"createdAt":     time.Now().UTC(),
	})
	store.put("programs", "prog-1", map[string]interface{}{
		"slug":            "ghana-teaching",
		"title":           "Teaching in Ghana",
		"durationOptions": []interface{}{2, 4},
		"pricing":         map[string]interface{}{"twoWeeks": 1240.0, "fourWeeks": 1890.0},
	})

	srv := New(Deps{
		Sessions:  intake.NewSessionManager(submitter, log),
		Catalog:   catalog.NewService(store, log),
		Dashboard: dashboard.NewService(store, memUploader{}, log),
		Webhooks:  payments.NewWebhookProcessor(testSecret, store, nil, log),
		Verifier:  stubVerifier{},
		Health: map[string]HealthChecker{
			"store": func(ctx context.Context) error { return nil },
		},
	}, log)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store, submitter
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func stateOf(body map[string]interface{}) map[string]interface{} {
	state, _ := body["state"].(map[string]interface{})
	return state
}

func TestIntakeSessionEndToEnd(t *testing.T) {
	ts, _, submitter := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/intake/sessions", "good-token", map[string]interface{}{
		"programId":       "ghana-teaching",
		"durationWeeks":   4,
		"targetStartDate": "2026-11-02",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID, _ := body["sessionId"].(string)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "personal_info", stateOf(body)["step"])

	base := ts.URL + "/api/intake/sessions/" + sessionID

	resp, body = doJSON(t, http.MethodPut, base+"/draft", "", map[string]interface{}{
		"personalInfo": map[string]string{"firstName": "Amara", "lastName": "Okafor", "phone": "+233201234567"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPost, base+"/advance", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "experience", stateOf(body)["step"])

	doJSON(t, http.MethodPut, base+"/draft", "", map[string]interface{}{
		"experience": map[string]string{"motivation": "teach"},
	})
	doJSON(t, http.MethodPost, base+"/advance", "", nil)
	doJSON(t, http.MethodPut, base+"/draft", "", map[string]interface{}{
		"travel": map[string]interface{}{"arrivalDate": "2026-11-02", "insuranceAssent": true},
	})
	resp, body = doJSON(t, http.MethodPost, base+"/advance", "", nil)
	require.Equal(t, "payment", stateOf(body)["step"])

	resp, body = doJSON(t, http.MethodPost, base+"/submit", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := stateOf(body)
	assert.Equal(t, "app-123", state["submittedId"])
	assert.Equal(t, "/dashboard?application=success", state["redirectTo"])
	assert.Equal(t, 1, submitter.calls)
}

func TestIntakeValidationErrorRidesInState(t *testing.T) {
	ts, _, _ := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, ts.URL+"/api/intake/sessions", "good-token", map[string]interface{}{
		"programId":     "ghana-teaching",
		"durationWeeks": 4,
	})
	sessionID := body["sessionId"].(string)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/intake/sessions/"+sessionID+"/advance", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	state := stateOf(body)
	assert.Equal(t, "personal_info", state["step"])
	stepErr, ok := state["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "INCOMPLETE_FIELD", stepErr["code"])
}

func TestIntakeSessionRejectsUnofferedDuration(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/intake/sessions", "good-token", map[string]interface{}{
		"programId":     "ghana-teaching",
		"durationWeeks": 3,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "DURATION_NOT_OFFERED", errBody["code"])

	// An unknown program never gets a session either.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/intake/sessions", "good-token", map[string]interface{}{
		"programId":     "nope",
		"durationWeeks": 4,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIntakeUnknownSession(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/intake/sessions/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIntakeAnonymousSessionRequiresSignIn(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/intake/sessions", "", map[string]interface{}{
		"programId":     "ghana-teaching",
		"durationWeeks": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	state := stateOf(body)
	assert.Equal(t, "account", state["step"])
	assert.Equal(t, true, state["signInRequired"])
	assert.Equal(t, "/login", state["signInUrl"])

	// Authenticating moves the session past the Account step.
	sessionID := body["sessionId"].(string)
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/intake/sessions/"+sessionID+"/authenticate", "", map[string]string{
		"sessionToken": "good-token",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "personal_info", stateOf(body)["step"])
}

func TestCatalogEndpoints(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/programs", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	programs := body["programs"].([]interface{})
	require.Len(t, programs, 1)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/programs/ghana-teaching", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Teaching in Ghana", body["title"])

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/programs/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDashboardRequiresAuth(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/dashboard/applications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/dashboard/applications", "bad-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/dashboard/applications", "good-token", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	apps := body["applications"].([]interface{})
	assert.Len(t, apps, 1)
}

func TestDashboardUploadDocument(t *testing.T) {
	ts, store, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "passport.pdf")
	require.NoError(t, err)
	part.Write([]byte("pdf-bytes"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/dashboard/applications/app-123/documents/passport", &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer good-token")
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	update, ok := store.updates["app-123"]
	require.True(t, ok)
	documents := update["documents"].(map[string]interface{})
	assert.Contains(t, documents["passport"], "applications/app-123/passport_passport.pdf")
}

func TestStripeWebhookUpdatesPaymentStatus(t *testing.T) {
	ts, store, _ := newTestServer(t)

	payload := []byte(`{
		"id": "evt_1",
		"api_version": "2023-10-16",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_1", "metadata": {"applicationId": "app-123"}}}
	}`)
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, testSecret)
	header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/webhooks/stripe", strings.NewReader(string(payload)))
	require.NoError(t, err)
	req.Header.Set("Stripe-Signature", header)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.PaymentStatusPaid, store.updates["app-123"]["paymentStatus"])
}

func TestHealthEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["healthy"])
}
