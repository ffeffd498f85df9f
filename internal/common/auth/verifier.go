// internal/common/auth/verifier.go
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voluntra-backend/internal/common/errors"
	"voluntra-backend/internal/models"
)

// Verifier resolves a session token into an authenticated identity against
// the external identity provider. Provider failures never leave this package
// as raw transport errors.
type Verifier struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// lookupResponse holds the provider's token-lookup payload.
type lookupResponse struct {
	Users []struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	} `json:"users"`
}

// NewVerifier creates a new identity verifier.
func NewVerifier(baseURL, apiKey string, timeout time.Duration) *Verifier {
	return &Verifier{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Verify resolves a session token to {uid, email}. A token the provider does
// not recognize yields a TOKEN_INVALID error.
func (v *Verifier) Verify(ctx context.Context, sessionToken string) (models.Identity, error) {
	if sessionToken == "" {
		return models.Identity{}, errors.NewTokenInvalidError("empty session token")
	}

	payload, err := json.Marshal(map[string]string{"idToken": sessionToken})
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to encode lookup request: %w", err)
	}

	lookupURL := fmt.Sprintf("%s/v1/accounts:lookup?key=%s", v.baseURL, v.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lookupURL, bytes.NewReader(payload))
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to create lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return models.Identity{}, fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to read lookup response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return models.Identity{}, errors.NewTokenInvalidError(fmt.Sprintf("provider returned status %d", resp.StatusCode))
	}

	var lookup lookupResponse
	if err := json.Unmarshal(body, &lookup); err != nil {
		return models.Identity{}, fmt.Errorf("failed to decode lookup response: %w", err)
	}

	if len(lookup.Users) == 0 {
		return models.Identity{}, errors.NewTokenInvalidError("no user for session token")
	}

	return models.Identity{
		UID:   lookup.Users[0].LocalID,
		Email: lookup.Users[0].Email,
	}, nil
}
