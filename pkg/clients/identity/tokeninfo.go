package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// DefaultTokenInfoURL is Google's token introspection endpoint
const DefaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// ErrAudienceMismatch is returned when a token was issued to a different client
var ErrAudienceMismatch = errors.New("token audience mismatch")

// TokenInfoVerifier validates ID tokens by asking Google's tokeninfo endpoint
type TokenInfoVerifier struct {
	client   *http.Client
	endpoint string
	audience string
}

// NewTokenInfoVerifier creates a verifier. An empty endpoint uses DefaultTokenInfoURL;
// an empty audience accepts tokens issued to any client.
func NewTokenInfoVerifier(client *http.Client, endpoint, audience string) *TokenInfoVerifier {
	if client == nil {
		client = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = DefaultTokenInfoURL
	}
	return &TokenInfoVerifier{client: client, endpoint: endpoint, audience: audience}
}

// VerifyEmail returns the email claim of a valid ID token
func (v *TokenInfoVerifier) VerifyEmail(ctx context.Context, idToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call tokeninfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("tokeninfo request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenInfo struct {
		Email    string `json:"email"`
		Audience string `json:"aud"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenInfo); err != nil {
		return "", fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}

	if v.audience != "" && tokenInfo.Audience != v.audience {
		return "", fmt.Errorf("%w: %s", ErrAudienceMismatch, tokenInfo.Audience)
	}

	return tokenInfo.Email, nil
}
