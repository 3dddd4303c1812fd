package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenInfoServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id_token") {
		case "good":
			w.Write([]byte(`{"email":"asha@example.com","aud":"client-1","email_verified":"true"}`))
		case "other-client":
			w.Write([]byte(`{"email":"asha@example.com","aud":"client-2"}`))
		case "garbage":
			w.Write([]byte(`not json`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_token"}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTokenInfoVerifier(t *testing.T) {
	server := newTokenInfoServer(t)
	ctx := context.Background()

	verifier := NewTokenInfoVerifier(server.Client(), server.URL, "")

	email, err := verifier.VerifyEmail(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", email)

	_, err = verifier.VerifyEmail(ctx, "expired")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")

	_, err = verifier.VerifyEmail(ctx, "garbage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestTokenInfoVerifier_Audience(t *testing.T) {
	server := newTokenInfoServer(t)
	ctx := context.Background()

	verifier := NewTokenInfoVerifier(server.Client(), server.URL, "client-1")

	_, err := verifier.VerifyEmail(ctx, "good")
	require.NoError(t, err)

	_, err = verifier.VerifyEmail(ctx, "other-client")
	assert.True(t, errors.Is(err, ErrAudienceMismatch))
}

func TestNewTokenInfoVerifier_Defaults(t *testing.T) {
	verifier := NewTokenInfoVerifier(nil, "", "")
	assert.Equal(t, DefaultTokenInfoURL, verifier.endpoint)
	assert.Equal(t, http.DefaultClient, verifier.client)
}

func TestEmailClaim(t *testing.T) {
	assert.Equal(t, "a@b.com", emailClaim(map[string]interface{}{"email": "a@b.com"}))
	assert.Equal(t, "", emailClaim(map[string]interface{}{"email": 42}))
	assert.Equal(t, "", emailClaim(nil))
}
