package identity

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

// IDTokenVerifier validates ID token signatures locally against Google's published keys
type IDTokenVerifier struct {
	validator *idtoken.Validator
	audience  string
}

// NewIDTokenVerifier creates a verifier that only accepts tokens issued to audience
func NewIDTokenVerifier(ctx context.Context, audience string, opts ...option.ClientOption) (*IDTokenVerifier, error) {
	validator, err := idtoken.NewValidator(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create id token validator: %w", err)
	}
	return &IDTokenVerifier{validator: validator, audience: audience}, nil
}

// VerifyEmail returns the email claim of a valid ID token
func (v *IDTokenVerifier) VerifyEmail(ctx context.Context, idToken string) (string, error) {
	payload, err := v.validator.Validate(ctx, idToken, v.audience)
	if err != nil {
		return "", fmt.Errorf("failed to validate id token: %w", err)
	}
	return emailClaim(payload.Claims), nil
}

func emailClaim(claims map[string]interface{}) string {
	email, _ := claims["email"].(string)
	return email
}
