package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc"
	jwtv4 "github.com/golang-jwt/jwt/v4"

	"sunrisestay/internal/logger"
)

// JWKSVerifier verifies RS256 session tokens against the provider's published key set.
type JWKSVerifier struct {
	jwks *keyfunc.JWKS
}

type jwksClaims struct {
	Email string `json:"email,omitempty"`
	jwtv4.RegisteredClaims
}

// NewJWKSVerifier downloads the key set at url and keeps it refreshed in the background.
func NewJWKSVerifier(url string, refresh time.Duration) (*JWKSVerifier, error) {
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   refresh,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Error("JWKS refresh failed", "url", url, "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", url, err)
	}
	return &JWKSVerifier{jwks: jwks}, nil
}

// NewJWKSVerifierFromJSON builds a verifier over a static key set.
func NewJWKSVerifierFromJSON(raw json.RawMessage) (*JWKSVerifier, error) {
	jwks, err := keyfunc.NewJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}
	return &JWKSVerifier{jwks: jwks}, nil
}

func (v *JWKSVerifier) Verify(tokenString string) (*Identity, error) {
	claims := &jwksClaims{}
	token, err := jwtv4.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc)
	if err != nil {
		if errors.Is(err, jwtv4.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return &Identity{
		Subject:   claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Close stops the background refresh.
func (v *JWKSVerifier) Close() {
	v.jwks.EndBackground()
}
