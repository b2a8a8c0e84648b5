package provider

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	PlaceholderPublicKey = "HELIO_PUBLIC_KEY"
	PlaceholderSecretKey = "HELIO_SECRET_KEY"
)

var placeholderKeys = map[string]struct{}{
	PlaceholderPublicKey:  {},
	PlaceholderSecretKey:  {},
	"YOUR_PUBLIC_API_KEY": {},
	"YOUR_SECRET_API_KEY": {},
}

// IsPlaceholder reports whether key is unset for practical purposes.
func IsPlaceholder(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}
	_, ok := placeholderKeys[key]
	return ok
}

// Authenticator decorates outbound requests with credentials and reports
// whether those credentials were actually supplied.
type Authenticator interface {
	Apply(req *http.Request)
	Configured() bool
}

func NewAuthenticator(cfg Config) (Authenticator, error) {
	scheme := cfg.Auth
	if scheme == "" {
		scheme = defaultAuthFor(cfg.Shape)
	}

	switch scheme {
	case AuthAPIKey:
		return &APIKeyAuth{PublicKey: cfg.PublicAPIKey, SecretKey: cfg.SecretAPIKey}, nil
	case AuthBearer:
		return &BearerAuth{Token: cfg.SecretAPIKey}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAuth, scheme)
	}
}

func defaultAuthFor(shape string) string {
	if shape == ShapeDirect {
		return AuthBearer
	}
	return AuthAPIKey
}

// APIKeyAuth sends the public and secret keys as x-api-key / x-secret-key.
type APIKeyAuth struct {
	PublicKey string
	SecretKey string
}

func (a *APIKeyAuth) Apply(req *http.Request) {
	req.Header.Set("x-api-key", a.PublicKey)
	req.Header.Set("x-secret-key", a.SecretKey)
}

func (a *APIKeyAuth) Configured() bool {
	return !IsPlaceholder(a.PublicKey) && !IsPlaceholder(a.SecretKey)
}

// BearerAuth sends the secret key as a bearer token.
type BearerAuth struct {
	Token string
}

func (a *BearerAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

func (a *BearerAuth) Configured() bool {
	return !IsPlaceholder(a.Token)
}
