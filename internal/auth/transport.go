package auth

import (
	"errors"
	"net/http"
	"strings"
)

// ErrMissingToken is returned when a request carries no token on the
// inspected transport.
var ErrMissingToken = errors.New("missing token")

// TokenSource extracts a raw token from one transport of a request.
type TokenSource func(r *http.Request) (string, error)

// FromHeader reads "Authorization: Bearer <token>".
func FromHeader(r *http.Request) (string, error) {
	return ExtractTokenFromHeader(r.Header.Get("Authorization"))
}

// FromCookie reads the raw token stored in the named cookie.
func FromCookie(name string) TokenSource {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(name)
		if err != nil || strings.TrimSpace(cookie.Value) == "" {
			return "", ErrMissingToken
		}
		return strings.TrimSpace(cookie.Value), nil
	}
}

// ExtractTokenFromHeader extracts the token from the Authorization header
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid authorization header format")
	}
	return strings.TrimSpace(token), nil
}
