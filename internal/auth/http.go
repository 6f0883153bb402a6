// ABOUTME: Credential extraction from HTTP requests for API and websocket handshakes
// ABOUTME: Supports Authorization bearer headers and token query parameters

package auth

import (
	"errors"
	"net/http"
	"strings"
)

// ErrNoCredential indicates the request carried no usable credential.
var ErrNoCredential = errors.New("missing credential")

// BearerToken extracts the session token from an HTTP request.
// It checks the Authorization header first, then falls back to the
// "token" query parameter. The fallback exists because the browser
// WebSocket API cannot set request headers on the upgrade request.
func BearerToken(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", ErrNoCredential
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return "", ErrNoCredential
		}
		return token, nil
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}

	return "", ErrNoCredential
}
