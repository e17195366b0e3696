package pushbullet

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyToken is returned by NewClient when no access token is given.
	ErrEmptyToken = errors.New("access token is required")
	// ErrInvalidToken is returned by NewClient when the access token cannot
	// be sent as an HTTP header value.
	ErrInvalidToken = errors.New("access token contains invalid characters")
)

// APIError is a structured error reported by the PushBullet API. The server
// includes an error object in the response body; its code and message are
// preserved here together with the HTTP status of the response.
type APIError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pushbullet API error: %s: %s", e.Code, e.Message)
}

// StatusError is a non-2xx response without a decodable API error body.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pushbullet: unexpected status %d: %s", e.StatusCode, string(e.Body))
}

// IsAuthError reports whether err indicates that the access token was
// rejected. Both 401/403 statuses and the invalid_access_token API code
// qualify.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == "invalid_access_token" {
			return true
		}
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden
	}

	return false
}
