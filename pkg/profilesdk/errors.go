package profilesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-success response from the profile service.
type APIError struct {
	StatusCode int
	// Message is the server-provided "message", empty when none was sent.
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("profile service: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("profile service: HTTP %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status of err when it is an *APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether the service rejected the bearer token.
func IsUnauthorized(err error) bool { return StatusCode(err) == http.StatusUnauthorized }

// IsNotFound reports whether the requested profile does not exist.
func IsNotFound(err error) bool { return StatusCode(err) == http.StatusNotFound }

// ServerMessage returns the server-provided message carried by err, if any.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	var msg MessageResponse
	_ = json.Unmarshal(body, &msg)
	return &APIError{StatusCode: resp.StatusCode, Message: msg.Message}
}
