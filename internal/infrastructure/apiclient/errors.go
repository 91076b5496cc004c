package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable wraps transport failures and timeouts: no response arrived.
var ErrUnavailable = errors.New("api unavailable")

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 1 << 20

// HTTPError represents a non-2xx response from the marketplace API.
type HTTPError struct {
	StatusCode int
	Message    string

	// structured is set when Message came from a JSON envelope rather than
	// the raw body.
	structured bool
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// PublicMessage returns the backend's message when it sent one in its JSON
// envelope. Raw bodies are never shown to users.
func (e *HTTPError) PublicMessage() string {
	if !e.structured {
		return ""
	}
	return e.Message
}

// IsStatus reports whether err wraps an HTTPError with the given status.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

func newHTTPError(status int, body []byte) *HTTPError {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		if envelope.Message != "" {
			return &HTTPError{StatusCode: status, Message: envelope.Message, structured: true}
		}
		if envelope.Error != "" {
			return &HTTPError{StatusCode: status, Message: envelope.Error, structured: true}
		}
	}
	return &HTTPError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}
