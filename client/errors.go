package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Error is a non-2xx response from the API. The layer does not translate
// it; callers decide how to surface it.
type Error struct {
	StatusCode int
	// Detail carries the server's "detail" field when the error body had
	// one, otherwise the trimmed raw body.
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("stockflow: %s (status %d)", e.Detail, e.StatusCode)
	}
	return fmt.Sprintf("stockflow: %s (status %d)", http.StatusText(e.StatusCode), e.StatusCode)
}

// IsStatus reports whether err carries an API error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// apiError builds an *Error from a response body, extracting the "detail"
// field the backend uses for user-facing messages.
func apiError(status int, body []byte) *Error {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			detail = s
		} else {
			// Validation errors arrive as structured arrays; keep them
			// readable rather than dropping them.
			detail = string(payload.Detail)
		}
	}
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}
	return &Error{StatusCode: status, Detail: detail}
}
