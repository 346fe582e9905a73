package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error is a non-2xx answer from the remote API. Fields holds the string valued
// top level members of a JSON error payload, e.g. {"error": "..."} or {"message": "..."}.
type Error struct {
	StatusCode int
	Fields     map[string]string
	Body       []byte
}

func newError(status int, body []byte) *Error {
	e := &Error{StatusCode: status, Body: body, Fields: map[string]string{}}
	var payload map[string]any
	if json.Unmarshal(body, &payload) != nil {
		return e
	}
	for k, v := range payload {
		if s, ok := v.(string); ok {
			e.Fields[k] = s
		}
	}
	return e
}

func (e *Error) Error() string {
	if msg := e.Field("error", "message"); msg != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Field returns the first non-empty payload field among names.
func (e *Error) Field(names ...string) string {
	for _, name := range names {
		if v := e.Fields[name]; v != "" {
			return v
		}
	}
	return ""
}

// Unauthorized reports whether the API rejected the credential.
func (e *Error) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
