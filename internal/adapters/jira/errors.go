package jira

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRequestFailed   = errors.New("request failed")
	ErrInvalidArgument = errors.New("invalid argument")

	errEmptyBody = errors.New("empty response body")
)

const maxErrorBody = 512

// RequestError describes one failed remote call. Transport failures carry
// Status 0; decoding failures carry the success status and the decode error.
type RequestError struct {
	Method string
	Path   string
	Status int
	Body   string
	Err    error
}

// Error implements error.
func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s", ErrRequestFailed, e.Method, e.Path)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	} else if msg := e.Message(); msg != "" {
		fmt.Fprintf(&b, ": %s", msg)
	}
	return b.String()
}

// Unwrap exposes ErrRequestFailed and the underlying cause.
func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRequestFailed}
	}
	return []error{ErrRequestFailed, e.Err}
}

// HTTPStatus returns the response status, 0 when no response arrived.
func (e *RequestError) HTTPStatus() int {
	return e.Status
}

// Message extracts the server's error messages from Body, falling back to the
// truncated raw body.
func (e *RequestError) Message() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return ""
	}
	var envelope struct {
		ErrorMessages []string          `json:"errorMessages"`
		Errors        map[string]string `json:"errors"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err == nil {
		parts := append([]string(nil), envelope.ErrorMessages...)
		for field, msg := range envelope.Errors {
			parts = append(parts, field+": "+msg)
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}
	if len(body) > maxErrorBody {
		return body[:maxErrorBody] + "..."
	}
	return body
}
