package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotAuthenticated is returned when a protected endpoint is called without a session token.
var ErrNotAuthenticated = errors.New("not authenticated")

// Kind classifies a failed call.
type Kind int

const (
	// KindTransport means the server could not be reached (status 0).
	KindTransport Kind = iota + 1
	// KindRejected means the server answered with a 4xx/5xx status or an error body.
	KindRejected
	// KindUnexpected means the response did not have the expected shape.
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Error describes a failed API call.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s error (status %d)", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0 for transport
// failures and errors that did not come from the client.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Message returns the server supplied message for err, or fallback when there is none.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindRejected && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: "unable to reach server", Err: err}
}

func unexpectedError(status int, msg string, err error) *Error {
	return &Error{Kind: KindUnexpected, StatusCode: status, Message: msg, Err: err}
}

// rejectedError builds a rejection from an error body, which may be
// {"error": "..."}, {"message": "..."} or plain text.
func rejectedError(status int, body []byte) *Error {
	return &Error{Kind: KindRejected, StatusCode: status, Message: errorMessage(body)}
}

const maxTextMessage = 200

func errorMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if s, ok := payload.Error.(string); ok && s != "" {
			return s
		}
		if payload.Message != "" {
			return payload.Message
		}
		return ""
	}

	if strings.HasPrefix(text, "<") || len(text) > maxTextMessage {
		return ""
	}

	return text
}

// embeddedError extracts an "error" field from a successful response body.
func embeddedError(body []byte) string {
	var payload struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch v := payload.Error.(type) {
	case string:
		return v
	case nil:
		return ""
	case bool:
		if v {
			return "request rejected"
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}
