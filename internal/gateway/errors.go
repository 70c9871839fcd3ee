package gateway

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRequestFailed matches every *RequestError via errors.Is.
	ErrRequestFailed = errors.New("gateway: request failed")

	// ErrInvalidBaseURL is returned by New for relative or unparsable URLs.
	ErrInvalidBaseURL = errors.New("gateway: base URL must be an absolute http(s) URL")

	// ErrStatus is wrapped for non-2xx responses. Its text doubles as the
	// transport message: "request failed with status code 500".
	ErrStatus = errors.New("request failed with status code")

	// ErrDecode is returned by the decode helpers for bodies of the wrong shape.
	ErrDecode = errors.New("gateway: unexpected response body")
)

// MessageSource records which step of the resolution chain produced a
// RequestError's Message.
type MessageSource int

const (
	// SourceFallback is the generic localized failure text.
	SourceFallback MessageSource = iota

	// SourceBackendError is the "error" string field of the response body.
	SourceBackendError

	// SourceBackendMessage is the "message" string field of the response body.
	SourceBackendMessage

	// SourceTransport is the text of the underlying transport or status error.
	SourceTransport
)

func (s MessageSource) String() string {
	switch s {
	case SourceBackendError:
		return "backend_error"
	case SourceBackendMessage:
		return "backend_message"
	case SourceTransport:
		return "transport"
	default:
		return "fallback"
	}
}

// RequestError describes a failed gateway call. It has already been logged
// and shown to the user when the caller receives it.
type RequestError struct {
	// Op is the gateway operation, e.g. "list devices".
	Op string

	Method string
	Path   string

	// StatusCode is zero when no response was received.
	StatusCode int

	// Message is the resolved display text.
	Message string
	Source  MessageSource

	// Body is the raw response body, if any.
	Body []byte

	// Err is the transport error, or ErrStatus for non-2xx responses.
	Err error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "gateway: %s: %s %s", e.Op, e.Method, e.Path)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Unwrap returns the transport error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrRequestFailed.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// HasResponse reports whether the backend answered at all.
func (e *RequestError) HasResponse() bool {
	return e.StatusCode != 0
}
