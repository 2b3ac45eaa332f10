package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed API call.
type Kind int

const (
	// KindNetwork means the request never produced a response.
	KindNetwork Kind = iota
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP
	// KindApplication means a 2xx response carried success=false.
	KindApplication
	// KindDecode means the response body was not the expected JSON.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindApplication:
		return "application"
	case KindDecode:
		return "decode"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the uniform failure shape returned by every Client method.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, zero unless Kind is KindHTTP
	Message string // server-supplied or synthesized message
	Op      string // e.g. "list tasks"
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("%s: http %d: %s", e.Op, e.Status, e.Display())
	default:
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Display())
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Display returns the single string shown to the user next to the affected
// region.
func (e *Error) Display() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "Unknown error"
}

// IsUnauthorized reports whether err is an HTTP 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindHTTP && apiErr.Status == http.StatusUnauthorized
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNetwork
}

// Message extracts the displayable text from any error, falling back to
// "Unknown error" for nil-ish values.
func Message(err error) string {
	if err == nil {
		return "Unknown error"
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Display()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unknown error"
}
