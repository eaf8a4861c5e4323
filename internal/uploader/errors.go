package uploader

import "fmt"

// TransportError wraps a connectivity-level failure: connection refused,
// timeout, DNS, or an unreadable/undecodable response body.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is a response with status >= 400. Message carries the
// server-provided message when the body could be parsed.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upload failed with HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upload failed with HTTP %d", e.StatusCode)
}

// AppError is a logical failure reported by the service itself via the
// error flag in the response envelope. It can occur on any HTTP status,
// including 200.
type AppError struct {
	Message string
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("service reported an error: %s", e.Message)
	}
	return "service reported an error"
}
