package httptracker

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrClosed is returned for requests made after Close and for
	// requests aborted by a concurrent Close.
	ErrClosed = errors.New("tracker session closed")

	ErrNoEndpoint  = errors.New("tracker URL not set")
	ErrEmptyParams = errors.New("no request parameters")
)

// ConfigError marks a collaborator mistake. It is never retried and
// always closes the session.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "tracker configuration: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// RetryError is returned once the attempt ceiling is reached. Err holds
// the last transport failure.
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("tracker unreachable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error {
	return e.Err
}

// StatusError is returned for any non-200 response.
type StatusError struct {
	Code   int
	Header http.Header
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tracker returned HTTP status %d", e.Code)
}

// DecodeError wraps a decoder failure on a complete response body.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode tracker response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
