package announcer

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/avelis/trackwire/internal/tracker"
	"github.com/avelis/trackwire/internal/tracker/httptracker"
)

// AnnounceError pairs the raw error with a short operator-facing
// message.
type AnnounceError struct {
	Err     error
	Message string
	Unknown bool
}

func (e *AnnounceError) Error() string {
	return e.Message
}

func (e *AnnounceError) Unwrap() error {
	return e.Err
}

func newAnnounceError(err error) *AnnounceError {
	e := &AnnounceError{Err: err}

	if errors.Is(err, tracker.ErrDecode) {
		e.Message = "invalid response from tracker"
		return e
	}
	if errors.Is(err, httptracker.ErrClosed) {
		e.Message = "tracker session is closed"
		return e
	}

	var configErr *httptracker.ConfigError
	if errors.As(err, &configErr) {
		e.Message = "tracker misconfigured: " + configErr.Err.Error()
		return e
	}

	var retryErr *httptracker.RetryError
	if errors.As(err, &retryErr) {
		e.Message = fmt.Sprintf("tracker unreachable after %d attempts", retryErr.Attempts)
		return e
	}

	var statusErr *httptracker.StatusError
	if errors.As(err, &statusErr) {
		e.Message = fmt.Sprintf("tracker returned HTTP status %d", statusErr.Code)
		if statusErr.Header.Get("Content-Type") == "text/plain" {
			msg := statusErr.Body
			if len(msg) > 100 {
				msg = msg[:97] + "..."
			}
			e.Message += " message: " + msg
		}
		return e
	}

	var trackerErr *tracker.Error
	if errors.As(err, &trackerErr) {
		e.Message = "announce error: " + trackerErr.FailureReason
		return e
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		e.Message = "host not found: " + dnsErr.Name
		return e
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		e.Message = "contacting tracker timed out"
		return e
	}

	s := err.Error()
	switch {
	case strings.HasSuffix(s, "connection refused"):
		e.Message = "tracker refused the connection"
	case strings.HasSuffix(s, "connection reset by peer"), strings.HasSuffix(s, "EOF"):
		e.Message = "tracker closed the connection"
	case strings.HasSuffix(s, "tls: handshake failure"):
		e.Message = "TLS handshake has failed"
	case strings.Contains(s, "network is unreachable"):
		e.Message = "network is unreachable"
	default:
		e.Message = "unknown error in announce"
		e.Unknown = true
	}
	return e
}
