package httptracker

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avelis/trackwire/internal/log"
	"github.com/avelis/trackwire/pkg/urlutil"
)

const (
	// DefaultBaseTimeout is the first attempt's window. It doubles on
	// every retry.
	DefaultBaseTimeout = 15 * time.Second
	// DefaultMaxRetries is the attempt ceiling, counted in attempts.
	DefaultMaxRetries = 3
)

type SessionConfig struct {
	// BaseTimeout bounds the dial phase and the response-header phase
	// of the first attempt, each with its own window of this length.
	// The window doubles on every retry. Zero means DefaultBaseTimeout.
	BaseTimeout time.Duration
	// MaxRetries is the attempt ceiling. Zero means DefaultMaxRetries.
	MaxRetries int
	UserAgent  string
	// MaxResponseLength rejects responses that declare a larger
	// Content-Length. Zero disables the check.
	MaxResponseLength int64
	TLSSkipVerify     bool
	// NewTransport overrides the transport built for each attempt.
	// Every attempt must get a fresh handle; timeout is that attempt's
	// window.
	NewTransport func(timeout time.Duration) http.RoundTripper
}

// Session runs one announce or scrape exchange at a time: compose the
// request URL from the endpoint and the produced parameters, GET it,
// collect the body, hand it to decode. Transport failures before the
// response headers are retried on a fresh client handle with a doubled
// window until the attempt ceiling; every other failure is terminal and
// closes the session. A successful exchange leaves the session open for
// the next call.
type Session[O, T any] struct {
	endpoint func() (*url.URL, error)
	params   func(O) (*Params, error)
	decode   func([]byte) (T, error)

	cfg SessionConfig
	log *log.Logger

	closed atomic.Bool

	mu     sync.Mutex
	client *http.Client
	cancel context.CancelFunc
}

func NewSession[O, T any](
	endpoint func() (*url.URL, error),
	params func(O) (*Params, error),
	decode func([]byte) (T, error),
	cfg SessionConfig,
	logger *log.Logger,
) *Session[O, T] {
	if cfg.BaseTimeout <= 0 {
		cfg.BaseTimeout = DefaultBaseTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Session[O, T]{
		endpoint: endpoint,
		params:   params,
		decode:   decode,
		cfg:      cfg,
		log:      logger,
	}
}

// Do starts a request sequence. The returned Pending completes exactly
// once, with the decoded value or a terminal error. Only one sequence
// may run at a time; callers serialize through Wait.
func (s *Session[O, T]) Do(ctx context.Context, opts O) *Pending[T] {
	p := newPending[T]()
	if s.closed.Load() {
		p.fail(ErrClosed)
		return p
	}
	go s.attempt(ctx, opts, p, 0)
	return p
}

// Close aborts any in-flight attempt and permanently disables the
// session. Idempotent and safe to call concurrently with a request.
func (s *Session[O, T]) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.teardown()
}

func (s *Session[O, T]) IsClosed() bool {
	return s.closed.Load()
}

func (s *Session[O, T]) attempt(ctx context.Context, opts O, p *Pending[T], n int) {
	if s.closed.Load() {
		p.fail(ErrClosed)
		return
	}

	u, err := s.compose(opts)
	if err != nil {
		s.Close()
		p.fail(err)
		return
	}

	window := s.cfg.BaseTimeout << n
	client := s.newClient(window)

	reqCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		cancel()
		client.CloseIdleConnections()
		p.fail(ErrClosed)
		return
	}
	s.client = client
	s.cancel = cancel
	s.mu.Unlock()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		s.teardown()
		s.Close()
		p.fail(&ConfigError{Err: err})
		return
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}

	s.log.Debug(
		"tracker request",
		"url", u,
		"attempt", n,
		"timeout", window,
	)

	resp, err := client.Do(req)
	if err != nil {
		s.teardown()
		if s.closed.Load() {
			p.fail(ErrClosed)
			return
		}
		next := n + 1
		if next >= s.cfg.MaxRetries {
			s.Close()
			p.fail(&RetryError{Attempts: next, Err: err})
			return
		}
		s.log.Debug(
			"tracker request failed, retrying",
			"attempt", n,
			"error", err,
		)
		// A fresh goroutine keeps the stack flat across long retry
		// chains and lets a concurrent Close land between attempts.
		go s.attempt(ctx, opts, p, next)
		return
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		s.teardown()
		s.Close()
		p.fail(&StatusError{
			Code:   resp.StatusCode,
			Header: resp.Header,
			Body:   string(body),
		})
		return
	}

	s.collect(resp, p)
}

func (s *Session[O, T]) collect(resp *http.Response, p *Pending[T]) {
	defer resp.Body.Close()

	if s.cfg.MaxResponseLength > 0 && resp.ContentLength > s.cfg.MaxResponseLength {
		s.teardown()
		s.Close()
		p.fail(fmt.Errorf("tracker response too large: %d", resp.ContentLength))
		return
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		wasClosed := s.closed.Load()
		s.teardown()
		s.Close()
		if wasClosed {
			p.fail(ErrClosed)
		} else {
			p.fail(fmt.Errorf("read tracker response: %w", err))
		}
		return
	}

	if p.resolved() {
		return
	}

	v, err := s.decode(buf.Bytes())
	if err != nil {
		s.teardown()
		s.Close()
		p.fail(&DecodeError{Err: err})
		return
	}

	p.resolve(v)
	// Some trackers push unsolicited data on a kept-alive connection.
	// Dropping the attempt's connections here guarantees it can never
	// reach a later read.
	s.teardown()
}

func (s *Session[O, T]) compose(opts O) (string, error) {
	if s.endpoint == nil {
		return "", &ConfigError{Err: ErrNoEndpoint}
	}
	base, err := s.endpoint()
	if err != nil {
		return "", &ConfigError{Err: err}
	}
	if base == nil {
		return "", &ConfigError{Err: ErrNoEndpoint}
	}

	params, err := s.params(opts)
	if err != nil {
		return "", &ConfigError{Err: err}
	}
	if params == nil || params.Len() == 0 {
		return "", &ConfigError{Err: ErrEmptyParams}
	}

	u := urlutil.CopyURL(base)
	q := params.Encode()
	if u.RawQuery != "" {
		u.RawQuery += "&" + q
	} else {
		u.RawQuery = q
	}
	return u.String(), nil
}

// newClient builds the attempt's fresh client handle. The dial phase
// and the response-header phase each get their own window of the same
// length.
func (s *Session[O, T]) newClient(window time.Duration) *http.Client {
	var rt http.RoundTripper
	if s.cfg.NewTransport != nil {
		rt = s.cfg.NewTransport(window)
	} else {
		rt = &http.Transport{
			DialContext:           (&net.Dialer{Timeout: window}).DialContext,
			ResponseHeaderTimeout: window,
			TLSClientConfig:       &tls.Config{InsecureSkipVerify: s.cfg.TLSSkipVerify},
		}
	}
	return &http.Client{Transport: rt}
}

// teardown releases the current attempt's handles. Safe when a
// concurrent Close already released them.
func (s *Session[O, T]) teardown() {
	s.mu.Lock()
	client, cancel := s.client, s.cancel
	s.client, s.cancel = nil, nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if client != nil {
		client.CloseIdleConnections()
	}
}
