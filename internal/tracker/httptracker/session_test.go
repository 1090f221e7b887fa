package httptracker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// transportLog records the window handed to every attempt's transport.
type transportLog struct {
	mu      sync.Mutex
	windows []time.Duration
}

func (l *transportLog) record(w time.Duration) {
	l.mu.Lock()
	l.windows = append(l.windows, w)
	l.mu.Unlock()
}

func (l *transportLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *transportLog) snapshot() []time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]time.Duration(nil), l.windows...)
}

func newTestSession(cfg SessionConfig, decode func([]byte) (string, error)) *Session[int, string] {
	u, _ := url.Parse("http://tracker.example.com/announce")
	if decode == nil {
		decode = func(b []byte) (string, error) { return string(b), nil }
	}
	return NewSession(
		func() (*url.URL, error) { return u, nil },
		func(n int) (*Params, error) {
			p := NewParams()
			p.Add("n", strconv.Itoa(n))
			return p, nil
		},
		decode,
		cfg,
		nil,
	)
}

func okResponse(body string) *http.Response {
	return &http.Response{
		StatusCode:    200,
		ContentLength: int64(len(body)),
		Header:        http.Header{},
		Body:          io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestSessionSuccess(t *testing.T) {
	tl := &transportLog{}
	cfg := SessionConfig{
		BaseTimeout: 10 * time.Millisecond,
		MaxRetries:  3,
		NewTransport: func(timeout time.Duration) http.RoundTripper {
			tl.record(timeout)
			return roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return okResponse("OK"), nil
			})
		},
	}
	s := newTestSession(cfg, nil)

	got, err := s.Do(context.Background(), 1).Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "OK" {
		t.Errorf("got %q, want %q", got, "OK")
	}
	if s.IsClosed() {
		t.Error("session closed after a successful exchange")
	}

	// The session stays reusable, and the next call gets a fresh
	// client handle.
	got, err = s.Do(context.Background(), 2).Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}
	if got != "OK" {
		t.Errorf("second call got %q, want %q", got, "OK")
	}
	if tl.count() != 2 {
		t.Errorf("built %d transports, want 2", tl.count())
	}
}

func TestSessionStatusError(t *testing.T) {
	attempts := 0
	cfg := SessionConfig{
		BaseTimeout: 10 * time.Millisecond,
		MaxRetries:  3,
		NewTransport: func(timeout time.Duration) http.RoundTripper {
			attempts++
			return roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: 404,
					Header:     http.Header{},
					Body:       io.NopCloser(bytes.NewBufferString("Not Found")),
				}, nil
			})
		},
	}
	s := newTestSession(cfg, nil)

	_, err := s.Do(context.Background(), 1).Wait(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("got %v, want StatusError", err)
	}
	if statusErr.Code != 404 {
		t.Errorf("Code = %d, want 404", statusErr.Code)
	}
	if attempts != 1 {
		t.Errorf("made %d attempts, want 1: non-200 must not be retried", attempts)
	}
	if !s.IsClosed() {
		t.Error("session not closed after a status error")
	}
}

func TestSessionDoAfterClose(t *testing.T) {
	cfg := SessionConfig{
		BaseTimeout: 10 * time.Millisecond,
		MaxRetries:  3,
		NewTransport: func(timeout time.Duration) http.RoundTripper {
			t.Error("transport built after Close: I/O must not happen")
			return http.DefaultTransport
		},
	}
	s := newTestSession(cfg, nil)
	s.Close()
	s.Close() // idempotent

	_, err := s.Do(context.Background(), 1).Wait(context.Background())
	if !errors.Is(err, ErrClosed) {
		t.Errorf("got %v, want ErrClosed", err)
	}
}

func TestSessionRetryExhausted(t *testing.T) {
	tl := &transportLog{}
	base := 10 * time.Millisecond
	cfg := SessionConfig{
		BaseTimeout: base,
		MaxRetries:  3,
		NewTransport: func(timeout time.Duration) http.RoundTripper {
			tl.record(timeout)
			return roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return nil, timeoutError{}
			})
		},
	}
	s := newTestSession(cfg, nil)

	_, err := s.Do(context.Background(), 1).Wait(context.Background())
	var retryErr *RetryError
	if !errors.As(err, &retryErr) {
		t.Fatalf("got %v, want RetryError", err)
	}
	if retryErr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", retryErr.Attempts)
	}
	if !s.IsClosed() {
		t.Error("session not closed after retry exhaustion")
	}

	want := []time.Duration{base, 2 * base, 4 * base}
	got := tl.snapshot()
	if len(got) != len(want) {
		t.Fatalf("made %d attempts, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("attempt %d window = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSessionRetryThenSuccess(t *testing.T) {
	tl := &transportLog{}
	cfg := SessionConfig{
		BaseTimeout: 10 * time.Millisecond,
		MaxRetries:  3,
		NewTransport: func(timeout time.Duration) http.RoundTripper {
			tl.record(timeout)
			failFirst := tl.count() == 1
			return roundTripFunc(func(req *http.Request) (*http.Response, error) {
				if failFirst {
					return nil, errors.New("connection refused")
				}
				return okResponse("OK"), nil
			})
		},
	}
	s := newTestSession(cfg, nil)

	got, err := s.Do(context.Background(), 1).Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "OK" {
		t.Errorf("got %q, want %q", got, "OK")
	}
	if tl.count() != 2 {
		t.Errorf("made %d attempts, want 2", tl.count())
	}
	if s.IsClosed() {
		t.Error("session closed after an eventually successful exchange")
	}
}

func TestSessionEmptyParams(t *testing.T) {
	transports := 0
	u, _ := url.Parse("http://tracker.example.com/announce")
	s := NewSession(
		func() (*url.URL, error) { return u, nil },
		func(int) (*Params, error) { return NewParams(), nil },
		func(b []byte) (string, error) { return string(b), nil },
		SessionConfig{
			NewTransport: func(timeout time.Duration) http.RoundTripper {
				transports++
				return http.DefaultTransport
			},
		},
		nil,
	)

	_, err := s.Do(context.Background(), 1).Wait(context.Background())
	var configErr *ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("got %v, want ConfigError", err)
	}
	if !errors.Is(err, ErrEmptyParams) {
		t.Errorf("got %v, want ErrEmptyParams", err)
	}
	if transports != 0 {
		t.Errorf("built %d transports, want 0: configuration errors must not reach the network", transports)
	}
	if !s.IsClosed() {
		t.Error("session not closed after a configuration error")
	}
}

func TestSessionMissingEndpoint(t *testing.T) {
	s := NewSession(
		func() (*url.URL, error) { return nil, nil },
		func(n int) (*Params, error) {
			p := NewParams()
			p.Add("n", strconv.Itoa(n))
			return p, nil
		},
		func(b []byte) (string, error) { return string(b), nil },
		SessionConfig{},
		nil,
	)

	_, err := s.Do(context.Background(), 1).Wait(context.Background())
	if !errors.Is(err, ErrNoEndpoint) {
		t.Errorf("got %v, want ErrNoEndpoint", err)
	}
	if !s.IsClosed() {
		t.Error("session not closed after a configuration error")
	}
}

func TestSessionDecodeError(t *testing.T) {
	cfg := SessionConfig{
		NewTransport: func(timeout time.Duration) http.RoundTripper {
			return roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return okResponse("garbage"), nil
			})
		},
	}
	decodeFailure := errors.New("not bencode")
	s := newTestSession(cfg, func(b []byte) (string, error) {
		return "", decodeFailure
	})

	_, err := s.Do(context.Background(), 1).Wait(context.Background())
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("got %v, want DecodeError", err)
	}
	if !errors.Is(err, decodeFailure) {
		t.Errorf("DecodeError does not wrap the decoder's error: %v", err)
	}
	if !s.IsClosed() {
		t.Error("session not closed after a decode error")
	}
}

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
func (failingBody) Close() error             { return nil }

func TestSessionBodyReadError(t *testing.T) {
	attempts := 0
	cfg := SessionConfig{
		MaxRetries: 3,
		NewTransport: func(timeout time.Duration) http.RoundTripper {
			attempts++
			return roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode:    200,
					ContentLength: -1,
					Header:        http.Header{},
					Body:          failingBody{},
				}, nil
			})
		},
	}
	s := newTestSession(cfg, nil)

	_, err := s.Do(context.Background(), 1).Wait(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if attempts != 1 {
		t.Errorf("made %d attempts, want 1: body read failures must not be retried", attempts)
	}
	if !s.IsClosed() {
		t.Error("session not closed after a body read error")
	}
}

// blockedBody blocks reads until the request context is cancelled, the
// way a real transport aborts a body read.
type blockedBody struct {
	ctx context.Context
}

func (b blockedBody) Read([]byte) (int, error) {
	<-b.ctx.Done()
	return 0, b.ctx.Err()
}

func (b blockedBody) Close() error { return nil }

func TestSessionCloseDuringBody(t *testing.T) {
	reading := make(chan struct{})
	var once sync.Once
	cfg := SessionConfig{
		NewTransport: func(timeout time.Duration) http.RoundTripper {
			return roundTripFunc(func(req *http.Request) (*http.Response, error) {
				once.Do(func() { close(reading) })
				return &http.Response{
					StatusCode:    200,
					ContentLength: -1,
					Header:        http.Header{},
					Body:          blockedBody{ctx: req.Context()},
				}, nil
			})
		},
	}
	s := newTestSession(cfg, nil)

	p := s.Do(context.Background(), 1)
	<-reading
	s.Close()

	_, err := p.Wait(context.Background())
	if !errors.Is(err, ErrClosed) {
		t.Errorf("got %v, want ErrClosed", err)
	}
}

func TestSessionResponseTooLarge(t *testing.T) {
	cfg := SessionConfig{
		MaxResponseLength: 4,
		NewTransport: func(timeout time.Duration) http.RoundTripper {
			return roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return okResponse("way too long"), nil
			})
		},
	}
	s := newTestSession(cfg, nil)

	_, err := s.Do(context.Background(), 1).Wait(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !s.IsClosed() {
		t.Error("session not closed after an oversized response")
	}
}

func TestSessionComposeIdempotent(t *testing.T) {
	s := newTestSession(SessionConfig{}, nil)

	first, err := s.compose(42)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	second, err := s.compose(42)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if first != second {
		t.Errorf("compose is not idempotent: %q != %q", first, second)
	}
	if first != "http://tracker.example.com/announce?n=42" {
		t.Errorf("compose got %q", first)
	}
}

func TestSessionComposeExistingQuery(t *testing.T) {
	u, _ := url.Parse("http://tracker.example.com/announce?test=value")
	s := NewSession(
		func() (*url.URL, error) { return u, nil },
		func(n int) (*Params, error) {
			p := NewParams()
			p.Add("n", strconv.Itoa(n))
			return p, nil
		},
		func(b []byte) (string, error) { return string(b), nil },
		SessionConfig{},
		nil,
	)

	got, err := s.compose(1)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	want := "http://tracker.example.com/announce?test=value&n=1"
	if got != want {
		t.Errorf("compose got %q, want %q", got, want)
	}
}

func TestPendingCompletesOnce(t *testing.T) {
	p := newPending[string]()
	if p.resolved() {
		t.Fatal("fresh pending reports resolved")
	}

	p.resolve("first")
	p.fail(errors.New("late failure"))
	p.resolve("second")

	v, err := p.Wait(context.Background())
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if v != "first" {
		t.Errorf("value = %q, want %q: later completions must be no-ops", v, "first")
	}
}

func TestPendingWaitContext(t *testing.T) {
	p := newPending[string]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
