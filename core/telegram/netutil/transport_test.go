package netutil

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

type scriptedTransport struct {
	calls int
	errs  []error
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.calls++
	if s.calls <= len(s.errs) && s.errs[s.calls-1] != nil {
		return nil, s.errs[s.calls-1]
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("ok")),
		Request:    req,
	}, nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetryTransportRetriesTransientFailure(t *testing.T) {
	base := &scriptedTransport{errs: []error{timeoutErr{}}}
	rt := NewRetryTransport(base, 2, 0)

	req, _ := http.NewRequest(http.MethodGet, "http://example.test/", nil)
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	defer resp.Body.Close()
	if base.calls != 2 {
		t.Fatalf("base called %d times, want 2", base.calls)
	}
}

func TestRetryTransportGivesUpAfterMaxRetries(t *testing.T) {
	base := &scriptedTransport{errs: []error{timeoutErr{}, timeoutErr{}, timeoutErr{}}}
	rt := NewRetryTransport(base, 2, 0)

	req, _ := http.NewRequest(http.MethodGet, "http://example.test/", nil)
	if _, err := rt.RoundTrip(req); err == nil {
		t.Fatal("expected the last error to surface")
	}
	if base.calls != 3 {
		t.Fatalf("base called %d times, want 3", base.calls)
	}
}

func TestRetryTransportDoesNotRetryPermanentError(t *testing.T) {
	permanent := errors.New("certificate rejected")
	base := &scriptedTransport{errs: []error{permanent}}
	rt := NewRetryTransport(base, 3, 0)

	req, _ := http.NewRequest(http.MethodGet, "http://example.test/", nil)
	_, err := rt.RoundTrip(req)
	if !errors.Is(err, permanent) {
		t.Fatalf("error = %v, want the permanent error", err)
	}
	if base.calls != 1 {
		t.Fatalf("base called %d times, want 1", base.calls)
	}
}

func TestRetryTransportReplaysBodyViaGetBody(t *testing.T) {
	base := &scriptedTransport{errs: []error{timeoutErr{}}}
	rt := NewRetryTransport(base, 1, 0)

	// http.NewRequest sets GetBody for strings.Reader bodies.
	req, _ := http.NewRequest(http.MethodPost, "http://example.test/", strings.NewReader("payload"))
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	defer resp.Body.Close()
	if base.calls != 2 {
		t.Fatalf("base called %d times, want 2", base.calls)
	}
}

func TestShouldRetry(t *testing.T) {
	if ShouldRetry(nil) {
		t.Error("nil error must not retry")
	}
	if !ShouldRetry(timeoutErr{}) {
		t.Error("timeout must retry")
	}
	if !ShouldRetry(&net.OpError{Op: "dial", Err: errors.New("refused")}) {
		t.Error("dial failure must retry")
	}
	if ShouldRetry(errors.New("parse failure")) {
		t.Error("plain errors must not retry")
	}

	rt := NewRetryTransport(nil, 0, time.Millisecond)
	if rt.Base != nil || rt.MaxRetries != 0 {
		t.Fatalf("constructor mangled fields: %+v", rt)
	}
}
