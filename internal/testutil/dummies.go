// Package testutil provides shared test doubles and view tree builders.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording. Fields of
// every entry are kept in Fields so tests can assert what was logged.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
	Fields []logging.Field
}

func (l *DummyLogger) record(dst *[]string, msg string, fields []logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*dst = append(*dst, msg)
	l.Fields = append(l.Fields, fields...)
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) { l.record(&l.Debugs, msg, fields) }
func (l *DummyLogger) Info(msg string, fields ...logging.Field)  { l.record(&l.Infos, msg, fields) }
func (l *DummyLogger) Warn(msg string, fields ...logging.Field)  { l.record(&l.Warns, msg, fields) }
func (l *DummyLogger) Error(msg string, fields ...logging.Field) { l.record(&l.Errors, msg, fields) }

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of warnings logged so far.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient over a fixed set of pages.
// Unknown URLs get a 404.
type DummyWebClient struct {
	Pages         map[string]string
	ResponseDelay time.Duration
	FailURLs      map[string]bool

	mu       sync.Mutex
	Requests []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if req == nil {
		return nil, webclient.ErrNilRequest
	}
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs[req.URL] {
		return nil, fmt.Errorf("dummy fetch fail for %s", req.URL)
	}
	resp := &webclient.Response{
		Request:    req,
		FinalURL:   req.URL,
		StatusCode: 200,
		FetchedAt:  time.Now(),
	}
	body, ok := d.Pages[req.URL]
	if !ok {
		resp.StatusCode = 404
		body = "not found"
	}
	resp.Body = []byte(body)
	return resp, nil
}

func (d *DummyWebClient) Close() error { return nil }

// RequestCount returns the number of requests served.
func (d *DummyWebClient) RequestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}
