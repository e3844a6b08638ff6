// Package transport performs the HTTP requests a graph is fetched with.
package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultTimeout is the per-request timeout when none is configured.
const DefaultTimeout = 30 * time.Second

// DefaultAccept is sent unless the caller provides an Accept header.
const DefaultAccept = "application/n-triples, text/turtle;q=0.9, */*;q=0.1"

// maxErrorBody caps how much of a failed response body becomes the error
// message.
const maxErrorBody = 4 << 10

// HTTPClient is the subset of *http.Client the transport needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is a completed exchange. A non-2xx status is not an error at this
// level: StatusCode and Error carry it on to payload classification.
type Response struct {
	URI         string
	StatusCode  int
	ContentType string
	Body        []byte
	Error       string
}

// OK reports whether the upstream answered with a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport issues GET requests with a fixed set of default headers.
type Transport struct {
	client  HTTPClient
	headers map[string]string
	logger  *slog.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(c HTTPClient) Option {
	return func(t *Transport) {
		t.client = c
	}
}

// WithTimeout sets the timeout of the default *http.Client. It has no
// effect once WithHTTPClient has replaced that client; configure the
// timeout on the replacement instead.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if hc, ok := t.client.(*http.Client); ok && d > 0 {
			hc.Timeout = d
		}
	}
}

// WithHeaders adds headers sent on every request. Per-request headers win.
func WithHeaders(headers map[string]string) Option {
	return func(t *Transport) {
		for k, v := range headers {
			t.headers[k] = v
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// New returns a Transport.
func New(opts ...Option) *Transport {
	t := &Transport{
		client:  &http.Client{Timeout: DefaultTimeout},
		headers: map[string]string{"Accept": DefaultAccept},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get fetches uri. Headers are merged over the transport defaults.
// The returned error covers request construction, connection and body read
// failures only.
func (t *Transport) Get(ctx context.Context, uri string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", uri, err)
	}
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	t.logger.Debug("requesting", "uri", uri)
	start := time.Now()

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", uri, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("get %s: read body: %w", uri, err)
	}

	out := &Response{
		URI:         uri,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
	if !out.OK() {
		out.Error = errorMessage(resp.StatusCode, body)
	}

	t.logger.Debug("response",
		"uri", uri,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start))

	return out, nil
}

func errorMessage(status int, body []byte) string {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return msg
}
