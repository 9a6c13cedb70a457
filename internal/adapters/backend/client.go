// Package backend is the typed REST client for the factory planning content API.
// Every call carries the session's bearer token, and a 401 from any endpoint
// surfaces as ErrUnauthorized so the dashboard can end the session.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"factoryplan/internal/adapters/http/perf"
)

// DefaultTimeout bounds a single backend call when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// DefaultSlowThreshold is the duration above which a backend call is logged at WARN.
const DefaultSlowThreshold = 500 * time.Millisecond

// maxErrorBody caps how much of a failed response is read when looking for a message.
const maxErrorBody = 64 << 10

// ErrUnauthorized matches any 401 response under errors.Is.
var ErrUnauthorized = errors.New("backend: session token rejected")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string // backend "message" field, empty when absent
}

// Is matches ErrUnauthorized for a 401 so the message survives alongside the sentinel.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// UserMessage returns the backend's message for err, or fallback when there is none.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-call timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithCollector records every call into the perf collector as an upstream entry.
func WithCollector(col *perf.Collector) Option {
	return func(c *Client) { c.collector = col }
}

// WithSlowThreshold sets the WARN threshold for slow calls.
func WithSlowThreshold(d time.Duration) Option {
	return func(c *Client) { c.slow = d }
}

// Client talks JSON to the content backend.
// A Client is safe for concurrent use; WithToken returns a copy bound to one session.
type Client struct {
	baseURL   string
	http      *http.Client
	collector *perf.Collector
	slow      time.Duration
	token     string
}

// New creates a client for the backend rooted at baseURL.
// PRE: baseURL is an absolute http(s) URL
// POST: Returns a client without a token
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		slow:    DefaultSlowThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of c that sends token as the bearer credential.
// An empty token sends no Authorization header.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do issues one request and decodes a 2xx JSON body into out (when out is non-nil).
// body, when non-nil, is JSON encoded.
// POST: non-2xx → *APIError, matching ErrUnauthorized on 401; transport failures are wrapped
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, path, 0, start)
		return fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.observe(method, path, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: readMessage(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s: %w", method, path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) observe(method, path string, status int, start time.Time) {
	elapsed := time.Since(start)
	c.collector.Record(perf.Entry{
		Kind:       perf.KindUpstream,
		Path:       method + " " + path,
		StatusCode: status,
		DurationMs: float64(elapsed.Microseconds()) / 1000.0,
		Timestamp:  start,
	})
	if c.slow > 0 && elapsed > c.slow {
		slog.Warn("slow_backend_call", "method", method, "path", path, "status", status, "duration_ms", elapsed.Milliseconds())
		return
	}
	slog.Debug("backend_call", "method", method, "path", path, "status", status, "duration_ms", elapsed.Milliseconds())
}

// messageBody is the backend's error and acknowledgement envelope.
type messageBody struct {
	Message string `json:"message"`
}

func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	var m messageBody
	if json.Unmarshal(data, &m) != nil {
		return ""
	}
	return m.Message
}
