package web

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"factoryplan/internal/adapters/backend"
	"factoryplan/internal/adapters/http/middleware"
	"factoryplan/internal/adapters/http/perf"
	"factoryplan/internal/application/orchestrators"
	"factoryplan/internal/domain/notification"
)

// Options configures the dashboard.
type Options struct {
	// Backend is the content REST client without a token; sessions bind their own.
	Backend   *backend.Client
	Collector *perf.Collector

	// CSRFKey is the raw 32-byte secret. Empty generates a random key outside production.
	CSRFKey        string
	Production     bool
	TrustedOrigins []string

	// Notify configures the change emails. No recipients disables them.
	Notify orchestrators.NotifyContentChangeDeps
}

// Global backend client (set by NewMux)
var backendClient *backend.Client

// Global session store instance
var sessions *middleware.SessionStore

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Change email configuration (set by NewMux)
var notifyDeps orchestrators.NotifyContentChangeDeps

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 20

// NotifyTimeout bounds one change email.
var NotifyTimeout = 10 * time.Second

// loadCSRFKey returns the configured key, or a random one outside production.
func loadCSRFKey(raw string, production bool) ([]byte, error) {
	if raw != "" {
		if len(raw) != 32 {
			return nil, errors.New("csrf key must be exactly 32 bytes")
		}
		return []byte(raw), nil
	}
	if production {
		return nil, errors.New("csrf key is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating csrf key: %w", err)
	}
	slog.Warn("csrf_key_random", "detail", "form tokens will not survive a restart; set dashboard.csrf_key")
	return key, nil
}

// contentNotifier returns the notifier handed to orchestrators, or nil when
// change emails are disabled. Emails are sent after the response, detached
// from the request.
func contentNotifier() orchestrators.Notifier {
	if len(notifyDeps.Recipients) == 0 || notifyDeps.EmailSender == nil {
		return nil
	}
	deps := notifyDeps
	return func(ctx context.Context, change notification.Change) {
		ctx = context.WithoutCancel(ctx)
		go func() {
			ctx, cancel := context.WithTimeout(ctx, NotifyTimeout)
			defer cancel()
			// Failures are logged by the orchestrator and never reach the user.
			_ = orchestrators.ExecuteNotifyContentChange(ctx, change, deps)
		}()
	}
}

// NewMux wires HTTP handlers for the dashboard.
func NewMux(opts Options) (http.Handler, error) {
	if opts.Backend == nil {
		return nil, errors.New("backend client is required")
	}
	csrfKey, err := loadCSRFKey(opts.CSRFKey, opts.Production)
	if err != nil {
		return nil, err
	}

	backendClient = opts.Backend
	perfCollector = opts.Collector
	notifyDeps = opts.Notify
	if notifyDeps.Now == nil {
		notifyDeps.Now = time.Now
	}
	sessions = middleware.NewSessionStore()

	mux := http.NewServeMux()
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, opts.Production, opts.TrustedOrigins),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(opts.Collector, middleware.DefaultSlowRequest),
	), nil
}
