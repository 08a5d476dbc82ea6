package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"npi-gateway/internal/ratelimit/metrics"
	"npi-gateway/internal/ratelimit/models"
	"npi-gateway/internal/ratelimit/ports"
	"npi-gateway/pkg/platform/httputil"
	metadata "npi-gateway/pkg/platform/middleware/metadata"
)

// BucketStore aliases the module-level port so callers wire stores without
// importing ports directly.
type BucketStore = ports.BucketStore

type Middleware struct {
	buckets  BucketStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
	limit    int
	window   time.Duration
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithMetrics attaches Prometheus counters for allow/deny decisions.
func WithMetrics(met *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = met
	}
}

func New(buckets BucketStore, logger *slog.Logger, limit int, window time.Duration, opts ...Option) *Middleware {
	m := &Middleware{
		buckets: buckets,
		logger:  logger,
		limit:   limit,
		window:  window,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit caps requests per client IP within a sliding window. Requests
// beyond the cap receive 429 without reaching the handler. Store failures
// fail open: an unavailable limiter must not take the lookup path down.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ip := metadata.GetClientIP(ctx)

		result, err := m.buckets.Allow(ctx, models.IPKey(ip), m.limit, m.window)
		if err != nil {
			m.logger.ErrorContext(ctx, "rate limit check failed", "error", err, "client_ip", ip)
			if m.metrics != nil {
				m.metrics.IncrementCheckFailures()
			}
			next.ServeHTTP(w, r)
			return
		}

		// Add headers regardless of outcome
		addRateLimitHeaders(w, result)

		if !result.Allowed {
			if m.metrics != nil {
				m.metrics.IncrementDenied()
			}
			writeRateLimitExceeded(w, result)
			return
		}

		if m.metrics != nil {
			m.metrics.IncrementAllowed()
		}
		next.ServeHTTP(w, r)
	})
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "rate_limited",
		Message:    "Too many requests from this IP address. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}
