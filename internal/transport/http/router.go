// Package httptransport assembles the public and operational HTTP routers.
// Policy ordering is fixed here: security headers and client metadata wrap
// everything, origin checks and rate limiting run before any body parsing,
// and the request timeout wraps the handlers.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	lookuphandler "npi-gateway/internal/lookup/handler"
	"npi-gateway/internal/platform/middleware"
	platformredis "npi-gateway/internal/platform/redis"
	ratelimitmw "npi-gateway/internal/ratelimit/middleware"
	metadata "npi-gateway/pkg/platform/middleware/metadata"
	"npi-gateway/pkg/platform/middleware/requesttime"
)

// Deps carries everything the public router needs.
type Deps struct {
	Logger         *slog.Logger
	Lookup         *lookuphandler.Handler
	RateLimit      *ratelimitmw.Middleware
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// NewRouter wires the public API router.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))

	r.Use(OriginAllowlist(d.CORSOrigins))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(d.RateLimit.RateLimit)

	r.Use(middleware.Timeout(d.RequestTimeout))

	r.Get("/healthz", handleHealthz)
	d.Lookup.Register(r)

	return r
}

// NewOpsRouter wires the operational router: Prometheus exposition plus
// liveness and readiness probes. It carries no request policies; it is not
// internet-facing.
func NewOpsRouter(redis *platformredis.Client) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if redis != nil {
			if err := redis.Health(req.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// OriginAllowlist rejects browser requests whose Origin is not in the
// allow-list with 403 before any further processing. Requests without an
// Origin header (curl, server-to-server) pass through; the rate limiter
// still applies to them. go-chi/cors alone only withholds response headers,
// which leaves enforcement to the browser.
func OriginAllowlist(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	allowAll := false
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && !allowAll {
				if _, ok := allowed[origin]; !ok {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusForbidden)
					_, _ = w.Write([]byte(`{"error":"origin_not_allowed"}`))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
