package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	lookuphandler "npi-gateway/internal/lookup/handler"
	"npi-gateway/internal/lookup/models"
	lookupservice "npi-gateway/internal/lookup/service"
	ratelimitmw "npi-gateway/internal/ratelimit/middleware"
	"npi-gateway/internal/ratelimit/store/bucket"
)

const (
	validNPI      = "1234567893"
	allowedOrigin = "https://clinic.example.com"
)

type countingRegistry struct {
	calls    int
	provider *models.Provider
}

func (c *countingRegistry) Lookup(ctx context.Context, number models.NPI) (*models.Provider, error) {
	c.calls++
	return c.provider, nil
}

// RouterSuite exercises the full public middleware chain end to end with a
// stubbed registry behind a real service.
type RouterSuite struct {
	suite.Suite
	registry *countingRegistry
	router   http.Handler
	limit    int
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.registry = &countingRegistry{
		provider: &models.Provider{NPI: models.NPI(validNPI), Status: "A", FirstName: "JANE", LastName: "DOE"},
	}
	s.limit = 5

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	svc, err := lookupservice.New(s.registry, lookupservice.WithLogger(logger))
	s.Require().NoError(err)

	s.router = NewRouter(Deps{
		Logger:         logger,
		Lookup:         lookuphandler.New(svc, logger),
		RateLimit:      ratelimitmw.New(bucket.NewInMemoryBucketStore(), logger, s.limit, time.Minute),
		CORSOrigins:    []string{allowedOrigin},
		RequestTimeout: 5 * time.Second,
	})
}

func (s *RouterSuite) lookupRequest(ip, origin string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/check-npi",
		strings.NewReader(`{"identifier": "`+validNPI+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = ip + ":52801"
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func (s *RouterSuite) TestLookupThroughFullChain() {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, s.lookupRequest("203.0.113.5", allowedOrigin))

	s.Equal(http.StatusOK, rec.Code)

	var resp lookuphandler.CheckNPIResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Equal("found", resp.Status)
	s.Equal(1, s.registry.calls)
}

func (s *RouterSuite) TestSecurityHeadersOnEveryOutcome() {
	check := func(rec *httptest.ResponseRecorder) {
		s.T().Helper()
		s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
		s.Equal("DENY", rec.Header().Get("X-Frame-Options"))
		s.Equal("no-referrer", rec.Header().Get("Referrer-Policy"))
	}

	// Success
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, s.lookupRequest("203.0.113.6", allowedOrigin))
	check(rec)

	// CORS rejection
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, s.lookupRequest("203.0.113.6", "https://evil.example.com"))
	check(rec)

	// Rate limited
	for range s.limit + 1 {
		rec = httptest.NewRecorder()
		s.router.ServeHTTP(rec, s.lookupRequest("203.0.113.6", allowedOrigin))
	}
	s.Equal(http.StatusTooManyRequests, rec.Code)
	check(rec)
}

func (s *RouterSuite) TestDisallowedOriginRejectedBeforeParsing() {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, s.lookupRequest("203.0.113.7", "https://evil.example.com"))

	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal(0, s.registry.calls, "rejected origins must make zero outbound calls")
}

func (s *RouterSuite) TestRateLimitAppliedPerSource() {
	for i := range s.limit {
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, s.lookupRequest("203.0.113.8", allowedOrigin))
		s.Require().Equal(http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, s.lookupRequest("203.0.113.8", allowedOrigin))
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.Equal(s.limit, s.registry.calls, "the rate-limited request must not reach the registry")

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, s.lookupRequest("198.51.100.20", allowedOrigin))
	s.Equal(http.StatusOK, rec.Code, "other sources keep their own budget")
}

func (s *RouterSuite) TestPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/check-npi", nil)
	req.Header.Set("Origin", allowedOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(allowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
}

func (s *RouterSuite) TestHealthz() {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
}

func TestOpsRouterExposesMetrics(t *testing.T) {
	router := NewOpsRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /readyz without redis, got %d", rec.Code)
	}
}
