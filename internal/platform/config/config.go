package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "npi-gateway/pkg/platform/strings"
)

// Server captures process-level configuration. All values are read once at
// startup; there is no runtime reconfiguration.
type Server struct {
	Addr    string
	OpsAddr string

	UpstreamBaseURL string
	UpstreamTimeout time.Duration
	RequestTimeout  time.Duration

	CORSOrigins []string

	RateLimit       int
	RateLimitWindow time.Duration

	Redis RedisConfig

	LogLevel string
}

// RedisConfig holds connection settings for the optional Redis-backed
// rate limit store. An empty URL means Redis is not configured and the
// in-memory store is used instead.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:            envOr("NPI_GATEWAY_ADDR", ":8080"),
		OpsAddr:         envOr("NPI_GATEWAY_OPS_ADDR", ":9090"),
		UpstreamBaseURL: envOr("NPPES_BASE_URL", "https://npiregistry.cms.hhs.gov/api/"),
		UpstreamTimeout: envDurationOr("NPPES_TIMEOUT", 5*time.Second),
		RequestTimeout:  envDurationOr("REQUEST_TIMEOUT", 15*time.Second),
		CORSOrigins:     envListOr("CORS_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
		RateLimit:       envIntOr("RATE_LIMIT", 10),
		RateLimitWindow: envDurationOr("RATE_LIMIT_WINDOW", time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		LogLevel: envOr("LOG_LEVEL", "info"),
	}
}

// Validate rejects configurations the service cannot safely start with.
func (s Server) Validate() error {
	if _, err := url.ParseRequestURI(s.UpstreamBaseURL); err != nil {
		return fmt.Errorf("invalid NPPES_BASE_URL %q: %w", s.UpstreamBaseURL, err)
	}
	if s.UpstreamTimeout <= 0 {
		return fmt.Errorf("NPPES_TIMEOUT must be positive, got %s", s.UpstreamTimeout)
	}
	if s.RequestTimeout <= s.UpstreamTimeout {
		return fmt.Errorf("REQUEST_TIMEOUT (%s) must exceed NPPES_TIMEOUT (%s)", s.RequestTimeout, s.UpstreamTimeout)
	}
	if s.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be positive, got %d", s.RateLimit)
	}
	if s.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", s.RateLimitWindow)
	}
	if len(s.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envListOr(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	out := platformstrings.DedupeAndTrim(strings.Split(v, ","))
	if len(out) == 0 {
		return fallback
	}
	return out
}
