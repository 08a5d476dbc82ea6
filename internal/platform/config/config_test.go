package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "https://npiregistry.cms.hhs.gov/api/", cfg.UpstreamBaseURL)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 10, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Contains(t, cfg.CORSOrigins, "http://localhost:3000")
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("NPI_GATEWAY_ADDR", ":9999")
	t.Setenv("NPPES_TIMEOUT", "2s")
	t.Setenv("RATE_LIMIT", "25")
	t.Setenv("CORS_ORIGINS", "https://clinic.example.com, https://staging.example.com")

	cfg := FromEnv()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 25, cfg.RateLimit)
	assert.Equal(t, []string{"https://clinic.example.com", "https://staging.example.com"}, cfg.CORSOrigins)
}

func TestFromEnvBadValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT", "lots")
	t.Setenv("NPPES_TIMEOUT", "soon")

	cfg := FromEnv()

	assert.Equal(t, 10, cfg.RateLimit)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
}

func TestValidate(t *testing.T) {
	base := FromEnv()

	t.Run("bad upstream URL", func(t *testing.T) {
		cfg := base
		cfg.UpstreamBaseURL = "not a url"
		assert.Error(t, cfg.Validate())
	})

	t.Run("request timeout must exceed upstream timeout", func(t *testing.T) {
		cfg := base
		cfg.RequestTimeout = cfg.UpstreamTimeout
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero rate limit", func(t *testing.T) {
		cfg := base
		cfg.RateLimit = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty origins", func(t *testing.T) {
		cfg := base
		cfg.CORSOrigins = nil
		assert.Error(t, cfg.Validate())
	})
}
