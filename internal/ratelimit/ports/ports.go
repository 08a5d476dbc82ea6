// Package ports defines shared interfaces for the ratelimit module.
package ports

import (
	"context"
	"time"

	"npi-gateway/internal/ratelimit/models"
)

// BucketStore manages sliding window rate limit counters.
type BucketStore interface {
	// Allow checks if a single request is allowed and consumes one token if so.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)

	// Reset clears the rate limit counter for a key.
	Reset(ctx context.Context, key string) error

	// GetCurrentCount returns the current request count within the window.
	GetCurrentCount(ctx context.Context, key string, window time.Duration) (int, error)
}
