package bucket

import (
	"context"
	"sync"
	"time"

	"npi-gateway/internal/ratelimit/models"
	"npi-gateway/pkg/requestcontext"
)

// InMemoryBucketStore implements BucketStore using an in-memory sliding
// window. Suitable for single-instance deployments; use RedisBucketStore when
// multiple instances must share counters.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
}

// slidingWindow tracks request timestamps. A sliding window avoids the burst
// at window boundaries that fixed windows permit.
type slidingWindow struct {
	timestamps []time.Time
}

// NewInMemoryBucketStore creates a new in-memory bucket store.
func NewInMemoryBucketStore() *InMemoryBucketStore {
	return &InMemoryBucketStore{
		buckets: make(map[string]*slidingWindow),
	}
}

// Allow checks if a request is allowed and increments the counter. "Now" is
// the request-scoped time, so every limiter decision within one request uses
// the same clock reading.
func (s *InMemoryBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw := s.getOrCreateBucket(key)
	now := requestcontext.Now(ctx)
	sw.cleanup(now.Add(-window))

	if len(sw.timestamps)+1 <= limit {
		sw.timestamps = append(sw.timestamps, now)

		resetAt := sw.timestamps[0].Add(window)
		return &models.RateLimitResult{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - len(sw.timestamps),
			ResetAt:   resetAt,
		}, nil
	}

	resetAt := sw.timestamps[0].Add(window)
	retryAfter := int(resetAt.Sub(now).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	return &models.RateLimitResult{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: retryAfter,
	}, nil
}

// Reset clears the rate limit counter for a key.
func (s *InMemoryBucketStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// GetCurrentCount returns the current request count for a key within the
// window. Pruning mutates the bucket, so this takes the write lock.
func (s *InMemoryBucketStore) GetCurrentCount(ctx context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw := s.buckets[key]
	if sw == nil {
		return 0, nil
	}

	sw.cleanup(requestcontext.Now(ctx).Add(-window))
	return len(sw.timestamps), nil
}

// cleanup removes timestamps at or before the cutoff.
func (sw *slidingWindow) cleanup(cutoff time.Time) {
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

// getOrCreateBucket returns an existing bucket or creates a new one.
// Must be called while holding s.mu lock.
func (s *InMemoryBucketStore) getOrCreateBucket(key string) *slidingWindow {
	if sw := s.buckets[key]; sw != nil {
		return sw
	}
	sw := &slidingWindow{timestamps: []time.Time{}}
	s.buckets[key] = sw
	return sw
}
