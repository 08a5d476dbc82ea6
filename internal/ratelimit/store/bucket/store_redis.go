package bucket

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"npi-gateway/internal/ratelimit/models"
	"npi-gateway/pkg/requestcontext"
)

// RedisBucketStore implements BucketStore using Redis sorted sets, one set
// per key with request timestamps as scores. This is the implementation for
// deployments where multiple gateway instances must share counters.
type RedisBucketStore struct {
	client *redis.Client
}

// NewRedisBucketStore constructs a Redis-backed bucket store.
func NewRedisBucketStore(client *redis.Client) *RedisBucketStore {
	return &RedisBucketStore{client: client}
}

// Allow checks if a request is allowed and records it if so. The request is
// recorded in the same transaction that counts the set, so two requests
// racing at the cap each see the other's entry; whichever lands over the cap
// withdraws its own entry and is denied. Expired entries are pruned on every
// check, so the set never outgrows the window.
func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	now := requestcontext.Now(ctx)
	cutoff := now.Add(-window)
	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString()

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff.UnixNano(), 10))
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: member,
	})
	countCmd := pipe.ZCard(ctx, key)
	oldestCmd := pipe.ZRangeWithScores(ctx, key, 0, 0)
	// Keep the set from lingering after the client goes quiet.
	pipe.Expire(ctx, key, window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	count := int(countCmd.Val()) // includes the entry recorded above
	resetAt := resetFrom(oldestCmd.Val(), now, window)

	if count > limit {
		if err := s.client.ZRem(ctx, key, member).Err(); err != nil {
			return nil, err
		}
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

	return &models.RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - count,
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the rate limit counter for a key.
func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// GetCurrentCount returns the current request count in the window, pruning
// expired entries first so the answer matches what Allow would see.
func (s *RedisBucketStore) GetCurrentCount(ctx context.Context, key string, window time.Duration) (int, error) {
	cutoff := requestcontext.Now(ctx).Add(-window)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(countCmd.Val()), nil
}

// resetFrom derives the moment the oldest recorded request leaves the window.
func resetFrom(oldest []redis.Z, now time.Time, window time.Duration) time.Time {
	if len(oldest) == 0 {
		return now.Add(window)
	}
	return time.Unix(0, int64(oldest[0].Score)).Add(window)
}
