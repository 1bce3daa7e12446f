package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

// PublishRateLimiter bounds reply publishes per organization with a fixed
// window counter. It protects the provider-side publish quota; exceeding the
// window is a caller-visible 429, not a silent drop.
type PublishRateLimiter struct {
	rdb    *goredis.Client
	clock  clockwork.Clock
	limit  int
	window time.Duration
}

// NewPublishRateLimiter creates a limiter allowing limit publishes per window
// per organization.
func NewPublishRateLimiter(rdb *goredis.Client, clock clockwork.Clock, limit int, window time.Duration) *PublishRateLimiter {
	return &PublishRateLimiter{
		rdb:    rdb,
		clock:  clock,
		limit:  limit,
		window: window,
	}
}

// Allow consumes one publish slot for the organization. Returns false when
// the window budget is exhausted.
func (l *PublishRateLimiter) Allow(ctx context.Context, orgID uuid.UUID) (bool, error) {
	windowStart := l.clock.Now().Truncate(l.window).Unix()
	key := fmt.Sprintf("rate_limit:publish:%s:%d", orgID, windowStart)

	pipe := l.rdb.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	return count.Val() <= int64(l.limit), nil
}
