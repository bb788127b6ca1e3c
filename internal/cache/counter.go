package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter implements fixed-window counting on Redis for rate limiting.
type Counter struct {
	client *redis.Client
}

func NewCounter(client *redis.Client) *Counter {
	return &Counter{client: client}
}

// IncrWithExpire increments key and sets its expiry if the key is new,
// returning the count after the increment. Both commands run in one
// pipeline round trip.
func (c *Counter) IncrWithExpire(ctx context.Context, key string, expire time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, expire)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	return incr.Val(), nil
}
