// Package cache provides the Redis read-through cache for user records.
// Entries carry no TTL: they are dropped only by explicit invalidation,
// which every user mutation performs before returning.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/akravets/contacts-api/internal/domain"
	"github.com/akravets/contacts-api/internal/metrics"
)

const keyPrefix = "user:"

// Users caches user records keyed by email. Cache failures are logged and
// degrade to store reads; they never fail the request.
type Users struct {
	client *redis.Client
	logger *slog.Logger
}

func NewUsers(client *redis.Client, logger *slog.Logger) *Users {
	return &Users{
		client: client,
		logger: logger.With("component", "user_cache"),
	}
}

// Get returns the cached record for email, or (nil, false) on a miss.
func (c *Users) Get(ctx context.Context, email string) (*domain.User, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+email).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "cache get", "error", err)
		}
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}

	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		c.logger.WarnContext(ctx, "cache entry corrupt, dropping", "email", email, "error", err)
		c.Invalidate(ctx, email)
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}

	metrics.CacheHitsTotal.Inc()
	return &u, true
}

// Set stores a snapshot of user under its email key.
func (c *Users) Set(ctx context.Context, user *domain.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		c.logger.WarnContext(ctx, "cache marshal", "error", err)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+user.Email, raw, 0).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache set", "error", err)
	}
}

// Invalidate unconditionally deletes the entry for email.
func (c *Users) Invalidate(ctx context.Context, email string) {
	if err := c.client.Del(ctx, keyPrefix+email).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache invalidate", "email", email, "error", err)
		return
	}
	metrics.CacheInvalidationsTotal.Inc()
}

// Ping verifies the Redis connection, for readiness checks.
func (c *Users) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
