package handlers

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// AvailabilityCache fronts the per-day occupancy reads of the paged admin
// listing. Entries are short-lived snapshots; staleness within the TTL is
// acceptable because the listing is advisory and the booking transaction
// re-checks capacity.
type AvailabilityCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisAvailabilityCache implements AvailabilityCache on the generic cache
// client.
type RedisAvailabilityCache struct {
	Client *redis.Client
}

func (c *RedisAvailabilityCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisAvailabilityCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}
