package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	sessionKeyPrefix = "session:"
	loginKeyPrefix   = "sessionLogin:"
)

// RedisStore implements Store on a Redis hash per user. Hash fields map
// one-to-one onto session keys, which gives the required per-key
// independence for free.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Store backed by the given Redis client. A zero
// ttl disables idle expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(userID string) string { return sessionKeyPrefix + userID }
func loginKey(clientID string) string { return loginKeyPrefix + clientID }

func (s *RedisStore) Get(ctx context.Context, userID, key string) (string, bool, error) {
	val, err := s.client.HGet(ctx, sessionKey(userID), key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session key %s: %w", key, err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, userID, key, value string) error {
	if err := s.client.HSet(ctx, sessionKey(userID), key, value).Err(); err != nil {
		return fmt.Errorf("failed to write session key %s: %w", key, err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, sessionKey(userID), s.ttl).Err(); err != nil {
			return fmt.Errorf("failed to refresh session ttl: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) ClearKeys(ctx context.Context, userID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, sessionKey(userID), keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear session keys: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) BindClient(ctx context.Context, userID, clientID string) error {
	var err error
	if s.ttl > 0 {
		err = s.client.Set(ctx, loginKey(clientID), userID, s.ttl).Err()
	} else {
		err = s.client.Set(ctx, loginKey(clientID), userID, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to bind client login: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteByClient(ctx context.Context, clientID string) error {
	userID, err := s.client.Get(ctx, loginKey(clientID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to resolve client login: %w", err)
	}
	if err := s.Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.client.Del(ctx, loginKey(clientID)).Err(); err != nil {
		return fmt.Errorf("failed to unbind client login: %w", err)
	}
	return nil
}
