package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces revocation entries in a shared Redis instance.
const keyPrefix = "srauth:rvk:"

// RedisStore is the production Store backed by Redis. Entries are plain
// string keys with a TTL, so Redis expires them without any sweeper.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore returns a Store on top of an already-configured client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(jti string) string { return keyPrefix + jti }

// ttlUntil converts a deadline into a Redis TTL, clamped to at least one
// second so an entry for a token on the edge of expiry still lands.
func ttlUntil(until time.Time, now time.Time) time.Duration {
	ttl := until.Sub(now)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

// Revoke implements Store.
func (s *RedisStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	if err := s.client.Set(ctx, key(jti), "1", ttlUntil(until, time.Now())).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Claim implements Store via SET NX: the first writer creates the entry and
// wins, every later writer sees it already present.
func (s *RedisStore) Claim(ctx context.Context, jti string, until time.Time) (bool, error) {
	won, err := s.client.SetNX(ctx, key(jti), "1", ttlUntil(until, time.Now())).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return won, nil
}

// IsRevoked implements Store.
func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}
