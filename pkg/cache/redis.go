package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps cache entries in Redis with the TTL enforced by Redis
// itself via key expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore creates a Redis-backed store. The prefix separates the search
// and grounded caches inside a shared database.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: prefix}
}

func (s *RedisStore) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (s *RedisStore) Set(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
}
