package querycache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "kidlingo:query:"

// RedisStore keeps query results in Redis so every replica sees the same invalidations.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, redisPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, redisPrefix+key, value, r.ttl).Err()
}

func (r *RedisStore) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = redisPrefix + k
	}
	return r.client.Del(ctx, prefixed...).Err()
}
