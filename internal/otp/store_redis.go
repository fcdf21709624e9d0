package otp

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps codes in Redis; TTL handles expiry, GETDEL handles
// single-use semantics atomically.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) Put(ctx context.Context, key, code string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, code, ttl).Err()
}

func (s *RedisStore) Take(ctx context.Context, key string) (string, error) {
	code, err := s.rdb.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCodeMismatch
		}
		return "", err
	}
	return code, nil
}

func (s *RedisStore) Peek(ctx context.Context, key string) (string, error) {
	code, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCodeMismatch
		}
		return "", err
	}
	return code, nil
}
