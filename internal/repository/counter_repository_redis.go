package repository

import (
	"context"
	"fmt"
)

type redisCounterRepository struct {
	redis *RedisDB
}

// NewRedisCounterRepository creates a counter backed by INCRBY.
func NewRedisCounterRepository(redis *RedisDB) CounterRepository {
	return &redisCounterRepository{redis: redis}
}

// AddAndGet uses INCRBY, which Redis executes atomically per key.
func (r *redisCounterRepository) AddAndGet(ctx context.Context, key string, delta int64) (int64, error) {
	total, err := r.redis.Client.IncrBy(ctx, "counter:"+key, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to advance counter %q: %w", key, err)
	}
	return total, nil
}
