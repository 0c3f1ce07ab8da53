package repository

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/SergeiKhy/quicklink/internal/config"
	"github.com/redis/go-redis/v9"
)

const defaultRedisConnectTimeout = 5 * time.Second

// RedisDB wraps the Redis client.
type RedisDB struct {
	Client *redis.Client
}

// NewRedisClient connects to Redis and verifies the connection within the
// configured connect timeout.
func NewRedisClient(cfg config.RedisConfig) (*RedisDB, error) {
	opts := redisOptions(cfg)
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	return &RedisDB{Client: client}, nil
}

// redisOptions maps config onto client options. Zero pool settings keep the
// go-redis defaults.
func redisOptions(cfg config.RedisConfig) *redis.Options {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultRedisConnectTimeout
	}

	return &redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  timeout,
	}
}

func (db *RedisDB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx).Err()
}

func (db *RedisDB) Close() error {
	return db.Client.Close()
}
