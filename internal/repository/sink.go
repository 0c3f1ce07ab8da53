package repository

import (
	"context"
	"fmt"

	"github.com/SergeiKhy/quicklink/internal/models"
	"github.com/redis/go-redis/v9"
)

// NoopSink drops every event. Used when analytics are disabled.
type NoopSink struct{}

func (NoopSink) Publish(context.Context, *models.ClickEvent) error { return nil }

type redisStreamSink struct {
	redis  *RedisDB
	stream string
	maxLen int64
}

// NewRedisStreamSink appends click events to a Redis stream, trimmed to roughly maxLen entries.
func NewRedisStreamSink(redis *RedisDB, stream string, maxLen int64) EventSink {
	return &redisStreamSink{redis: redis, stream: stream, maxLen: maxLen}
}

func (s *redisStreamSink) Publish(ctx context.Context, event *models.ClickEvent) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"short_code": event.Code,
			"timestamp":  event.Timestamp,
			"ip_address": event.IPAddress,
			"user_agent": event.UserAgent,
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.redis.Client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish click event: %w", err)
	}
	return nil
}
