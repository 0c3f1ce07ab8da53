package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/SergeiKhy/quicklink/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	fieldDestination = "destination"
	fieldCreatedAt   = "created_at"
	fieldExpiresAt   = "expires_at"
	fieldActive      = "active"
	fieldIsAlias     = "is_alias"
	fieldClickCount  = "click_count"
)

// Field updates must not recreate a hash for an unknown code, so each one
// checks existence inside a script. The guarded scripts also refuse to touch
// a deactivated record and return -1 for it.
const (
	requireExists = `
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
`
	requireActive = requireExists + `
if redis.call("HGET", KEYS[1], "active") ~= "1" then
	return -1
end
`
)

var (
	setFieldScript = redis.NewScript(requireExists + `
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
return 1
`)

	setActiveFieldScript = redis.NewScript(requireActive + `
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
return 1
`)

	clearActiveFieldScript = redis.NewScript(requireActive + `
redis.call("HDEL", KEYS[1], ARGV[1])
return 1
`)

	incrementActiveFieldScript = redis.NewScript(requireActive + `
redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
return 1
`)
)

// redisURLRepository stores each record as a hash at "url:<code>".
type redisURLRepository struct {
	redis *RedisDB
}

// NewRedisURLRepository creates a URL store with one hash per code.
func NewRedisURLRepository(redis *RedisDB) URLRepository {
	return &redisURLRepository{redis: redis}
}

func (r *redisURLRepository) Save(ctx context.Context, record *models.URLRecord) error {
	fields := map[string]any{
		fieldDestination: record.Destination,
		fieldCreatedAt:   record.CreatedAt,
		fieldActive:      boolField(record.Active),
		fieldIsAlias:     boolField(record.IsAlias),
		fieldClickCount:  record.ClickCount,
	}
	if record.ExpiresAt != nil {
		fields[fieldExpiresAt] = *record.ExpiresAt
	}

	key := r.key(record.Code)
	_, err := r.redis.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save url: %w", err)
	}

	return nil
}

func (r *redisURLRepository) GetByCode(ctx context.Context, code string) (*models.URLRecord, error) {
	values, err := r.redis.Client.HGetAll(ctx, r.key(code)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get url: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrURLNotFound
	}

	rec, err := decodeURLHash(code, values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode url %q: %w", code, err)
	}
	return rec, nil
}

func (r *redisURLRepository) Exists(ctx context.Context, code string) (bool, error) {
	n, err := r.redis.Client.Exists(ctx, r.key(code)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check url: %w", err)
	}
	return n > 0, nil
}

func (r *redisURLRepository) Deactivate(ctx context.Context, code string) error {
	return r.run(ctx, setFieldScript, code, fieldActive, boolField(false))
}

func (r *redisURLRepository) SetExpiresAt(ctx context.Context, code string, expiresAt *int64) error {
	if expiresAt == nil {
		return r.run(ctx, clearActiveFieldScript, code, fieldExpiresAt)
	}
	return r.run(ctx, setActiveFieldScript, code, fieldExpiresAt, *expiresAt)
}

func (r *redisURLRepository) IncrementClicks(ctx context.Context, code string) error {
	return r.run(ctx, incrementActiveFieldScript, code, fieldClickCount)
}

func (r *redisURLRepository) run(ctx context.Context, script *redis.Script, code string, args ...any) error {
	applied, err := script.Run(ctx, r.redis.Client, []string{r.key(code)}, args...).Int64()
	if err != nil {
		return fmt.Errorf("failed to update url: %w", err)
	}
	switch applied {
	case 0:
		return ErrURLNotFound
	case -1:
		return ErrURLInactive
	}
	return nil
}

func (r *redisURLRepository) key(code string) string {
	return "url:" + code
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func decodeURLHash(code string, values map[string]string) (*models.URLRecord, error) {
	rec := &models.URLRecord{
		Code:        code,
		Destination: values[fieldDestination],
		Active:      values[fieldActive] == "1",
		IsAlias:     values[fieldIsAlias] == "1",
	}

	var err error
	if rec.CreatedAt, err = strconv.ParseInt(values[fieldCreatedAt], 10, 64); err != nil {
		return nil, err
	}
	if raw, ok := values[fieldClickCount]; ok {
		if rec.ClickCount, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, err
		}
	}
	if raw, ok := values[fieldExpiresAt]; ok {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		rec.ExpiresAt = &v
	}
	if rec.Destination == "" {
		return nil, errors.New("missing destination")
	}

	return rec, nil
}
