package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/quicklink/internal/config"
	"go.uber.org/zap"
)

// Stores bundles the repositories selected by configuration.
type Stores struct {
	URLs    URLRepository
	Counter CounterRepository
	Sink    EventSink

	pingers map[string]Pinger
	closers []func() error
}

// NewStores connects the configured backend and analytics sink.
// Callers must Close the result.
func NewStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Stores{
		Sink:    NoopSink{},
		pingers: make(map[string]Pinger),
	}

	var redisDB *RedisDB
	connectRedis := func() (*RedisDB, error) {
		if redisDB != nil {
			return redisDB, nil
		}
		db, err := NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		redisDB = db
		s.pingers["redis"] = db
		s.closers = append(s.closers, db.Close)
		logger.Info("Connected to Redis", zap.String("host", cfg.Redis.Host))
		return db, nil
	}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		s.URLs = NewMemoryURLRepository()
		s.Counter = NewMemoryCounterRepository()
		logger.Warn("Using in-memory storage; identifiers are unique within this process only")

	case config.BackendRedis:
		db, err := connectRedis()
		if err != nil {
			return nil, err
		}
		s.URLs = NewRedisURLRepository(db)
		s.Counter = NewRedisCounterRepository(db)

	case config.BackendPostgres:
		db, err := NewPostgresDB(cfg.DB)
		if err != nil {
			return nil, err
		}
		s.pingers["postgres"] = db
		s.closers = append(s.closers, func() error { db.Close(); return nil })
		logger.Info("Connected to PostgreSQL", zap.String("host", cfg.DB.Host))

		if cfg.Storage.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				s.Close()
				return nil, err
			}
		}
		s.URLs = NewPostgresURLRepository(db)
		s.Counter = NewPostgresCounterRepository(db)

	case config.BackendSQLite:
		db, err := NewSQLiteDB(cfg.SQLite)
		if err != nil {
			return nil, err
		}
		s.pingers["sqlite"] = db
		s.closers = append(s.closers, db.Close)
		logger.Info("Opened SQLite database", zap.String("path", cfg.SQLite.Path))

		if cfg.Storage.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				s.Close()
				return nil, err
			}
		}
		s.URLs = NewSQLiteURLRepository(db)
		s.Counter = NewSQLiteCounterRepository(db)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Analytics.Enabled {
		db, err := connectRedis()
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("analytics sink: %w", err)
		}
		s.Sink = NewRedisStreamSink(db, cfg.Analytics.Stream, cfg.Analytics.MaxLen)
		logger.Info("Publishing click events", zap.String("stream", cfg.Analytics.Stream))
	}

	return s, nil
}

// Ping checks every connected backend and reports "UP" or the error text per backend.
func (s *Stores) Ping(ctx context.Context) map[string]string {
	checks := make(map[string]string, len(s.pingers))
	for name, p := range s.pingers {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			continue
		}
		checks[name] = "UP"
	}
	return checks
}

// Close releases every backend connection. Calling it twice is safe.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Migrate applies the schema for SQL backends without starting the service.
func Migrate(ctx context.Context, cfg *config.Config) (bool, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := NewPostgresDB(cfg.DB)
		if err != nil {
			return false, err
		}
		defer db.Close()
		return true, db.Migrate(ctx)

	case config.BackendSQLite:
		db, err := NewSQLiteDB(cfg.SQLite)
		if err != nil {
			return false, err
		}
		defer db.Close()
		return true, db.Migrate(ctx)
	}
	return false, nil
}
