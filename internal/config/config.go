package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config is the full service configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Allocator AllocatorConfig `mapstructure:"allocator"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	SQLite    SQLiteConfig    `mapstructure:"sqlite"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Clicks    ClicksConfig    `mapstructure:"clicks"`
}

// AppConfig holds HTTP server settings.
type AppConfig struct {
	Port            string        `mapstructure:"port"`
	BaseURL         string        `mapstructure:"base_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig selects the log level and encoder.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// StorageConfig picks the backend and bounds every store call with Timeout.
type StorageConfig struct {
	Backend     string        `mapstructure:"backend"`
	Timeout     time.Duration `mapstructure:"timeout"`
	AutoMigrate bool          `mapstructure:"auto_migrate"`
}

// AllocatorConfig controls identifier range reservation.
type AllocatorConfig struct {
	BatchSize  int64  `mapstructure:"batch_size"`
	CounterKey string `mapstructure:"counter_key"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// RedisConfig holds Redis connection and pool settings.
type RedisConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	PoolSize       int           `mapstructure:"pool_size"`
	MinIdleConns   int           `mapstructure:"min_idle_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// SQLiteConfig points at the embedded database file.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// AnalyticsConfig configures the click event stream. Events go to a Redis stream when enabled.
type AnalyticsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Stream  string `mapstructure:"stream"`
	MaxLen  int64  `mapstructure:"max_len"`
}

// ClicksConfig sizes the click worker pool. Async false records clicks inline.
type ClicksConfig struct {
	Async   bool `mapstructure:"async"`
	Workers int  `mapstructure:"workers"`
	Buffer  int  `mapstructure:"buffer"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.base_url", "http://localhost:8080")
	v.SetDefault("app.shutdown_timeout", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.timeout", 3*time.Second)
	v.SetDefault("storage.auto_migrate", true)

	v.SetDefault("allocator.batch_size", 100)
	v.SetDefault("allocator.counter_key", "global_counter")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "quicklink")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "quicklink")
	v.SetDefault("db.max_conns", 25)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 100)
	v.SetDefault("redis.min_idle_conns", 10)
	v.SetDefault("redis.connect_timeout", 5*time.Second)

	v.SetDefault("sqlite.path", "quicklink.db")

	v.SetDefault("analytics.enabled", false)
	v.SetDefault("analytics.stream", "quicklink:clicks")
	v.SetDefault("analytics.max_len", 100000)

	v.SetDefault("clicks.async", true)
	v.SetDefault("clicks.workers", 3)
	v.SetDefault("clicks.buffer", 1000)
}

// Load reads configuration from an optional YAML file and QUICKLINK_* environment variables.
// An empty path searches ./config.yaml and ./configs/config.yaml; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("QUICKLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.App.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.App.BaseURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis, BackendPostgres, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Allocator.BatchSize < 1 {
		return fmt.Errorf("allocator batch size must be positive, got %d", c.Allocator.BatchSize)
	}
	if strings.TrimSpace(c.Allocator.CounterKey) == "" {
		return errors.New("allocator counter key must not be empty")
	}
	if c.Storage.Timeout <= 0 {
		return fmt.Errorf("storage timeout must be positive, got %s", c.Storage.Timeout)
	}
	if c.Redis.PoolSize < 1 || c.Redis.MinIdleConns < 0 || c.Redis.MinIdleConns > c.Redis.PoolSize {
		return fmt.Errorf("redis pool needs 0 <= min_idle_conns (%d) <= pool_size (%d) and pool_size >= 1",
			c.Redis.MinIdleConns, c.Redis.PoolSize)
	}
	if c.Clicks.Async && c.Clicks.Workers < 1 {
		return fmt.Errorf("click workers must be positive, got %d", c.Clicks.Workers)
	}
	return nil
}

// Default returns the built-in defaults without reading files or the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// defaults are static and always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}
