package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SergeiKhy/quicklink/internal/config"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDB wraps the pgx connection pool.
type PostgresDB struct {
	Pool *pgxpool.Pool
}

// NewPostgresDB opens a pool and verifies the connection.
func NewPostgresDB(cfg config.DBConfig) (*PostgresDB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB config: %w", err)
	}

	poolConfig.MaxConns = 25
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{Pool: pool}, nil
}

func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

func (db *PostgresDB) Close() {
	db.Pool.Close()
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS urls (
	code        TEXT PRIMARY KEY,
	destination TEXT NOT NULL,
	created_at  BIGINT NOT NULL,
	expires_at  BIGINT NULL,
	active      BOOLEAN NOT NULL,
	is_alias    BOOLEAN NOT NULL,
	click_count BIGINT NOT NULL DEFAULT 0,
	CONSTRAINT urls_click_count_non_negative CHECK (click_count >= 0),
	CONSTRAINT urls_expiry_after_creation CHECK (expires_at IS NULL OR expires_at > created_at)
);

CREATE TABLE IF NOT EXISTS counters (
	name  TEXT PRIMARY KEY,
	value BIGINT NOT NULL
);
`

// Migrate creates the tables used by the Postgres repositories.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// classifyPgError maps constraint failures onto repository errors.
func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
		return fmt.Errorf("%w: %s", ErrInvariantViolation, pgErr.ConstraintName)
	}
	return err
}
