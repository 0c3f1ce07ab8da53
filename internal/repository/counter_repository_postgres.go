package repository

import (
	"context"
	"fmt"
)

type postgresCounterRepository struct {
	db *PostgresDB
}

// NewPostgresCounterRepository creates a counter backed by the counters table.
func NewPostgresCounterRepository(db *PostgresDB) CounterRepository {
	return &postgresCounterRepository{db: db}
}

// AddAndGet relies on the row lock taken by the upsert, so concurrent callers
// on the same key are serialized and each sees a distinct total.
func (r *postgresCounterRepository) AddAndGet(ctx context.Context, key string, delta int64) (int64, error) {
	query := `
		INSERT INTO counters (name, value)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + EXCLUDED.value
		RETURNING value
	`

	var total int64
	if err := r.db.Pool.QueryRow(ctx, query, key, delta).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to advance counter %q: %w", key, err)
	}

	return total, nil
}
