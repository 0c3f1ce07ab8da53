package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/quicklink/internal/models"
	"github.com/jackc/pgx/v5"
)

type postgresURLRepository struct {
	db *PostgresDB
}

// NewPostgresURLRepository creates a URL store on the urls table.
func NewPostgresURLRepository(db *PostgresDB) URLRepository {
	return &postgresURLRepository{db: db}
}

func (r *postgresURLRepository) Save(ctx context.Context, record *models.URLRecord) error {
	query := `
		INSERT INTO urls (code, destination, created_at, expires_at, active, is_alias, click_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO UPDATE SET
			destination = EXCLUDED.destination,
			created_at  = EXCLUDED.created_at,
			expires_at  = EXCLUDED.expires_at,
			active      = EXCLUDED.active,
			is_alias    = EXCLUDED.is_alias,
			click_count = EXCLUDED.click_count
	`

	_, err := r.db.Pool.Exec(ctx, query,
		record.Code,
		record.Destination,
		record.CreatedAt,
		record.ExpiresAt,
		record.Active,
		record.IsAlias,
		record.ClickCount,
	)
	if err != nil {
		return fmt.Errorf("failed to save url: %w", classifyPgError(err))
	}

	return nil
}

func (r *postgresURLRepository) GetByCode(ctx context.Context, code string) (*models.URLRecord, error) {
	query := `
		SELECT code, destination, created_at, expires_at, active, is_alias, click_count
		FROM urls
		WHERE code = $1
	`

	rec := &models.URLRecord{}
	err := r.db.Pool.QueryRow(ctx, query, code).Scan(
		&rec.Code,
		&rec.Destination,
		&rec.CreatedAt,
		&rec.ExpiresAt,
		&rec.Active,
		&rec.IsAlias,
		&rec.ClickCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrURLNotFound
		}
		return nil, fmt.Errorf("failed to get url: %w", err)
	}

	return rec, nil
}

func (r *postgresURLRepository) Exists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM urls WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check url: %w", err)
	}
	return exists, nil
}

func (r *postgresURLRepository) Deactivate(ctx context.Context, code string) error {
	return r.exec(ctx, "deactivate url", `UPDATE urls SET active = FALSE WHERE code = $1`, code)
}

func (r *postgresURLRepository) SetExpiresAt(ctx context.Context, code string, expiresAt *int64) error {
	return r.execActive(ctx, "set expiry", code, `UPDATE urls SET expires_at = $2 WHERE code = $1 AND active`, code, expiresAt)
}

func (r *postgresURLRepository) IncrementClicks(ctx context.Context, code string) error {
	return r.execActive(ctx, "increment clicks", code, `UPDATE urls SET click_count = click_count + 1 WHERE code = $1 AND active`, code)
}

func (r *postgresURLRepository) exec(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, classifyPgError(err))
	}

	if result.RowsAffected() == 0 {
		return ErrURLNotFound
	}

	return nil
}

// execActive runs an update guarded on the active flag. When nothing matched
// it tells an unknown code apart from a deactivated one.
func (r *postgresURLRepository) execActive(ctx context.Context, op, code, query string, args ...any) error {
	err := r.exec(ctx, op, query, args...)
	if !errors.Is(err, ErrURLNotFound) {
		return err
	}

	exists, existsErr := r.Exists(ctx, code)
	if existsErr != nil {
		return existsErr
	}
	if exists {
		return ErrURLInactive
	}
	return ErrURLNotFound
}
