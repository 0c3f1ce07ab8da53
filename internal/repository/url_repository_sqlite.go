package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/quicklink/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sqliteURLRepository struct {
	db *SQLiteDB
}

// NewSQLiteURLRepository creates a URL store on the urls table.
func NewSQLiteURLRepository(db *SQLiteDB) URLRepository {
	return &sqliteURLRepository{db: db}
}

func (r *sqliteURLRepository) Save(ctx context.Context, record *models.URLRecord) error {
	row := urlRow{
		Code:        record.Code,
		Destination: record.Destination,
		CreatedUnix: record.CreatedAt,
		ExpiresUnix: record.ExpiresAt,
		Active:      record.Active,
		IsAlias:     record.IsAlias,
		ClickCount:  record.ClickCount,
	}

	err := r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save url: %w", err)
	}
	return nil
}

func (r *sqliteURLRepository) GetByCode(ctx context.Context, code string) (*models.URLRecord, error) {
	var row urlRow
	err := r.db.DB.WithContext(ctx).Where("code = ?", code).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrURLNotFound
		}
		return nil, fmt.Errorf("failed to get url: %w", err)
	}

	return &models.URLRecord{
		Code:        row.Code,
		Destination: row.Destination,
		CreatedAt:   row.CreatedUnix,
		ExpiresAt:   row.ExpiresUnix,
		Active:      row.Active,
		IsAlias:     row.IsAlias,
		ClickCount:  row.ClickCount,
	}, nil
}

func (r *sqliteURLRepository) Exists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.DB.WithContext(ctx).Model(&urlRow{}).Where("code = ?", code).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check url: %w", err)
	}
	return n > 0, nil
}

func (r *sqliteURLRepository) Deactivate(ctx context.Context, code string) error {
	return r.update(ctx, code, "active", false)
}

func (r *sqliteURLRepository) SetExpiresAt(ctx context.Context, code string, expiresAt *int64) error {
	if expiresAt == nil {
		return r.updateActive(ctx, code, "expires_at", gorm.Expr("NULL"))
	}
	return r.updateActive(ctx, code, "expires_at", *expiresAt)
}

func (r *sqliteURLRepository) IncrementClicks(ctx context.Context, code string) error {
	return r.updateActive(ctx, code, "click_count", gorm.Expr("click_count + ?", 1))
}

func (r *sqliteURLRepository) update(ctx context.Context, code, column string, value any) error {
	result := r.db.DB.WithContext(ctx).Model(&urlRow{}).Where("code = ?", code).Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrURLNotFound
	}
	return nil
}

func (r *sqliteURLRepository) updateActive(ctx context.Context, code, column string, value any) error {
	result := r.db.DB.WithContext(ctx).Model(&urlRow{}).
		Where("code = ? AND active = ?", code, true).
		Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", column, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	exists, err := r.Exists(ctx, code)
	if err != nil {
		return err
	}
	if exists {
		return ErrURLInactive
	}
	return ErrURLNotFound
}
