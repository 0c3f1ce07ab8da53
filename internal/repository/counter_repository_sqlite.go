package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sqliteCounterRepository struct {
	db *SQLiteDB
}

// NewSQLiteCounterRepository creates a counter backed by the counters table.
func NewSQLiteCounterRepository(db *SQLiteDB) CounterRepository {
	return &sqliteCounterRepository{db: db}
}

// AddAndGet upserts and reads back inside one transaction. SQLite allows a
// single writer at a time, so totals are handed out in a strict order.
func (r *sqliteCounterRepository) AddAndGet(ctx context.Context, key string, delta int64) (int64, error) {
	var total int64
	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := counterRow{Name: key, Value: delta}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{"value": gorm.Expr("counters.value + ?", delta)}),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		var current counterRow
		if err := tx.Where("name = ?", key).Take(&current).Error; err != nil {
			return err
		}
		total = current.Value
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to advance counter %q: %w", key, err)
	}
	return total, nil
}
