package repository

import (
	"context"
	"fmt"

	"github.com/SergeiKhy/quicklink/internal/config"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLiteDB is the embedded backend for single-node deployments.
type SQLiteDB struct {
	DB *gorm.DB
}

type urlRow struct {
	Code        string `gorm:"primaryKey;size:64"`
	Destination string `gorm:"not null"`
	CreatedUnix int64  `gorm:"column:created_at;not null"`
	ExpiresUnix *int64 `gorm:"column:expires_at"`
	Active      bool   `gorm:"not null"`
	IsAlias     bool   `gorm:"not null"`
	ClickCount  int64  `gorm:"not null"`
}

func (urlRow) TableName() string { return "urls" }

type counterRow struct {
	Name  string `gorm:"primaryKey;size:128"`
	Value int64  `gorm:"not null"`
}

func (counterRow) TableName() string { return "counters" }

// NewSQLiteDB opens the database file, creating it if needed.
func NewSQLiteDB(cfg config.SQLiteConfig) (*SQLiteDB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// one connection serializes writers, which also keeps ":memory:" databases alive
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return &SQLiteDB{DB: db}, nil
}

// Migrate creates or updates the urls and counters tables.
func (s *SQLiteDB) Migrate(ctx context.Context) error {
	if err := s.DB.WithContext(ctx).AutoMigrate(&urlRow{}, &counterRow{}); err != nil {
		return fmt.Errorf("failed to migrate sqlite: %w", err)
	}
	return nil
}

func (s *SQLiteDB) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLiteDB) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
