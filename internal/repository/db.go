package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/timmy/clueso/internal/config"
	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/logger"
)

// InitDB opens the archive database and migrates the job_records table.
// Parameters:
//   - cfg: archive configuration including driver, path and DSN.
//
// Returns:
//   - *gorm.DB: initialized database handle.
//   - error: non-nil if connection or migration fails.
func InitDB(cfg config.ArchiveConfig) (*gorm.DB, error) {
	ctx := logger.SetComponent(context.Background(), "archive")
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	switch cfg.Driver {
	case "postgres":
		logger.CtxInfo(ctx, "Opening PostgreSQL archive")
		db, err = initPostgres(cfg, gormConfig)
	case "sqlite", "":
		logger.CtxInfo(ctx, "Opening SQLite archive at %s", cfg.Path)
		db, err = initSQLite(cfg, gormConfig)
	default:
		return nil, fmt.Errorf("unsupported archive driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&domain.JobRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// initPostgres uses the simple protocol so transaction poolers work.
func initPostgres(cfg config.ArchiveConfig, gormConfig *gorm.Config) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("archive.dsn is required for postgres")
	}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN,
		PreferSimpleProtocol: true,
	}), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return db, nil
}

func initSQLite(cfg config.ArchiveConfig, gormConfig *gorm.Config) (*gorm.DB, error) {
	dsn := cfg.Path
	if cfg.DSN != "" {
		dsn = cfg.DSN
	}
	if dsn == "" {
		return nil, fmt.Errorf("archive.path is required for sqlite")
	}
	if cfg.DSN == "" && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	return db, nil
}
