package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/snnyvrz/locallibrary/internal/config"
	"github.com/snnyvrz/locallibrary/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultMaxAttempts     = 10
	defaultDelayBetweenTry = 2 * time.Second
)

func dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		// foreign keys are off by default in sqlite
		return sqlite.Open(cfg.SQLitePath + "?_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// Open connects once and verifies the connection with a ping.
func Open(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.GinMode == "release" {
		level = logger.Error
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if cfg.DBDriver == config.DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// ConnectWithRetry keeps trying Open while the database starts up.
func ConnectWithRetry(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	var err error

	for attempt := 1; attempt <= defaultMaxAttempts; attempt++ {
		var db *gorm.DB
		db, err = Open(ctx, cfg)
		if err == nil {
			log.Info().Str("driver", cfg.DBDriver).Int("attempt", attempt).Msg("database connected")
			return db, nil
		}

		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", defaultMaxAttempts).
			Msg("db not ready")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(defaultDelayBetweenTry):
		}
	}

	return nil, fmt.Errorf("could not connect to db after %d attempts: %w", defaultMaxAttempts, err)
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
