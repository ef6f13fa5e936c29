// Package db opens the database, applies the schema and seeds reference data.
package db

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/go-retail/internal/config"
)

// Open connects to the configured database, retrying with exponential backoff
// while the server is starting.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath + "?_foreign_keys=1")
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel), TranslateError: true}

	var db *gorm.DB
	attempt := 0
	op := func() error {
		attempt++
		var err error
		db, err = gorm.Open(dialector, gcfg)
		if err == nil {
			err = db.Exec("SELECT 1").Error
		}
		if err != nil {
			log.Warn("database not ready, retrying", zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	if err := backoff.Retry(op, backoff.WithMaxRetries(policy, cfg.ConnectRetries)); err != nil {
		return nil, errors.Wrap(err, "failed to connect database after retries")
	}

	log.Info("database connected", zap.String("driver", cfg.Driver), zap.String("host", cfg.Host), zap.String("name", cfg.Name))
	return db, nil
}
