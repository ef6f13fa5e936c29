package db

import (
	"embed"

	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/go-retail/internal/config"
	"github.com/diewo77/go-retail/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var requiredTables = []string{"users", "products", "clients", "orders", "order_items", "invoices"}

// Migrate brings the schema up to date. With MIGRATIONS enabled on postgres the
// embedded SQL migrations run through golang-migrate; otherwise models are auto-migrated.
func Migrate(db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	if cfg.App.Migrations && cfg.Database.Driver == "postgres" {
		log.Info("running sql migrations")
		if err := runSQLMigrations(cfg.Database.URL()); err != nil {
			return errors.Wrap(err, "sql migrations failed")
		}
	} else if err := AutoMigrate(db); err != nil {
		return err
	}

	for _, table := range requiredTables {
		if !db.Migrator().HasTable(table) {
			return errors.Errorf("missing table after migration: %s", table)
		}
	}
	return nil
}

// AutoMigrate creates or updates every table from the gorm models.
func AutoMigrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return errors.Wrapf(err, "automigrate %T", m)
		}
	}
	return nil
}

func runSQLMigrations(databaseURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
