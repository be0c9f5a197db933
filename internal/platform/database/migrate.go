package database

import (
	"database/sql"
	"errors"
	"fmt"

	"pricehive_backend/internal/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// RunMigrations applies pending SQL migrations from cfg.MigrationsPath.
func RunMigrations(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", cfg.DBSource)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("load migrations from %s: %w", cfg.MigrationsPath, err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Database schema is up to date.")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("Migrations applied successfully.", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
