package database

import (
	"fmt"
	"time"

	"pricehive_backend/internal/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewGORM opens the PostgreSQL connection pool used by every repository.
func NewGORM(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GORMDSN()), &gorm.Config{
		Logger:      NewGORMLogger(cfg, logger),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to the database.", zap.String("host", cfg.DBHost), zap.String("database", cfg.DBName))
	return db, nil
}

// NewGORMLogger routes gorm's SQL logging through zap at a level derived from LOG_LEVEL.
func NewGORMLogger(cfg *config.Config, logger *zap.Logger) gormlogger.Interface {
	var level gormlogger.LogLevel
	switch cfg.LogLevel {
	case "silent", "fatal", "panic":
		level = gormlogger.Silent
	case "error":
		level = gormlogger.Error
	case "debug":
		level = gormlogger.Info
	default:
		level = gormlogger.Warn
	}

	return gormlogger.New(
		zap.NewStdLog(logger.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// AutoMigrate creates or alters tables for the given models. Used in development
// and tests; production schemas are managed by the SQL migrations.
func AutoMigrate(db *gorm.DB, models ...interface{}) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate failed: %w", err)
	}
	return nil
}

// CloseGORMDB closes the GORM database connection.
func CloseGORMDB(db *gorm.DB, logger *zap.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Error getting underlying SQL DB for closing", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing database connection", zap.Error(err))
		return
	}
	logger.Info("Database connection closed.")
}
