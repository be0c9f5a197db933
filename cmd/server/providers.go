package main

import (
	"pricehive_backend/internal/alert"
	"pricehive_backend/internal/analytics"
	"pricehive_backend/internal/app"
	"pricehive_backend/internal/catalog"
	"pricehive_backend/internal/config"
	"pricehive_backend/internal/notification"
	"pricehive_backend/internal/platform/database"
	"pricehive_backend/internal/price"
	"pricehive_backend/internal/shopping"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// provideDB opens the pool and, in development, auto-migrates every model.
func provideDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBAutoMigrate {
		if err := database.AutoMigrate(db, allModels()...); err != nil {
			database.CloseGORMDB(db, logger)
			return nil, nil, err
		}
		logger.Info("Database auto-migration completed.")
	}
	return db, func() { database.CloseGORMDB(db, logger) }, nil
}

func allModels() []interface{} {
	models := catalog.Models()
	return append(models,
		&price.PriceRecord{},
		&alert.Alert{},
		&notification.Notification{},
		&shopping.ShoppingList{},
		&shopping.ShoppingListItem{},
	)
}

// provideDirectory fronts the catalog with Redis when a client is configured.
func provideDirectory(db *gorm.DB, rdb *goredis.Client, cfg *config.Config, logger *zap.Logger) catalog.Directory {
	var dir catalog.Directory = catalog.NewGORMDirectory(db)
	if rdb != nil {
		dir = catalog.NewCachedDirectory(dir, rdb, cfg.CatalogCacheTTL, logger)
	}
	return dir
}

func provideHandlers(
	priceHandler *price.Handler,
	alertHandler *alert.Handler,
	notificationHandler *notification.Handler,
	shoppingHandler *shopping.Handler,
	analyticsHandler *analytics.Handler,
) app.Handlers {
	return app.Handlers{
		Price:        priceHandler,
		Alert:        alertHandler,
		Notification: notificationHandler,
		Shopping:     shoppingHandler,
		Analytics:    analyticsHandler,
	}
}
