package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricehive_backend/internal/alert"
	"pricehive_backend/internal/config"
	"pricehive_backend/internal/events"
	"pricehive_backend/internal/platform/database"
	platformElasticsearch "pricehive_backend/internal/platform/elasticsearch"
	"pricehive_backend/internal/platform/logger"
	"pricehive_backend/internal/price"
	"pricehive_backend/internal/reward"
	"pricehive_backend/internal/shared"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			runMigrate()
			return
		case "sync-prices":
			runSyncPrices(os.Args[2:])
			return
		}
	}
	startServer()
}

func loadConfigAndLogger() (*config.Config, *zap.Logger) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	return cfg, appLogger
}

func runMigrate() {
	cfg, appLogger := loadConfigAndLogger()
	defer appLogger.Sync() //nolint:errcheck

	if err := database.RunMigrations(cfg, appLogger); err != nil {
		appLogger.Fatal("FATAL: Migration failed", zap.Error(err))
	}
}

// runSyncPrices rebuilds the Elasticsearch prices index from the ledger.
func runSyncPrices(args []string) {
	syncCmd := flag.NewFlagSet("sync-prices", flag.ExitOnError)
	batchSize := syncCmd.Int("batch-size", 500, "Batch size for syncing prices")
	_ = syncCmd.Parse(args)

	cfg, appLogger := loadConfigAndLogger()
	defer appLogger.Sync() //nolint:errcheck

	db, cleanupDB, err := provideDB(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("FATAL: Failed to initialize database for sync", zap.Error(err))
	}
	defer cleanupDB()

	esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("FATAL: Failed to initialize Elasticsearch client for sync", zap.Error(err))
	}
	if esClient == nil {
		appLogger.Fatal("FATAL: A reachable Elasticsearch at ELASTICSEARCH_URL is required to sync prices.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := platformElasticsearch.CreatePricesIndexIfNotExists(ctx, esClient, appLogger); err != nil {
		appLogger.Fatal("FATAL: Failed to create/verify Elasticsearch index before sync", zap.Error(err))
	}

	// Reindexing never submits prices, so alerts and rewards run against no-op collaborators.
	dir := provideDirectory(db, nil, cfg, appLogger)
	repo := price.NewGORMRepository(db)
	publisher := events.NewLogPublisher(appLogger)
	service := price.NewService(
		repo,
		price.NewResolver(repo, dir),
		dir,
		alert.NewEngine(alert.NewGORMRepository(db), dir, noopNotifier{}, publisher, appLogger),
		reward.NewEventRewarder(publisher, appLogger),
		publisher,
		price.NewESIndex(esClient, appLogger),
		cfg,
		appLogger,
	)

	synced, err := service.Reindex(ctx, *batchSize)
	if err != nil {
		appLogger.Fatal("FATAL: Price synchronization failed", zap.Int("synced", synced), zap.Error(err))
	}
	appLogger.Info("Price synchronization completed successfully.", zap.Int("synced", synced))
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, shared.NotificationInput) error { return nil }

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	if server.ESClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := platformElasticsearch.CreatePricesIndexIfNotExists(ctx, server.ESClient, server.AppLogger); err != nil {
			server.AppLogger.Error("Failed to create Elasticsearch prices index; search will be degraded.", zap.Error(err))
		}
		cancel()
	} else {
		server.AppLogger.Info("Elasticsearch client not initialized, skipping index creation.")
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	server.AppLogger.Info("Received signal, shutting down server...", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		server.AppLogger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		server.AppLogger.Info("Server shutdown complete.")
	}
	_ = server.AppLogger.Sync()
}
