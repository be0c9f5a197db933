package redis

import (
	"context"
	"fmt"
	"time"

	"pricehive_backend/internal/config"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewClient connects to Redis. An empty REDIS_ADDR disables caching and yields a nil client.
func NewClient(cfg *config.Config, logger *zap.Logger) (*goredis.Client, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, catalog cache disabled.")
		return nil, func() {}, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		MaxRetries:   2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	logger.Info("Redis client connected", zap.String("addr", cfg.RedisAddr))
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Error("Error closing redis client", zap.Error(err))
		}
	}
	return client, cleanup, nil
}
