//go:build wireinject
// +build wireinject

package main

import (
	"pricehive_backend/internal/alert"
	"pricehive_backend/internal/analytics"
	"pricehive_backend/internal/app"
	"pricehive_backend/internal/auth"
	"pricehive_backend/internal/config"
	"pricehive_backend/internal/events"
	"pricehive_backend/internal/jobs"
	"pricehive_backend/internal/notification"
	"pricehive_backend/internal/platform/elasticsearch"
	"pricehive_backend/internal/platform/logger"
	"pricehive_backend/internal/platform/redis"
	"pricehive_backend/internal/price"
	"pricehive_backend/internal/reward"
	"pricehive_backend/internal/shared"
	"pricehive_backend/internal/shopping"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform
		logger.New,
		provideDB,
		redis.NewClient,
		elasticsearch.NewClient,
		events.NewPublisher,
		provideDirectory,

		// Auth
		auth.NewJWTService,
		wire.Bind(new(shared.TokenValidator), new(*auth.JWTService)),

		// Collaborators
		reward.NewEventRewarder,
		wire.Bind(new(shared.Rewarder), new(*reward.EventRewarder)),
		notification.NewGORMRepository,
		notification.NewService,
		wire.Bind(new(notification.Service), new(*notification.ServiceImplementation)),
		wire.Bind(new(shared.Notifier), new(*notification.ServiceImplementation)),
		wire.Bind(new(jobs.NotificationPurger), new(*notification.ServiceImplementation)),

		// Alerts
		alert.NewGORMRepository,
		alert.NewEngine,
		alert.NewService,

		// Price ledger
		price.NewGORMRepository,
		price.NewResolver,
		price.NewESIndex,
		price.NewService,
		wire.Bind(new(price.Service), new(*price.ServiceImplementation)),
		wire.Bind(new(shopping.PriceRecorder), new(*price.ServiceImplementation)),
		wire.Bind(new(analytics.PriceReader), new(price.Repository)),

		// Shopping lists and analytics
		shopping.NewGORMRepository,
		shopping.NewService,
		wire.Bind(new(shopping.Service), new(*shopping.ServiceImplementation)),
		analytics.NewService,
		wire.Bind(new(analytics.Service), new(*analytics.ServiceImplementation)),

		// HTTP
		price.NewHandler,
		alert.NewHandler,
		notification.NewHandler,
		shopping.NewHandler,
		analytics.NewHandler,
		provideHandlers,

		jobs.NewNotificationRetentionJob,
		app.NewServer,
	)
	return nil, nil, nil
}
