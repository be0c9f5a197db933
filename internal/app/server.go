package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pricehive_backend/internal/alert"
	"pricehive_backend/internal/analytics"
	"pricehive_backend/internal/common"
	"pricehive_backend/internal/config"
	"pricehive_backend/internal/jobs"
	"pricehive_backend/internal/middleware"
	"pricehive_backend/internal/notification"
	"pricehive_backend/internal/platform/elasticsearch"
	"pricehive_backend/internal/price"
	"pricehive_backend/internal/shared"
	"pricehive_backend/internal/shopping"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups the feature handlers mounted under /api/v1.
type Handlers struct {
	Price        *price.Handler
	Alert        *alert.Handler
	Notification *notification.Handler
	Shopping     *shopping.Handler
	Analytics    *analytics.Handler
}

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config

	AppLogger *zap.Logger
	ESClient  *elasticsearch.ESClientWrapper

	retentionJob *jobs.NotificationRetentionJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	tokens shared.TokenValidator,
	handlers Handlers,
	retentionJob *jobs.NotificationRetentionJob,
	esClient *elasticsearch.ESClientWrapper,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	common.RegisterValidators()

	router := NewRouter(cfg, logger, tokens, handlers)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:   httpServer,
		router:       router,
		cfg:          cfg,
		AppLogger:    logger,
		ESClient:     esClient,
		retentionJob: retentionJob,
	}, nil
}

// NewRouter builds the gin engine with global middleware and all routes.
func NewRouter(cfg *config.Config, logger *zap.Logger, tokens shared.TokenValidator, handlers Handlers) *gin.Engine {
	router := gin.New()

	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "PriceHive API is healthy!"})
	})

	authMW := middleware.AuthMiddleware(tokens, logger.Named("AuthMiddleware"))
	v1 := router.Group("/api/v1")

	if handlers.Price != nil {
		handlers.Price.RegisterRoutes(v1, authMW)
	}
	if handlers.Alert != nil {
		handlers.Alert.RegisterRoutes(v1, authMW)
	}
	if handlers.Notification != nil {
		handlers.Notification.RegisterRoutes(v1, authMW)
	}
	if handlers.Shopping != nil {
		handlers.Shopping.RegisterRoutes(v1, authMW)
	}
	if handlers.Analytics != nil {
		handlers.Analytics.RegisterRoutes(v1, authMW)
	}

	return router
}

func (s *Server) Start() error {
	if s.retentionJob != nil {
		if err := s.retentionJob.SetupAndStart(); err != nil {
			s.AppLogger.Error("Failed to setup and start notification retention job", zap.Error(err))
		}
	} else {
		s.AppLogger.Info("Notification retention job is not configured, skipping start.")
	}

	s.AppLogger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.AppLogger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.AppLogger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.AppLogger.Info("Attempting graceful server shutdown...")
	if s.retentionJob != nil {
		s.retentionJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
