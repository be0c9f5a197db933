package middleware

import (
	"time"

	"pricehive_backend/internal/common"
	"pricehive_backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader     = "X-Request-ID"
	RequestIDContextKey = "requestID"
)

// ZapLogger tags each request with an id (taken from X-Request-ID or generated), stores a
// request-scoped logger in the context and logs one line per request once it completes.
func ZapLogger(logger *zap.Logger, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Set(RequestIDContextKey, requestID)
		reqLogger := logger.With(zap.String("request_id", requestID))
		c.Set(common.LoggerKey, reqLogger)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status_code", status),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if userID := common.GetUserIDFromContext(c); userID != uuid.Nil {
			fields = append(fields, zap.String("user_id", userID.String()))
		}
		for _, e := range c.Errors.ByType(gin.ErrorTypePrivate) {
			fields = append(fields, zap.NamedError("error", e.Err))
		}

		switch {
		case status >= 500:
			reqLogger.Error("Request failed", fields...)
		case status >= 400 && cfg.GinMode == gin.ReleaseMode:
			reqLogger.Warn("Request rejected", fields...)
		default:
			reqLogger.Info("Request handled", fields...)
		}
	}
}
