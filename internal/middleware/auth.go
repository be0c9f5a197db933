package middleware

import (
	"pricehive_backend/internal/common"
	"pricehive_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
// The verified user id is stored under common.UserIDKey and treated as opaque downstream.
func AuthMiddleware(tokenService shared.TokenValidator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := common.BearerToken(c)
		if token == "" {
			logger.Debug("Bearer token missing", zap.String("path", c.Request.URL.Path))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header must be 'Bearer <token>'."))
			return
		}

		claims, err := tokenService.ValidateToken(token)
		if err != nil {
			logger.Warn("Token validation failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired token."))
			return
		}
		if claims.UserID == uuid.Nil {
			logger.Warn("Token carries no user_id")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Token has no user."))
			return
		}

		c.Set(common.UserIDKey, claims.UserID)

		c.Next()
	}
}
