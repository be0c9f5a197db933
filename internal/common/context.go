package common

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BearerToken returns the token of an "Authorization: Bearer <token>" header, or "".
func BearerToken(c *gin.Context) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(c.GetHeader(AuthorizationHeader)), " ")
	if !ok || !strings.EqualFold(scheme, AuthorizationTypeBearer) {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetUserIDFromContext returns the authenticated user id, or uuid.Nil outside AuthMiddleware.
func GetUserIDFromContext(c *gin.Context) uuid.UUID {
	if userID, ok := c.Value(UserIDKey).(uuid.UUID); ok {
		return userID
	}
	return uuid.Nil
}

// RequestLogger returns the request-scoped logger set by the logging middleware.
func RequestLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Value(LoggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// ParseUUIDParam reads a path parameter as a UUID, returning ErrBadRequest when malformed.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, ErrBadRequest.WithDetails("Invalid " + name + " format.")
	}
	return id, nil
}

// ParseOptionalUUIDQuery reads an optional query parameter as a UUID.
func ParseOptionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, ErrBadRequest.WithDetails("Invalid " + name + " format.")
	}
	return &id, nil
}
