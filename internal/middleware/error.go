package middleware

import (
	"net/http"

	"pricehive_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler renders errors attached with c.Error, and gin's bare 404/405, as APIError JSON.
// Responses already written by a handler are left alone.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if last := c.Errors.Last(); last != nil {
			if apiErr, ok := common.IsAPIError(last.Err); ok {
				c.AbortWithStatusJSON(apiErr.StatusCode, apiErr)
				return
			}
			logger.Error("Unhandled application error",
				zap.Error(last.Err),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetString(RequestIDContextKey)),
			)
			apiErr := common.ErrInternalServer
			if gin.Mode() == gin.DebugMode {
				apiErr = apiErr.WithDetails(last.Err.Error())
			}
			c.AbortWithStatusJSON(apiErr.StatusCode, apiErr)
			return
		}

		switch c.Writer.Status() {
		case http.StatusNotFound:
			c.AbortWithStatusJSON(http.StatusNotFound,
				common.ErrNotFound.WithDetails("No endpoint "+c.Request.Method+" "+c.Request.URL.Path+"."))
		case http.StatusMethodNotAllowed:
			c.AbortWithStatusJSON(http.StatusMethodNotAllowed, common.ErrMethodNotAllowed)
		}
	}
}
