package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Envelope wraps every successful response. Pagination is set only on paged lists.
type Envelope struct {
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// RespondWithError aborts with err rendered as an APIError. Anything else becomes a 500
// and is logged with the request's logger; details are exposed only in debug mode.
func RespondWithError(c *gin.Context, err error) {
	apiErr, ok := IsAPIError(err)
	if !ok {
		RequestLogger(c).Error("Unhandled internal error", zap.String("path", c.FullPath()), zap.Error(err))
		apiErr = ErrInternalServer
		if gin.Mode() == gin.DebugMode {
			apiErr = ErrInternalServer.WithDetails(err.Error())
		}
	}
	c.AbortWithStatusJSON(apiErr.StatusCode, apiErr)
}

func respond(c *gin.Context, status int, message string, data interface{}, p *Pagination) {
	c.JSON(status, Envelope{Status: "success", Message: message, Data: data, Pagination: p})
}

func RespondOK(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusOK, message, data, nil)
}

func RespondCreated(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusCreated, message, data, nil)
}

func RespondPaginated(c *gin.Context, message string, data interface{}, pagination *Pagination) {
	respond(c, http.StatusOK, message, data, pagination)
}
