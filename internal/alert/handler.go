package alert

import (
	"errors"

	"pricehive_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("AlertHandler")}
}

// RegisterRoutes sets up the routes for alert operations. All of them require authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	alerts := router.Group("/alerts", authMW)
	alerts.POST("", h.createAlert)
	alerts.GET("", h.listAlerts)
	alerts.DELETE("/:alert_id", h.deleteAlert)
}

func (h *Handler) createAlert(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(verrs)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	alert, err := h.service.CreateAlert(c.Request.Context(), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Alert created successfully.", alert)
}

func (h *Handler) listAlerts(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	alerts, err := h.service.ListAlerts(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Alerts retrieved successfully.", alerts)
}

func (h *Handler) deleteAlert(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	alertID, err := common.ParseUUIDParam(c, "alert_id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	if err := h.service.DeleteAlert(c.Request.Context(), alertID, userID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Alert deleted.", nil)
}
