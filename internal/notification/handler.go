package notification

import (
	"pricehive_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("NotificationHandler")}
}

// RegisterRoutes mounts the inbox under /notifications. Every route is scoped to the caller.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	inbox := router.Group("/notifications", authMW)
	inbox.GET("", h.listInbox)
	inbox.GET("/unread-count", h.unreadCount)
	inbox.PUT("/read-all", h.markAllRead)
	inbox.PUT("/:notification_id/read", h.markRead)
}

// recipient returns the caller's id, or responds 401 and false.
func recipient(c *gin.Context) (uuid.UUID, bool) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return uuid.Nil, false
	}
	return userID, true
}

func (h *Handler) listInbox(c *gin.Context) {
	userID, ok := recipient(c)
	if !ok {
		return
	}
	page, pageSize := common.GetPaginationParams(c)

	items, pagination, err := h.service.GetNotificationsForUser(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Notifications retrieved successfully.", items, pagination)
}

func (h *Handler) unreadCount(c *gin.Context) {
	userID, ok := recipient(c)
	if !ok {
		return
	}
	n, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", UnreadCountResponse{Count: n})
}

func (h *Handler) markRead(c *gin.Context) {
	userID, ok := recipient(c)
	if !ok {
		return
	}
	id, err := common.ParseUUIDParam(c, "notification_id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.service.MarkNotificationAsRead(c.Request.Context(), id, userID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notification marked as read.", nil)
}

func (h *Handler) markAllRead(c *gin.Context) {
	userID, ok := recipient(c)
	if !ok {
		return
	}
	n, err := h.service.MarkAllUserNotificationsAsRead(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "All notifications marked as read.", MarkAllReadResponse{Updated: n})
}
