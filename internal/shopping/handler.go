package shopping

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
	return &Handler{service: service, logger: logger.Named("ShoppingHandler")}
}

// RegisterRoutes sets up the routes for shopping lists. All of them require authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	lists := router.Group("/shopping-lists", authMW)
	lists.POST("", h.createList)
	lists.GET("", h.listLists)
	lists.GET("/:list_id", h.getList)
	lists.PUT("/:list_id", h.updateList)
	lists.DELETE("/:list_id", h.deleteList)
	lists.POST("/:list_id/submit-prices", h.submitPrices)
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(verrs)))
			return false
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return false
	}
	return true
}

// ownerAndList reads the caller and the :list_id parameter, responding on failure.
func ownerAndList(c *gin.Context) (userID, listID uuid.UUID, ok bool) {
	userID = common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return uuid.Nil, uuid.Nil, false
	}
	listID, err := common.ParseUUIDParam(c, "list_id")
	if err != nil {
		common.RespondWithError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, listID, true
}

func (h *Handler) createList(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	var req CreateShoppingListRequest
	if !bindJSON(c, &req) {
		return
	}

	list, err := h.service.CreateList(c.Request.Context(), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Shopping list created successfully.", list)
}

func (h *Handler) listLists(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	lists, err := h.service.ListLists(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Shopping lists retrieved successfully.", lists)
}

func (h *Handler) getList(c *gin.Context) {
	userID, listID, ok := ownerAndList(c)
	if !ok {
		return
	}

	list, err := h.service.GetList(c.Request.Context(), listID, userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Shopping list retrieved successfully.", list)
}

func (h *Handler) updateList(c *gin.Context) {
	userID, listID, ok := ownerAndList(c)
	if !ok {
		return
	}

	var req UpdateShoppingListRequest
	if !bindJSON(c, &req) {
		return
	}

	list, err := h.service.UpdateList(c.Request.Context(), listID, userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Shopping list updated successfully.", list)
}

func (h *Handler) deleteList(c *gin.Context) {
	userID, listID, ok := ownerAndList(c)
	if !ok {
		return
	}

	if err := h.service.DeleteList(c.Request.Context(), listID, userID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Shopping list deleted.", nil)
}

func (h *Handler) submitPrices(c *gin.Context) {
	userID, listID, ok := ownerAndList(c)
	if !ok {
		return
	}

	res, err := h.service.Commit(c.Request.Context(), listID, userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, res.Message, res)
}
