package price

import (
	"errors"
	"strings"

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
	return &Handler{service: service, logger: logger.Named("PriceHandler")}
}

// RegisterRoutes sets up the routes for price operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	prices := router.Group("/prices", authMW)
	prices.POST("", h.submitPrice)
	prices.GET("", h.listPrices)
	prices.GET("/search", h.searchPrices)
	prices.GET("/latest/:product_id", h.latestPrice)
}

func (h *Handler) submitPrice(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	var req SubmitPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(verrs)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	price, err := h.service.SubmitPrice(c.Request.Context(), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Price submitted successfully.", price)
}

func (h *Handler) listPrices(c *gin.Context) {
	sellableID, err := common.ParseOptionalUUIDQuery(c, "sellable_product_id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	limit := common.GetLimitParam(c, DefaultListLimit, MaxListLimit)

	prices, err := h.service.ListPrices(c.Request.Context(), sellableID, limit)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Prices retrieved successfully.", prices)
}

func (h *Handler) latestPrice(c *gin.Context) {
	productID, err := common.ParseUUIDParam(c, "product_id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	supermarketID, err := common.ParseOptionalUUIDQuery(c, "supermarket_id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	latest, err := h.service.LatestPrice(c.Request.Context(), productID, supermarketID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Latest price retrieved.", latest)
}

func (h *Handler) searchPrices(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Query parameter 'q' is required."))
		return
	}
	limit := common.GetLimitParam(c, 20, DefaultListLimit)

	docs, err := h.service.SearchPrices(c.Request.Context(), q, limit)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Prices found.", docs)
}
