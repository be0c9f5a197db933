package analytics

import (
	"pricehive_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("AnalyticsHandler")}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := router.Group("/analytics", authMW)
	g.GET("/product/:product_id", h.productAnalytics)
	g.GET("/compare/:product_id", h.compare)
	g.GET("/stats", h.stats)
}

func (h *Handler) productAnalytics(c *gin.Context) {
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

	res, err := h.service.ProductAnalytics(c.Request.Context(), productID, supermarketID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Product analytics retrieved.", res)
}

func (h *Handler) compare(c *gin.Context) {
	productID, err := common.ParseUUIDParam(c, "product_id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	res, err := h.service.Compare(c.Request.Context(), productID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Price comparison retrieved.", res)
}

func (h *Handler) stats(c *gin.Context) {
	res, err := h.service.Stats(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Stats retrieved.", res)
}
