package admin

import (
	handlershared "github.com/reseller-hub/internal/http/handlers/shared"
	"github.com/reseller-hub/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AdminOrderStats 订单统计，refresh=true 时跳过缓存
func (h *Handler) AdminOrderStats(c *gin.Context) {
	stats, err := h.StatsService.OrderStats(c.Request.Context(), handlershared.QueryBool(c, "refresh"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, stats)
}

// AdminShipmentStats 发货统计，refresh=true 时跳过缓存
func (h *Handler) AdminShipmentStats(c *gin.Context) {
	stats, err := h.StatsService.ShipmentStats(c.Request.Context(), handlershared.QueryBool(c, "refresh"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, stats)
}
