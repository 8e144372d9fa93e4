package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/evcompare/internal/service"
)

// GetPrices 当前参考价格及价格源状态
func (h *Handler) GetPrices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.prices.Current()})
}

// RefreshPrices 强制抓取参考价格
// POST /api/prices/refresh
// 失败时仍返回当前生效的价格
func (h *Handler) RefreshPrices(c *gin.Context) {
	quote, err := h.prices.ForceRefresh(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"data": quote})
	case errors.Is(err, service.ErrNoPriceSource):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "data": quote})
	default:
		h.logger.Warn("Manual price refresh failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "data": quote})
	}
}
