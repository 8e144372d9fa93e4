package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/evcompare/internal/models"
)

// ListVehicles 获取车型列表
// GET /api/vehicles?powertrain=electric
func (h *Handler) ListVehicles(c *gin.Context) {
	var powertrain models.Powertrain
	if q := c.Query("powertrain"); q != "" {
		p, ok := models.ParsePowertrain(q)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid powertrain"})
			return
		}
		powertrain = p
	}

	presets, err := h.comparison.ListPresets(c.Request.Context(), powertrain)
	if err != nil {
		h.logger.Error("Failed to list presets", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list vehicles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": presets})
}

// GetVehicle 获取车型详情
func (h *Handler) GetVehicle(c *gin.Context) {
	preset, err := h.comparison.GetPreset(c.Request.Context(), c.Param("id"))
	if errors.Is(err, models.ErrPresetNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to get preset", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get vehicle"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": preset})
}
