package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/evcompare/internal/engine"
	"github.com/langchou/evcompare/internal/models"
	"github.com/langchou/evcompare/internal/service"
)

// DeriveRouteMixRequest 由两项占比推导第三项
type DeriveRouteMixRequest struct {
	UrbanPct      float64 `json:"urban_pct"`
	ExtraUrbanPct float64 `json:"extraurban_pct"`
}

// Compare 执行一次对比
// POST /api/compare
func (h *Handler) Compare(c *gin.Context) {
	var req service.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": []string{err.Error()}})
		return
	}

	resp, err := h.comparison.Compare(c.Request.Context(), "http", req)
	if err != nil {
		h.respondComparisonError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// DeriveRouteMix 推导高速占比
// POST /api/route-mix/derive
func (h *Handler) DeriveRouteMix(c *gin.Context) {
	var req DeriveRouteMixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": []string{err.Error()}})
		return
	}

	mix, err := engine.DeriveRouteMix(req.UrbanPct, req.ExtraUrbanPct)
	if err != nil {
		h.respondComparisonError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": mix})
}

// EmissionFactors 固定排放因子表
// GET /api/emission-factors
func (h *Handler) EmissionFactors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.emissionFactors()})
}

func (h *Handler) emissionFactors() models.EmissionFactors {
	if f := h.comparison.Options().Factors; f != nil {
		return f
	}
	return models.DefaultEmissionFactors()
}

// respondComparisonError 校验错误 400 并列出每个字段，其余 500
func (h *Handler) respondComparisonError(c *gin.Context, err error) {
	status, body := comparisonErrorBody(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Failed to compute comparison", zap.Error(err))
	}
	c.JSON(status, body)
}

func comparisonErrorBody(err error) (int, gin.H) {
	if details := engine.InvalidInputs(err); len(details) > 0 {
		return http.StatusBadRequest, gin.H{"error": "Invalid input", "details": details}
	}
	if errors.Is(err, models.ErrPresetNotFound) {
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	}
	return http.StatusInternalServerError, gin.H{"error": "Failed to compute comparison"}
}
