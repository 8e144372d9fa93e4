package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/langchou/evcompare/internal/service"
	"github.com/langchou/evcompare/pkg/ws"
)

// PriceFeed 参考价格
type PriceFeed interface {
	Current() service.PriceQuote
	ForceRefresh(ctx context.Context) (service.PriceQuote, error)
}

// Handler HTTP 处理器
type Handler struct {
	logger     *zap.Logger
	comparison *service.ComparisonService
	prices     PriceFeed
	wsHub      *ws.Hub
	upgrader   websocket.Upgrader
}

// NewHandler 创建处理器，并接管 Hub 的初始数据与消息处理
func NewHandler(
	logger *zap.Logger,
	comparison *service.ComparisonService,
	prices PriceFeed,
	wsHub *ws.Hub,
) *Handler {
	h := &Handler{
		logger:     logger,
		comparison: comparison,
		prices:     prices,
		wsHub:      wsHub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 开发环境允许所有来源
			},
		},
	}
	if wsHub != nil {
		wsHub.SetInitDataProvider(h.wsInitData)
		wsHub.SetMessageHandler(h.handleWSMessage)
	}
	return h
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		// 对比
		api.POST("/compare", h.Compare)
		api.POST("/route-mix/derive", h.DeriveRouteMix)
		api.GET("/emission-factors", h.EmissionFactors)

		// 行程日志
		api.POST("/triplogs", h.UploadTripLogs)

		// 车型
		api.GET("/vehicles", h.ListVehicles)
		api.GET("/vehicles/:id", h.GetVehicle)

		// 参考价格
		api.GET("/prices", h.GetPrices)
		api.POST("/prices/refresh", h.RefreshPrices)
	}

	// WebSocket
	r.GET("/ws", h.HandleWebSocket)

	// 健康检查
	r.GET("/health", h.HealthCheck)

	// Prometheus
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// HandleWebSocket WebSocket 处理
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	client.Register()

	// 启动读写协程
	go client.ReadPump()
	go client.WritePump()
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	clients := 0
	if h.wsHub != nil {
		clients = h.wsHub.ClientCount()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"ws_clients": clients,
		"price_feed": h.prices.Current().State,
	})
}
