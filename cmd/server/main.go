package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/evcompare/internal/api/handlers"
	"github.com/langchou/evcompare/internal/api/prices"
	"github.com/langchou/evcompare/internal/catalog"
	"github.com/langchou/evcompare/internal/config"
	"github.com/langchou/evcompare/internal/repository"
	"github.com/langchou/evcompare/internal/service"
	"github.com/langchou/evcompare/pkg/ws"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger, err := config.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting evcompare", zap.String("port", cfg.ServerPort))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 车型目录
	static := catalog.Default()
	if cfg.CatalogFile != "" {
		static, err = catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			logger.Fatal("Failed to load catalog", zap.Error(err), zap.String("file", cfg.CatalogFile))
		}
	}
	var presets service.Catalog = static
	var snapshots service.SnapshotStore

	// 数据库可选
	if cfg.DatabaseURL != "" {
		db, err := repository.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect database", zap.Error(err))
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Info("Database migrated successfully")

		presetRepo := repository.NewPresetRepository(db.Pool)
		if err := presetRepo.Seed(ctx, static.All()); err != nil {
			logger.Fatal("Failed to seed presets", zap.Error(err))
		}
		presets = presetRepo
		snapshots = repository.NewPriceRepository(db.Pool)
	} else {
		logger.Info("DATABASE_URL not set, using in-memory catalog without price history")
	}

	// 参考价格
	priceClient := prices.NewClient(prices.Options{
		FuelURL:        cfg.PriceSourceURL,
		ElectricityURL: cfg.ElectricitySourceURL,
		RequestsPerSec: cfg.PriceFetchRPS,
	}, logger)
	priceFeed := service.NewPriceFeed(service.PriceFeedConfig{
		Defaults:        cfg.DefaultPrices,
		RefreshInterval: cfg.PriceRefreshInterval,
		StaleAfter:      cfg.PriceStaleAfter,
	}, logger, priceClient, snapshots)

	// 创建 WebSocket Hub
	wsHub := ws.NewHub(logger)
	go wsHub.Run()

	// 订阅参考价格变化并广播到 WebSocket
	updates := priceFeed.Subscribe()
	go func() {
		for {
			select {
			case quote := <-updates:
				wsHub.BroadcastPricesUpdate(quote)
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := priceFeed.Start(ctx); err != nil {
		logger.Error("Failed to start price feed", zap.Error(err))
	}

	comparison := service.NewComparisonService(cfg.EngineOptions(), logger, presets, priceFeed)

	// 创建 HTTP 处理器
	handler := handlers.NewHandler(logger, comparison, priceFeed, wsHub)

	// 设置 Gin 模式
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", server.Addr))

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	priceFeed.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	wsHub.Stop()

	logger.Info("Server exited")
}

// corsMiddleware CORS 中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
