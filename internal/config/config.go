package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/langchou/evcompare/internal/engine"
	"github.com/langchou/evcompare/internal/models"
)

type Config struct {
	// Server
	ServerPort string
	Debug      bool

	// Database，为空时不持久化，使用内置车型目录
	DatabaseURL string

	// 参考价格
	PriceSourceURL       string
	ElectricitySourceURL string
	PriceRefreshInterval time.Duration
	PriceStaleAfter      time.Duration
	PriceFetchRPS        float64
	DefaultPrices        models.PriceTable

	// 计算
	DefaultHorizonYears int
	RouteMixMode        engine.MixMode

	// 车型目录 YAML，为空时使用内置目录
	CatalogFile string
}

func Load() (*Config, error) {
	// 尝试加载 .env 文件（可选）
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:           getEnv("PORT", "4000"),
		Debug:                getEnvBool("DEBUG", false),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		PriceSourceURL:       getEnv("PRICE_SOURCE_URL", ""),
		ElectricitySourceURL: getEnv("ELECTRICITY_SOURCE_URL", ""),
		PriceRefreshInterval: getEnvDuration("PRICE_REFRESH_INTERVAL", 6*time.Hour),
		PriceStaleAfter:      getEnvDuration("PRICE_STALE_AFTER", 48*time.Hour),
		PriceFetchRPS:        getEnvFloat("PRICE_FETCH_RPS", 1),
		DefaultPrices: models.PriceTable{
			PetrolPerLiter: getEnvFloat("DEFAULT_PETROL_PRICE", 1.75),
			DieselPerLiter: getEnvFloat("DEFAULT_DIESEL_PRICE", 1.80),
			ElectricPerKWh: getEnvFloat("DEFAULT_ELECTRIC_PRICE", 0.22),
		},
		DefaultHorizonYears: getEnvInt("DEFAULT_HORIZON_YEARS", engine.DefaultHorizonYears),
		CatalogFile:         getEnv("CATALOG_FILE", ""),
	}

	mode, err := engine.ParseMixMode(getEnv("ROUTE_MIX_MODE", string(engine.MixStrict)))
	if err != nil {
		return nil, fmt.Errorf("parse ROUTE_MIX_MODE: %w", err)
	}
	cfg.RouteMixMode = mode

	if cfg.DefaultHorizonYears < 1 || cfg.DefaultHorizonYears > engine.MaxHorizonYears {
		return nil, fmt.Errorf("DEFAULT_HORIZON_YEARS must be between 1 and %d", engine.MaxHorizonYears)
	}
	p := cfg.DefaultPrices
	if p.PetrolPerLiter < 0 || p.DieselPerLiter < 0 || p.ElectricPerKWh < 0 {
		return nil, fmt.Errorf("default prices must not be negative")
	}

	return cfg, nil
}

// EngineOptions 计算引擎配置
func (c *Config) EngineOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.MixMode = c.RouteMixMode
	opts.DefaultHorizon = c.DefaultHorizonYears
	return opts
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
