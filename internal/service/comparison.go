package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/langchou/evcompare/internal/engine"
	"github.com/langchou/evcompare/internal/models"
	"github.com/langchou/evcompare/internal/monitoring"
	"github.com/langchou/evcompare/internal/state"
	"github.com/langchou/evcompare/internal/triplog"
)

// Catalog 车型目录
type Catalog interface {
	List(ctx context.Context, powertrain models.Powertrain) ([]models.Preset, error)
	Get(ctx context.Context, id string) (*models.Preset, error)
}

// PriceSource 当前参考价格
type PriceSource interface {
	Current() PriceQuote
}

// StaticPrices 固定价格 (CLI 与测试使用)
type StaticPrices models.PriceTable

// Current 实现 PriceSource
func (p StaticPrices) Current() PriceQuote {
	return PriceQuote{
		Prices: models.PriceTable(p),
		State:  state.StateFallback,
		Source: SourceDefault,
	}
}

// CompareRequest 对比请求。Prices 为空时使用参考价格；
// TripLog 不为空时以其总里程与路况占比取代 Usage 中的对应字段
type CompareRequest struct {
	A                    models.VehicleProfile `json:"vehicle_a" yaml:"vehicle_a"`
	B                    models.VehicleProfile `json:"vehicle_b" yaml:"vehicle_b"`
	Usage                models.UsageProfile   `json:"usage" yaml:"usage"`
	Prices               *models.PriceTable    `json:"prices,omitempty" yaml:"prices,omitempty"`
	HorizonYears         int                   `json:"horizon_years,omitempty" yaml:"horizon_years,omitempty"`
	IncludeProductionCO2 bool                  `json:"include_production_co2,omitempty" yaml:"include_production_co2,omitempty"`
	MixMode              engine.MixMode        `json:"mix_mode,omitempty" yaml:"mix_mode,omitempty"`
	TripLog              *triplog.Summary      `json:"triplog,omitempty" yaml:"triplog,omitempty"`
}

// CompareResponse 对比结果 (金额已取整) 及所用价格
type CompareResponse struct {
	*engine.Result
	PricesUsed  models.PriceTable `json:"prices_used"`
	PriceSource string            `json:"price_source"`
	PriceState  string            `json:"price_state,omitempty"`
}

// ComparisonService 对比与行程日志用例
type ComparisonService struct {
	opts    engine.Options
	logger  *zap.Logger
	catalog Catalog
	prices  PriceSource
}

// NewComparisonService 创建对比服务
func NewComparisonService(opts engine.Options, logger *zap.Logger, catalog Catalog, prices PriceSource) *ComparisonService {
	return &ComparisonService{
		opts:    opts,
		logger:  logger,
		catalog: catalog,
		prices:  prices,
	}
}

// Options 引擎配置
func (s *ComparisonService) Options() engine.Options {
	return s.opts
}

// Compare 解析预设车型与价格后执行对比。channel 仅用于指标 (http/ws/cli)
func (s *ComparisonService) Compare(ctx context.Context, channel string, req CompareRequest) (*CompareResponse, error) {
	start := time.Now()
	resp, err := s.compare(ctx, req)

	result := "success"
	switch {
	case err == nil:
	case engine.IsInvalidInput(err) || errors.Is(err, models.ErrPresetNotFound):
		result = "invalid"
	default:
		result = "error"
	}
	monitoring.RecordComparison(channel, result, time.Since(start))

	if err != nil {
		s.logger.Debug("Comparison rejected", zap.String("channel", channel), zap.Error(err))
		return nil, err
	}

	monitoring.RecordBreakEven(string(resp.BreakEven.Kind))
	for _, w := range resp.Warnings {
		if w.Code == models.WarningDegenerateRouteMix {
			monitoring.RouteMixWarnings.Inc()
			break
		}
	}
	s.logger.Debug("Comparison computed",
		zap.String("channel", channel),
		zap.String("breakeven", resp.BreakEven.String()),
		zap.Int("horizon_years", resp.HorizonYears))
	return resp, nil
}

func (s *ComparisonService) compare(ctx context.Context, req CompareRequest) (*CompareResponse, error) {
	a, err := s.resolvePreset(ctx, req.A, "vehicle_a")
	if err != nil {
		return nil, err
	}
	b, err := s.resolvePreset(ctx, req.B, "vehicle_b")
	if err != nil {
		return nil, err
	}

	resp := &CompareResponse{}
	var prices models.PriceTable
	if req.Prices != nil {
		prices = *req.Prices
		resp.PriceSource = "request"
	} else {
		quote := s.prices.Current()
		prices = quote.Prices
		resp.PriceSource = quote.Source
		resp.PriceState = quote.State
	}

	usage := req.Usage
	if req.TripLog != nil {
		usage.AnnualDistanceKm = req.TripLog.TotalDistanceKm
		usage.RouteMix = req.TripLog.RouteMix
	}

	result, err := engine.Compare(engine.Input{
		A:                    a,
		B:                    b,
		Usage:                usage,
		Prices:               prices,
		HorizonYears:         req.HorizonYears,
		IncludeProductionCO2: req.IncludeProductionCO2,
		MixMode:              req.MixMode,
	}, s.opts)
	if err != nil {
		return nil, err
	}

	resp.Result = result.Rounded()
	if req.TripLog != nil && len(req.TripLog.Warnings) > 0 {
		warnings := make([]models.Warning, 0, len(resp.Warnings)+len(req.TripLog.Warnings))
		resp.Warnings = append(append(warnings, resp.Warnings...), req.TripLog.Warnings...)
	}
	resp.PricesUsed = prices
	return resp, nil
}

func (s *ComparisonService) resolvePreset(ctx context.Context, v models.VehicleProfile, field string) (models.VehicleProfile, error) {
	if v.PresetID == "" {
		return v, nil
	}
	if s.catalog == nil {
		return v, fmt.Errorf("%s.preset_id: %w", field, models.ErrPresetNotFound)
	}
	p, err := s.catalog.Get(ctx, v.PresetID)
	if err != nil {
		return v, fmt.Errorf("%s.preset_id: %w", field, err)
	}
	return p.Apply(v), nil
}

// ListPresets 列出车型
func (s *ComparisonService) ListPresets(ctx context.Context, powertrain models.Powertrain) ([]models.Preset, error) {
	if s.catalog == nil {
		return []models.Preset{}, nil
	}
	presets, err := s.catalog.List(ctx, powertrain)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	return presets, nil
}

// GetPreset 获取车型
func (s *ComparisonService) GetPreset(ctx context.Context, id string) (*models.Preset, error) {
	if s.catalog == nil {
		return nil, models.ErrPresetNotFound
	}
	return s.catalog.Get(ctx, id)
}

// AggregateTripLogs 汇总上传的行程日志
func (s *ComparisonService) AggregateTripLogs(files []triplog.File) triplog.Summary {
	summary := triplog.AggregateFiles(files)
	monitoring.RecordTripLogs(summary.Documents, summary.SkippedFiles, summary.Segments, summary.SkippedSegments)
	s.logger.Info("Aggregated trip logs",
		zap.Int("files", len(files)),
		zap.Int("skipped_files", summary.SkippedFiles),
		zap.Int("segments", summary.Segments),
		zap.Float64("total_km", summary.TotalDistanceKm))
	return summary
}
