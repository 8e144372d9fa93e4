package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/langchou/evcompare/internal/models"
)

// MixMode 路况占比之和不为 100 时的处理方式
type MixMode string

const (
	// MixStrict 不修正，回退为三种路况的算术平均并给出警告
	MixStrict MixMode = "strict"
	// MixAutoNormalize 按比例缩放到 100 并给出警告；之和为 0 时仍回退为平均值
	MixAutoNormalize MixMode = "normalize"
)

// mixTolerance 百分比之和的浮点容差
const mixTolerance = 1e-6

// ParseMixMode 解析路况模式，空字符串为 strict
func ParseMixMode(s string) (MixMode, error) {
	switch MixMode(s) {
	case "", MixStrict:
		return MixStrict, nil
	case MixAutoNormalize:
		return MixAutoNormalize, nil
	}
	return "", fmt.Errorf("unknown route mix mode %q", s)
}

// Resolution 消耗折算结果
type Resolution struct {
	PerHundredKm float64          `json:"per_100km"`
	Warnings     []models.Warning `json:"warnings,omitempty"`
}

// ResolveConsumption 把综合或分路况消耗折算为单一的 单位/100km 数值
func ResolveConsumption(c models.Consumption, mix models.RouteMix, mode MixMode, field string) (Resolution, error) {
	if err := checkShape(c, field); err != nil {
		return Resolution{}, err
	}

	if c.Combined != nil {
		v, err := perHundred(*c.Combined, c.Measure, field+".combined")
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{PerHundredKm: v}, nil
	}

	seg := c.Segments
	urban, err := perHundred(seg.Urban, c.Measure, field+".segments.urban")
	if err != nil {
		return Resolution{}, err
	}
	extra, err := perHundred(seg.ExtraUrban, c.Measure, field+".segments.extra_urban")
	if err != nil {
		return Resolution{}, err
	}
	highway, err := perHundred(seg.Highway, c.Measure, field+".segments.highway")
	if err != nil {
		return Resolution{}, err
	}
	if err := validateRouteMix(mix); err != nil {
		return Resolution{}, err
	}

	v, warn := weightByRoute(urban, extra, highway, mix, mode)
	res := Resolution{PerHundredKm: v}
	if warn != nil {
		warn.Source = field
		res.Warnings = append(res.Warnings, *warn)
	}
	return res, nil
}

// weightByRoute 按路况占比加权
func weightByRoute(urban, extra, highway float64, mix models.RouteMix, mode MixMode) (float64, *models.Warning) {
	sum := mix.Sum()
	mean := (urban + extra + highway) / 3

	switch {
	case sum == 0:
		return mean, &models.Warning{
			Code:    models.WarningDegenerateRouteMix,
			Message: "route mix is unset (all percentages are 0), using the unweighted mean of the segment figures",
		}
	case math.Abs(sum-100) <= mixTolerance:
		return urban*mix.UrbanPct/100 + extra*mix.ExtraUrbanPct/100 + highway*mix.HighwayPct/100, nil
	case mode == MixAutoNormalize:
		return (urban*mix.UrbanPct + extra*mix.ExtraUrbanPct + highway*mix.HighwayPct) / sum, &models.Warning{
			Code:    models.WarningDegenerateRouteMix,
			Message: fmt.Sprintf("route mix sums to %g%%, percentages were rescaled to 100%%", sum),
		}
	default:
		return mean, &models.Warning{
			Code:    models.WarningDegenerateRouteMix,
			Message: fmt.Sprintf("route mix sums to %g%% instead of 100%%, using the unweighted mean of the segment figures", sum),
		}
	}
}

// perHundred 把单个消耗数值转换为 单位/100km
func perHundred(v float64, m models.Measure, field string) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, invalid(field, v, "must be a non-negative number")
	}

	switch m {
	case "", models.MeasureRate:
		return v, nil
	case models.MeasureEfficiency:
		if v == 0 {
			return 0, invalid(field, v, "distance per unit must be greater than zero")
		}
		rate := 100 / v
		if math.IsInf(rate, 0) {
			return 0, invalid(field, v, "distance per unit is too small")
		}
		return rate, nil
	}
	return 0, invalid(field+".measure", 0, fmt.Sprintf("unknown measure %q", m))
}

func checkShape(c models.Consumption, field string) error {
	switch {
	case c.Combined != nil && c.Segments != nil:
		return invalid(field, 0, "give either a combined figure or route segments, not both")
	case c.Combined == nil && c.Segments == nil:
		return invalid(field, 0, "consumption is required")
	}
	return nil
}

func validateRouteMix(mix models.RouteMix) error {
	return errors.Join(routeMixErrors(mix)...)
}

func routeMixErrors(mix models.RouteMix) []error {
	var errs []error
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"usage.route_mix.urban_pct", mix.UrbanPct},
		{"usage.route_mix.extraurban_pct", mix.ExtraUrbanPct},
		{"usage.route_mix.highway_pct", mix.HighwayPct},
	} {
		if math.IsNaN(p.v) || p.v < 0 || p.v > 100 {
			errs = append(errs, invalid(p.name, p.v, "percentage must be between 0 and 100"))
		}
	}
	return errs
}

// DeriveRouteMix 由市区与郊区占比推导高速占比
func DeriveRouteMix(urbanPct, extraUrbanPct float64) (models.RouteMix, error) {
	mix := models.RouteMix{UrbanPct: urbanPct, ExtraUrbanPct: extraUrbanPct, HighwayPct: 100 - urbanPct - extraUrbanPct}
	if mix.HighwayPct < 0 {
		return models.RouteMix{}, invalid("usage.route_mix.extraurban_pct", extraUrbanPct,
			fmt.Sprintf("urban and extra-urban shares add up to %g%%, more than 100%%", urbanPct+extraUrbanPct))
	}
	if err := validateRouteMix(mix); err != nil {
		return models.RouteMix{}, err
	}
	return mix, nil
}
