package engine

import (
	"iter"

	"github.com/langchou/evcompare/internal/models"
)

// 生产阶段 CO2 (kg)，在第 0 年一次性计入
const (
	ProductionCO2CombustionKg = 7000.0
	ProductionCO2ElectricKg   = 12000.0 // 含电池
)

const (
	// DefaultHorizonYears 无回本点时的默认投影年数
	DefaultHorizonYears = 10
	// MaxHorizonYears 投影年数上限
	MaxHorizonYears = 100
	// breakEvenMarginYears 回本后额外展示的年数
	breakEvenMarginYears = 2
)

// ProductionCO2 生产阶段排放；混动按燃油车计
func ProductionCO2(p models.Powertrain) float64 {
	if p.Combustion() {
		return ProductionCO2CombustionKg
	}
	return ProductionCO2ElectricKg
}

// Point 序列中的一个年度点
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Series 线性累计序列: value(i) = Start + i*Step, i ∈ [0, Horizon]
type Series struct {
	Start   float64
	Step    float64
	Horizon int
}

// CostSeries 累计拥有成本
func CostSeries(purchasePrice, annualCost float64, horizon int) Series {
	return Series{Start: purchasePrice, Step: annualCost, Horizon: horizon}
}

// CO2Series 累计排放，offset 为生产阶段排放
func CO2Series(offset, annualCO2 float64, horizon int) Series {
	return Series{Start: offset, Step: annualCO2, Horizon: horizon}
}

// At 第 year 年的累计值
func (s Series) At(year int) float64 {
	return s.Start + float64(year)*s.Step
}

// All 惰性遍历 (year, value)，可重复遍历
func (s Series) All() iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		for i := 0; i <= s.Horizon; i++ {
			if !yield(i, s.At(i)) {
				return
			}
		}
	}
}

// Points 物化为切片
func (s Series) Points() []Point {
	if s.Horizon < 0 {
		return nil
	}
	points := make([]Point, 0, s.Horizon+1)
	for year, v := range s.All() {
		points = append(points, Point{Year: year, Value: v})
	}
	return points
}

// Horizon 选择投影年数: 显式指定 > 回本年数+2 > 默认值
func Horizon(be BreakEven, override, fallback int) int {
	if override > 0 {
		return min(override, MaxHorizonYears)
	}
	if be.Found() {
		if be.Years >= MaxHorizonYears-breakEvenMarginYears {
			return MaxHorizonYears
		}
		return be.WholeYears() + breakEvenMarginYears
	}
	if fallback <= 0 {
		fallback = DefaultHorizonYears
	}
	return min(fallback, MaxHorizonYears)
}
