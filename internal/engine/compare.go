package engine

import (
	"fmt"

	"github.com/langchou/evcompare/internal/models"
)

// DefaultOwnershipYears 未指定持有年限时使用
const DefaultOwnershipYears = 5

// Options 进程级配置
type Options struct {
	MixMode        MixMode
	DefaultHorizon int
	Factors        models.EmissionFactors
}

// DefaultOptions 默认配置
func DefaultOptions() Options {
	return Options{
		MixMode:        MixStrict,
		DefaultHorizon: DefaultHorizonYears,
		Factors:        models.DefaultEmissionFactors(),
	}
}

// Input 一次对比的完整输入快照
type Input struct {
	A      models.VehicleProfile `json:"vehicle_a" yaml:"vehicle_a"`
	B      models.VehicleProfile `json:"vehicle_b" yaml:"vehicle_b"`
	Usage  models.UsageProfile   `json:"usage" yaml:"usage"`
	Prices models.PriceTable     `json:"prices" yaml:"prices"`

	HorizonYears         int     `json:"horizon_years,omitempty" yaml:"horizon_years,omitempty"` // 0 表示自动
	IncludeProductionCO2 bool    `json:"include_production_co2,omitempty" yaml:"include_production_co2,omitempty"`
	MixMode              MixMode `json:"mix_mode,omitempty" yaml:"mix_mode,omitempty"` // 覆盖 Options.MixMode
}

// VehicleResult 单车计算结果
type VehicleResult struct {
	Label               string            `json:"label"`
	Powertrain          models.Powertrain `json:"powertrain"`
	PurchasePrice       float64           `json:"purchase_price"`
	WeightedConsumption float64           `json:"weighted_consumption"`
	ConsumptionUnit     string            `json:"consumption_unit"`
	UnitPrice           float64           `json:"unit_price"`
	AnnualCost          float64           `json:"annual_cost"`
	AnnualCO2Kg         float64           `json:"annual_co2_kg"`
	ProductionCO2Kg     float64           `json:"production_co2_kg"`
	OwnershipCost       float64           `json:"ownership_cost"`
	OwnershipCO2Kg      float64           `json:"ownership_co2_kg"`
	CumulativeCost      []Point           `json:"cumulative_cost_series"`
	CumulativeCO2       []Point           `json:"cumulative_co2_series"`

	cost Series
	co2  Series
}

// CostSeries 累计成本序列
func (v VehicleResult) CostSeries() Series { return v.cost }

// CO2Series 累计排放序列
func (v VehicleResult) CO2Series() Series { return v.co2 }

// Verdict 持有期结束时哪辆车更便宜
type Verdict struct {
	Cheaper        Side    `json:"cheaper,omitempty"` // 为空表示持平
	Label          string  `json:"label,omitempty"`
	Savings        float64 `json:"savings"`
	OwnershipYears int     `json:"ownership_years"`
}

// Result 对比结果，每次输入变化都重新计算
type Result struct {
	A              VehicleResult    `json:"vehicle_a"`
	B              VehicleResult    `json:"vehicle_b"`
	BreakEven      BreakEven        `json:"breakeven"`
	HorizonYears   int              `json:"horizon_years"`
	OwnershipYears int              `json:"ownership_years"`
	Verdict        Verdict          `json:"verdict"`
	CO2Savings     *CO2Savings      `json:"co2_savings,omitempty"`
	Warnings       []models.Warning `json:"warnings,omitempty"`
}

// Vehicle 按位置取结果
func (r *Result) Vehicle(s Side) VehicleResult {
	if s == SideB {
		return r.B
	}
	return r.A
}

// Compare 执行完整的对比流程: 校验 → 消耗折算 → 年度费用/排放 → 回本 → 时间序列
func Compare(in Input, opts Options) (*Result, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	mode := opts.MixMode
	if in.MixMode != "" {
		mode = in.MixMode
	}
	factors := opts.Factors
	if factors == nil {
		factors = models.DefaultEmissionFactors()
	}

	result := &Result{}
	var err error
	if result.A, err = evaluate(in.A, "vehicle_a", in, mode, factors, &result.Warnings); err != nil {
		return nil, err
	}
	if result.B, err = evaluate(in.B, "vehicle_b", in, mode, factors, &result.Warnings); err != nil {
		return nil, err
	}
	if err := evaluatedErrors(in, result.A, result.B); err != nil {
		return nil, err
	}
	if result.A.Label == result.B.Label {
		result.A.Label += " (A)"
		result.B.Label += " (B)"
	}

	result.BreakEven = SolveBreakEven(
		Ownership{PurchasePrice: result.A.PurchasePrice, AnnualCost: result.A.AnnualCost},
		Ownership{PurchasePrice: result.B.PurchasePrice, AnnualCost: result.B.AnnualCost},
	)
	if err := breakEvenError(in, result.BreakEven); err != nil {
		return nil, err
	}
	result.HorizonYears = Horizon(result.BreakEven, in.HorizonYears, opts.DefaultHorizon)
	result.OwnershipYears = in.Usage.OwnershipYears
	if result.OwnershipYears == 0 {
		result.OwnershipYears = DefaultOwnershipYears
	}

	result.A.project(result.HorizonYears, result.OwnershipYears)
	result.B.project(result.HorizonYears, result.OwnershipYears)

	result.Verdict = verdictOf(result.A, result.B, result.OwnershipYears)
	result.CO2Savings = savingsBetween(result.A, result.B)
	if err := projectedErrors(in, result); err != nil {
		return nil, err
	}
	return result, nil
}

func evaluate(v models.VehicleProfile, field string, in Input, mode MixMode, factors models.EmissionFactors, warnings *[]models.Warning) (VehicleResult, error) {
	res, err := ResolveConsumption(v.Consumption, in.Usage.RouteMix, mode, field+".consumption")
	if err != nil {
		return VehicleResult{}, err
	}
	*warnings = append(*warnings, res.Warnings...)

	price, err := UnitPrice(v.Powertrain, in.Prices)
	if err != nil {
		return VehicleResult{}, err
	}
	factor, ok := factors[v.Powertrain]
	if !ok {
		return VehicleResult{}, fmt.Errorf("no emission factor configured for %s", v.Powertrain)
	}

	km := in.Usage.AnnualDistanceKm
	out := VehicleResult{
		Label:               v.DisplayLabel(),
		Powertrain:          v.Powertrain,
		PurchasePrice:       v.PurchasePrice,
		WeightedConsumption: res.PerHundredKm,
		ConsumptionUnit:     v.Powertrain.EnergyUnit() + "/100km",
		UnitPrice:           price,
		AnnualCost:          AnnualCost(res.PerHundredKm, km, price),
		AnnualCO2Kg:         AnnualCO2(res.PerHundredKm, km, factor),
	}
	if v.TailpipeGPerKm != nil {
		out.AnnualCO2Kg = TailpipeCO2(*v.TailpipeGPerKm, km)
	}
	if in.IncludeProductionCO2 {
		out.ProductionCO2Kg = ProductionCO2(v.Powertrain)
	}
	return out, nil
}

func (v *VehicleResult) project(horizon, ownershipYears int) {
	v.cost = CostSeries(v.PurchasePrice, v.AnnualCost, horizon)
	v.co2 = CO2Series(v.ProductionCO2Kg, v.AnnualCO2Kg, horizon)
	v.CumulativeCost = v.cost.Points()
	v.CumulativeCO2 = v.co2.Points()
	v.OwnershipCost = v.cost.At(ownershipYears)
	v.OwnershipCO2Kg = v.co2.At(ownershipYears)
}

func verdictOf(a, b VehicleResult, years int) Verdict {
	v := Verdict{OwnershipYears: years}
	diff := a.OwnershipCost - b.OwnershipCost
	switch {
	case diff > 0:
		v.Cheaper, v.Label, v.Savings = SideB, b.Label, diff
	case diff < 0:
		v.Cheaper, v.Label, v.Savings = SideA, a.Label, -diff
	}
	return v
}
