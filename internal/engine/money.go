package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundMoney 金额四舍五入到分
func RoundMoney(v float64) float64 {
	return roundPlaces(v, 2)
}

// roundPlaces 非有限值原样返回，decimal 无法表示
func roundPlaces(v float64, places int32) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Rounded 返回用于展示的副本: 金额保留两位小数，排放与消耗保留一位/三位
func (r *Result) Rounded() *Result {
	out := *r
	out.A = r.A.rounded()
	out.B = r.B.rounded()
	if r.BreakEven.Found() {
		out.BreakEven.Years = roundPlaces(r.BreakEven.Years, 2)
	}
	out.Verdict.Savings = RoundMoney(r.Verdict.Savings)
	if r.CO2Savings != nil {
		s := *r.CO2Savings
		s.AnnualKg = roundPlaces(s.AnnualKg, 1)
		s.OwnershipKg = roundPlaces(s.OwnershipKg, 1)
		s.Equivalencies = make([]Equivalency, len(r.CO2Savings.Equivalencies))
		for i, eq := range r.CO2Savings.Equivalencies {
			eq.Value = roundPlaces(eq.Value, 1)
			s.Equivalencies[i] = eq
		}
		out.CO2Savings = &s
	}
	return &out
}

func (v VehicleResult) rounded() VehicleResult {
	v.WeightedConsumption = roundPlaces(v.WeightedConsumption, 3)
	v.UnitPrice = roundPlaces(v.UnitPrice, 3)
	v.AnnualCost = RoundMoney(v.AnnualCost)
	v.AnnualCO2Kg = roundPlaces(v.AnnualCO2Kg, 1)
	v.OwnershipCost = RoundMoney(v.OwnershipCost)
	v.OwnershipCO2Kg = roundPlaces(v.OwnershipCO2Kg, 1)
	v.CumulativeCost = roundPoints(v.CumulativeCost, 2)
	v.CumulativeCO2 = roundPoints(v.CumulativeCO2, 1)
	return v
}

func roundPoints(points []Point, places int32) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{Year: p.Year, Value: roundPlaces(p.Value, places)}
	}
	return out
}
