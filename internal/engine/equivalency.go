package engine

import "fmt"

// EPA 温室气体当量换算系数 (kg CO2e / 单位)
// https://www.epa.gov/energy/greenhouse-gas-equivalencies-calculator
const (
	EPATreeSeedlingFactor     = 60.0    // 一棵树苗 10 年吸收量
	EPAHomeDayFactor          = 18.3    // 一户家庭一天用电
	EPASmartphoneChargeFactor = 0.00822 // 一次手机充电
)

// MinEquivalencyKg 低于该值不计算当量
const MinEquivalencyKg = 1.0

// Equivalency 排放当量
type Equivalency struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// CO2Savings 排放更低一方每年少排放的量
type CO2Savings struct {
	Side          Side          `json:"side"`
	AnnualKg      float64       `json:"annual_kg"`
	OwnershipKg   float64       `json:"ownership_kg"`
	Equivalencies []Equivalency `json:"equivalencies,omitempty"`
	Summary       string        `json:"summary,omitempty"`
}

// Equivalencies 把 kg CO2 换算为直观的当量
func Equivalencies(kg float64) []Equivalency {
	if kg < MinEquivalencyKg {
		return nil
	}
	return []Equivalency{
		{Kind: "tree_seedlings", Value: kg / EPATreeSeedlingFactor, Label: "tree seedlings grown for 10 years"},
		{Kind: "home_days", Value: kg / EPAHomeDayFactor, Label: "days of household electricity"},
		{Kind: "smartphone_charges", Value: kg / EPASmartphoneChargeFactor, Label: "smartphone charges"},
	}
}

// DescribeEquivalencies 生成一句说明
func DescribeEquivalencies(eqs []Equivalency) string {
	if len(eqs) < 2 {
		return ""
	}
	return fmt.Sprintf("Equivalent to ~%.0f %s or ~%.0f %s", eqs[0].Value, eqs[0].Label, eqs[1].Value, eqs[1].Label)
}

func savingsBetween(a, b VehicleResult) *CO2Savings {
	diff := a.AnnualCO2Kg - b.AnnualCO2Kg
	ownershipDiff := a.OwnershipCO2Kg - b.OwnershipCO2Kg
	side := SideB
	if diff < 0 {
		side, diff, ownershipDiff = SideA, -diff, -ownershipDiff
	}
	if diff == 0 {
		return nil
	}
	eqs := Equivalencies(diff)
	return &CO2Savings{
		Side:          side,
		AnnualKg:      diff,
		OwnershipKg:   ownershipDiff,
		Equivalencies: eqs,
		Summary:       DescribeEquivalencies(eqs),
	}
}
