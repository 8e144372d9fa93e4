package engine

import (
	"fmt"

	"github.com/langchou/evcompare/internal/models"
)

// HybridPetrolPriceFactor 混动车按汽油价格的 0.8 倍计价（部分电驱抵消）
const HybridPetrolPriceFactor = 0.8

// UnitPrice 按动力类型选择能源单价
func UnitPrice(p models.Powertrain, prices models.PriceTable) (float64, error) {
	switch p {
	case models.PowertrainPetrol:
		return prices.PetrolPerLiter, nil
	case models.PowertrainDiesel:
		return prices.DieselPerLiter, nil
	case models.PowertrainHybrid:
		return prices.PetrolPerLiter * HybridPetrolPriceFactor, nil
	case models.PowertrainElectric:
		return prices.ElectricPerKWh, nil
	}
	return 0, fmt.Errorf("unsupported powertrain %q", p)
}

// AnnualCost 年度能源费用
func AnnualCost(perHundredKm, annualDistanceKm, unitPrice float64) float64 {
	return annualDistanceKm / 100 * perHundredKm * unitPrice
}

// AnnualCO2 年度 CO2 排放 (kg)
func AnnualCO2(perHundredKm, annualDistanceKm, factor float64) float64 {
	return annualDistanceKm / 100 * perHundredKm * factor
}

// TailpipeCO2 按 g/km 计算的年度排放 (kg)
func TailpipeCO2(gramsPerKm, annualDistanceKm float64) float64 {
	return gramsPerKm * annualDistanceKm / 1000
}
