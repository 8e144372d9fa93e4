package models

import (
	"errors"
	"time"
)

// ErrNoPriceData 尚无价格快照
var ErrNoPriceData = errors.New("no price data")

// PriceTable 参考能源价格
type PriceTable struct {
	PetrolPerLiter float64 `json:"petrol_price_per_liter" yaml:"petrol_price_per_liter"`
	DieselPerLiter float64 `json:"diesel_price_per_liter" yaml:"diesel_price_per_liter"`
	ElectricPerKWh float64 `json:"electric_price_per_kwh" yaml:"electric_price_per_kwh"`
}

// PriceSnapshot 一次参考价格抓取记录
type PriceSnapshot struct {
	ID        string     `json:"id" db:"id"`
	Source    string     `json:"source" db:"source"`
	Prices    PriceTable `json:"prices"`
	FetchedAt time.Time  `json:"fetched_at" db:"fetched_at"`
}

// EmissionFactors 排放因子 (kg CO2 / L 或 kWh)
type EmissionFactors map[Powertrain]float64

// DefaultEmissionFactors 固定排放因子表
func DefaultEmissionFactors() EmissionFactors {
	return EmissionFactors{
		PowertrainPetrol:   2.3,
		PowertrainDiesel:   2.6,
		PowertrainHybrid:   2.0, // 按升当量计算
		PowertrainElectric: 0.5,
	}
}
