package models

import "strings"

// Powertrain 动力类型
type Powertrain string

const (
	PowertrainPetrol   Powertrain = "petrol"
	PowertrainDiesel   Powertrain = "diesel"
	PowertrainHybrid   Powertrain = "hybrid"
	PowertrainElectric Powertrain = "electric"
)

// Powertrains 全部支持的动力类型
var Powertrains = []Powertrain{PowertrainPetrol, PowertrainDiesel, PowertrainHybrid, PowertrainElectric}

// ParsePowertrain 解析动力类型（忽略大小写）
func ParsePowertrain(s string) (Powertrain, bool) {
	p := Powertrain(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

// UnmarshalText 忽略大小写；未知值保留，由校验报告
func (p *Powertrain) UnmarshalText(text []byte) error {
	*p = Powertrain(strings.ToLower(strings.TrimSpace(string(text))))
	return nil
}

// Valid 是否为已知动力类型
func (p Powertrain) Valid() bool {
	switch p {
	case PowertrainPetrol, PowertrainDiesel, PowertrainHybrid, PowertrainElectric:
		return true
	}
	return false
}

// Combustion 是否燃油（含混动）
func (p Powertrain) Combustion() bool {
	return p.Valid() && p != PowertrainElectric
}

// EnergyUnit 能源计量单位: 燃油为升，电动为 kWh
func (p Powertrain) EnergyUnit() string {
	if p == PowertrainElectric {
		return "kWh"
	}
	return "L"
}

// DisplayName 默认显示名称
func (p Powertrain) DisplayName() string {
	switch p {
	case PowertrainPetrol:
		return "Petrol car"
	case PowertrainDiesel:
		return "Diesel car"
	case PowertrainHybrid:
		return "Hybrid car"
	case PowertrainElectric:
		return "Electric car"
	}
	return "Car"
}

// Measure 消耗的表示方式
type Measure string

const (
	MeasureRate       Measure = "rate"       // 单位/100km (L/100km, kWh/100km)
	MeasureEfficiency Measure = "efficiency" // km/单位 (km/L, km/kWh)
)

// Segments 分路况消耗
type Segments struct {
	Urban      float64 `json:"urban" yaml:"urban"`
	ExtraUrban float64 `json:"extra_urban" yaml:"extra_urban"`
	Highway    float64 `json:"highway" yaml:"highway"`
}

// Consumption 车辆消耗: Combined 与 Segments 二选一
type Consumption struct {
	Measure  Measure   `json:"measure,omitempty" yaml:"measure,omitempty"`
	Combined *float64  `json:"combined,omitempty" yaml:"combined,omitempty"`
	Segments *Segments `json:"segments,omitempty" yaml:"segments,omitempty"`
}

// CombinedRate 单一综合消耗 (单位/100km)
func CombinedRate(v float64) Consumption {
	return Consumption{Measure: MeasureRate, Combined: &v}
}

// SegmentedRate 分路况消耗 (单位/100km)
func SegmentedRate(urban, extraUrban, highway float64) Consumption {
	return Consumption{
		Measure:  MeasureRate,
		Segments: &Segments{Urban: urban, ExtraUrban: extraUrban, Highway: highway},
	}
}

// WithMeasure 返回改变表示方式后的副本
func (c Consumption) WithMeasure(m Measure) Consumption {
	c.Measure = m
	return c
}

// IsZero 未填写任何消耗
func (c Consumption) IsZero() bool {
	return c.Combined == nil && c.Segments == nil
}

// VehicleProfile 参与对比的车辆
type VehicleProfile struct {
	Powertrain    Powertrain  `json:"powertrain" yaml:"powertrain"`
	Label         string      `json:"label,omitempty" yaml:"label,omitempty"`
	PurchasePrice float64     `json:"purchase_price" yaml:"purchase_price"`
	Consumption   Consumption `json:"consumption" yaml:"consumption"`
	// 直接填写的尾气排放 (g/km)，设置后替代排放因子计算
	TailpipeGPerKm *float64 `json:"tailpipe_g_per_km,omitempty" yaml:"tailpipe_g_per_km,omitempty"`
	// 预设车型 ID，未填写的字段从预设补全
	PresetID string `json:"preset_id,omitempty" yaml:"preset_id,omitempty"`
}

// DisplayLabel 显示名称，未填写时使用动力类型名称
func (v VehicleProfile) DisplayLabel() string {
	if label := strings.TrimSpace(v.Label); label != "" {
		return label
	}
	return v.Powertrain.DisplayName()
}
