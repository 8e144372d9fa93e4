package models

import (
	"errors"
	"time"
)

// ErrPresetNotFound 预设车型不存在
var ErrPresetNotFound = errors.New("preset not found")

// Preset 预设车型
type Preset struct {
	ID            string     `json:"id" db:"id" yaml:"id"`
	Name          string     `json:"name" db:"name" yaml:"name"`
	Powertrain    Powertrain `json:"powertrain" db:"powertrain" yaml:"powertrain"`
	PurchasePrice float64    `json:"purchase_price" db:"purchase_price" yaml:"purchase_price"`
	Consumption   float64    `json:"consumption" db:"consumption" yaml:"consumption"` // 单位/100km
	CreatedAt     time.Time  `json:"created_at,omitempty" db:"created_at" yaml:"-"`
}

// Apply 用预设补全车辆中未填写的字段
func (p *Preset) Apply(v VehicleProfile) VehicleProfile {
	if v.Powertrain == "" {
		v.Powertrain = p.Powertrain
	}
	if v.Label == "" {
		v.Label = p.Name
	}
	if v.PurchasePrice == 0 {
		v.PurchasePrice = p.PurchasePrice
	}
	if v.Consumption.IsZero() {
		v.Consumption = CombinedRate(p.Consumption)
	}
	return v
}
