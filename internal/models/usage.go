package models

// RouteMix 年度行驶路况占比 (百分比)
type RouteMix struct {
	UrbanPct      float64 `json:"urban_pct" yaml:"urban_pct"`
	ExtraUrbanPct float64 `json:"extraurban_pct" yaml:"extraurban_pct"`
	HighwayPct    float64 `json:"highway_pct" yaml:"highway_pct"`
}

// DefaultRouteMix 默认路况占比 30/50/20
func DefaultRouteMix() RouteMix {
	return RouteMix{UrbanPct: 30, ExtraUrbanPct: 50, HighwayPct: 20}
}

// Sum 三项之和
func (m RouteMix) Sum() float64 {
	return m.UrbanPct + m.ExtraUrbanPct + m.HighwayPct
}

// UsageProfile 两车共享的使用情况
type UsageProfile struct {
	AnnualDistanceKm float64  `json:"annual_distance_km" yaml:"annual_distance_km"`
	RouteMix         RouteMix `json:"route_mix" yaml:"route_mix"`
	OwnershipYears   int      `json:"ownership_years,omitempty" yaml:"ownership_years,omitempty"` // 持有年限，0 表示默认值
}
