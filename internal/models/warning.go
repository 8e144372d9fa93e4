package models

// WarningCode 非致命警告类型
type WarningCode string

const (
	WarningDegenerateRouteMix WarningCode = "degenerate_route_mix"
	WarningTripLogParse       WarningCode = "trip_log_parse"
)

// Warning 非致命警告，计算继续进行
type Warning struct {
	Code    WarningCode `json:"code" yaml:"code"`
	Source  string      `json:"source,omitempty" yaml:"source,omitempty"` // 字段名或文件名
	Message string      `json:"message" yaml:"message"`
}
