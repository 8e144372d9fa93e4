package triplog

import "strings"

// Document 一份位置历史导出 (例如 Semantic Location History 的月度文件)
type Document struct {
	Name            string           `json:"-"`
	TimelineObjects []TimelineObject `json:"timelineObjects"`
}

// TimelineObject 时间线条目，只关心行程段
type TimelineObject struct {
	ActivitySegment *ActivitySegment `json:"activitySegment,omitempty"`
}

// ActivitySegment 行程段
type ActivitySegment struct {
	Distance     *float64 `json:"distance"` // 米
	ActivityType string   `json:"activityType"`
}

// RouteType 路况类型
type RouteType string

const (
	RouteUrban      RouteType = "urban"
	RouteExtraUrban RouteType = "extra_urban"
	RouteHighway    RouteType = "highway"
)

var (
	highwayKeywords = []string{"highway", "motorway", "expressway"}
	urbanKeywords   = []string{"city", "urban"}
)

// Classify 按活动类型关键字归类路况，未命中为郊区
func Classify(activityType string) RouteType {
	t := strings.ToLower(activityType)
	for _, k := range highwayKeywords {
		if strings.Contains(t, k) {
			return RouteHighway
		}
	}
	for _, k := range urbanKeywords {
		if strings.Contains(t, k) {
			// extra_urban 也包含 "urban"
			if strings.Contains(t, "extra") {
				return RouteExtraUrban
			}
			return RouteUrban
		}
	}
	return RouteExtraUrban
}
