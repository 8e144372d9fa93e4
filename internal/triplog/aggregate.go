package triplog

import (
	"fmt"
	"math"

	"github.com/langchou/evcompare/internal/models"
)

// Summary 行程汇总
type Summary struct {
	Documents       int              `json:"documents" yaml:"documents"`
	SkippedFiles    int              `json:"skipped_files" yaml:"skipped_files"`
	Segments        int              `json:"segments" yaml:"segments"`
	SkippedSegments int              `json:"skipped_segments" yaml:"skipped_segments"`
	TotalDistanceKm float64          `json:"total_distance_km" yaml:"total_distance_km"`
	UrbanKm         float64          `json:"urban_km" yaml:"urban_km"`
	ExtraUrbanKm    float64          `json:"extra_urban_km" yaml:"extra_urban_km"`
	HighwayKm       float64          `json:"highway_km" yaml:"highway_km"`
	RouteMix        models.RouteMix  `json:"route_mix" yaml:"route_mix"`
	Warnings        []models.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Aggregate 汇总全部文档的行驶距离。格式错误的文档或行程段被跳过并记录警告
func Aggregate(docs []Document) Summary {
	var s Summary
	for _, doc := range docs {
		s.add(doc)
	}
	s.RouteMix = routeMixOf(s.UrbanKm, s.ExtraUrbanKm, s.HighwayKm)
	return s
}

func (s *Summary) add(doc Document) {
	if doc.TimelineObjects == nil {
		s.SkippedFiles++
		s.warn(doc.Name, "missing timelineObjects, file skipped")
		return
	}
	s.Documents++

	for i, obj := range doc.TimelineObjects {
		seg := obj.ActivitySegment
		if seg == nil {
			continue
		}
		if seg.Distance == nil {
			s.SkippedSegments++
			s.warn(doc.Name, fmt.Sprintf("timeline object %d: activity segment has no distance, skipped", i))
			continue
		}
		meters := *seg.Distance
		if math.IsNaN(meters) || math.IsInf(meters, 0) || meters < 0 {
			s.SkippedSegments++
			s.warn(doc.Name, fmt.Sprintf("timeline object %d: invalid distance %g, skipped", i, meters))
			continue
		}

		km := meters / 1000
		s.Segments++
		s.TotalDistanceKm += km
		switch Classify(seg.ActivityType) {
		case RouteHighway:
			s.HighwayKm += km
		case RouteUrban:
			s.UrbanKm += km
		default:
			s.ExtraUrbanKm += km
		}
	}
}

func (s *Summary) warn(source, msg string) {
	s.Warnings = append(s.Warnings, models.Warning{
		Code:    models.WarningTripLogParse,
		Source:  source,
		Message: msg,
	})
}

// AddFileErrors 把无法解码的文件记为警告
func (s *Summary) AddFileErrors(errs []FileError) {
	for _, fe := range errs {
		s.SkippedFiles++
		s.warn(fe.Name, fe.Err.Error())
	}
}

func routeMixOf(urban, extra, highway float64) models.RouteMix {
	total := urban + extra + highway
	if total == 0 {
		return models.DefaultRouteMix()
	}
	return models.RouteMix{
		UrbanPct:      urban / total * 100,
		ExtraUrbanPct: extra / total * 100,
		HighwayPct:    highway / total * 100,
	}
}
