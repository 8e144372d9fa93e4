package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 指标
var (
	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evcompare_comparisons_total",
			Help: "Total number of comparisons computed",
		},
		[]string{"channel", "status"},
	)

	ComparisonDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evcompare_comparison_duration_seconds",
			Help:    "Comparison computation time in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"channel"},
	)

	BreakEvenOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evcompare_breakeven_outcomes_total",
			Help: "Break-even outcomes by kind",
		},
		[]string{"kind"},
	)

	RouteMixWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evcompare_route_mix_warnings_total",
			Help: "Comparisons that fell back or normalized a degenerate route mix",
		},
	)

	TripLogFiles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evcompare_triplog_files_total",
			Help: "Trip-log files processed",
		},
		[]string{"status"},
	)

	TripLogSegments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evcompare_triplog_segments_total",
			Help: "Trip-log activity segments processed",
		},
		[]string{"status"},
	)

	PriceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evcompare_price_fetch_total",
			Help: "Reference price fetch attempts",
		},
		[]string{"status"},
	)

	PriceFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evcompare_price_fetch_duration_seconds",
			Help:    "Reference price fetch duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		},
	)

	PriceFeedState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "evcompare_price_feed_state",
			Help: "Current price feed state (1 for the active state)",
		},
		[]string{"state"},
	)

	ReferencePrice = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "evcompare_reference_price",
			Help: "Reference energy price in use",
		},
		[]string{"energy"},
	)

	RateLimitWaitTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evcompare_rate_limit_wait_duration_seconds",
			Help:    "Time spent waiting for rate limits",
			Buckets: []float64{0.01, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"service"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evcompare_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evcompare_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "evcompare_websocket_connections",
			Help: "Number of connected websocket clients",
		},
	)
)

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordComparison 记录一次对比计算
func RecordComparison(channel, result string, duration time.Duration) {
	ComparisonsTotal.WithLabelValues(channel, result).Inc()
	ComparisonDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordBreakEven 记录回本结果类型
func RecordBreakEven(kind string) {
	BreakEvenOutcomes.WithLabelValues(kind).Inc()
}

// RecordTripLogs 记录行程日志处理量
func RecordTripLogs(files, skippedFiles, segments, skippedSegments int) {
	TripLogFiles.WithLabelValues("ok").Add(float64(files))
	TripLogFiles.WithLabelValues("skipped").Add(float64(skippedFiles))
	TripLogSegments.WithLabelValues("ok").Add(float64(segments))
	TripLogSegments.WithLabelValues("skipped").Add(float64(skippedSegments))
}

// RecordPriceFetch 记录一次价格抓取
func RecordPriceFetch(duration time.Duration, success bool) {
	PriceFetchTotal.WithLabelValues(status(success)).Inc()
	PriceFetchDuration.Observe(duration.Seconds())
}

// SetPriceFeedState 只把当前状态置 1
func SetPriceFeedState(current string, all ...string) {
	for _, s := range all {
		v := 0.0
		if s == current {
			v = 1
		}
		PriceFeedState.WithLabelValues(s).Set(v)
	}
}

// SetReferencePrices 更新参考价格
func SetReferencePrices(petrol, diesel, electricity float64) {
	ReferencePrice.WithLabelValues("petrol").Set(petrol)
	ReferencePrice.WithLabelValues("diesel").Set(diesel)
	ReferencePrice.WithLabelValues("electricity").Set(electricity)
}

// RecordRateLimitWait 记录限流等待时间
func RecordRateLimitWait(service string, duration time.Duration) {
	RateLimitWaitTime.WithLabelValues(service).Observe(duration.Seconds())
}

// RecordCacheHit 缓存命中
func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss 缓存未命中
func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// UpdateActiveConnections 更新 websocket 连接数
func UpdateActiveConnections(count int) {
	ActiveConnections.Set(float64(count))
}
