package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospital_requests_total",
		Help: "Total number of hospital recommendation requests by outcome",
	}, []string{"outcome"})
	RequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hospital_request_duration_ms",
		Help:    "Recommendation duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 3000},
	})
	EmptyResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospital_empty_results_total",
		Help: "Total number of empty recommendation lists by reason",
	}, []string{"reason"})
	ProximityLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospital_proximity_lookups_total",
		Help: "Proximity cache lookups by store and result (hit, miss, error)",
	}, []string{"store", "result"})
	ProximityExpiredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospital_proximity_expired_total",
		Help: "Proximity cache entries dropped lazily on read",
	}, []string{"store"})
	AMapRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospital_amap_requests_total",
		Help: "Total amap REST requests by endpoint",
	}, []string{"endpoint"})
	AMapFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospital_amap_fail_total",
		Help: "Total amap REST failures by endpoint",
	}, []string{"endpoint"})
	AMapDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hospital_amap_duration_ms",
		Help:    "AMap REST call duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"endpoint"})
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospital_provider_requests_total",
		Help: "Provider fetches by provider and result (ok, empty, fail)",
	}, []string{"provider", "result"})
	ProviderDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hospital_provider_duration_ms",
		Help:    "Provider fetch duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 3000},
	}, []string{"provider"})
	ProviderHeartbeatTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospital_provider_heartbeat_total",
		Help: "Provider heartbeat count by status",
	}, []string{"provider", "status"})
	PipelineRecords = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hospital_pipeline_records",
		Help:    "Record counts entering and leaving the pipeline",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 200},
	}, []string{"stage"})
	LocateTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospital_locate_total",
		Help: "Center resolution by method (coords, address, ip, last, default)",
	}, []string{"method"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hospital_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDurationMs,
		EmptyResultsTotal,
		ProximityLookupsTotal,
		ProximityExpiredTotal,
		AMapRequestsTotal,
		AMapFailTotal,
		AMapDurationMs,
		ProviderRequestsTotal,
		ProviderDurationMs,
		ProviderHeartbeatTotal,
		PipelineRecords,
		LocateTotal,
		RateLimitedTotal,
	)
}

// 文档注释：返回 Prometheus 指标监听器，在主入口挂载到 /metrics
func Handler() http.Handler { return promhttp.Handler() }
