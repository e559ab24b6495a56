package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueryRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bizmap_query_requests_total",
		Help: "Total backend query requests by mode",
	}, []string{"mode"})
	QueryFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bizmap_query_fail_total",
		Help: "Total backend query failures by mode",
	}, []string{"mode"})
	QueryDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bizmap_query_duration_ms",
		Help:    "Backend query duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 3000},
	}, []string{"mode"})
	MalformedRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bizmap_malformed_records_total",
		Help: "Records skipped because required fields were missing",
	}, []string{"mode"})
	SearchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bizmap_searches_total",
		Help: "Searches by kind and outcome",
	}, []string{"kind", "outcome"})
	StaleResultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bizmap_stale_results_total",
		Help: "Search results discarded because a newer search was issued",
	})
	MarkersRendered = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bizmap_markers_rendered",
		Help:    "Markers drawn per render cycle",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 200, 500},
	})
	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bizmap_sessions_active",
		Help: "View sessions currently held in memory",
	})
)

func init() {
	prometheus.MustRegister(QueryRequestsTotal)
	prometheus.MustRegister(QueryFailTotal)
	prometheus.MustRegister(QueryDurationMs)
	prometheus.MustRegister(MalformedRecordsTotal)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(StaleResultsTotal)
	prometheus.MustRegister(MarkersRendered)
	prometheus.MustRegister(SessionsActive)
}

// 文档注释：返回 Prometheus 指标处理器，在 {API_BASE}/metrics 挂载
func Handler() http.Handler { return promhttp.Handler() }
