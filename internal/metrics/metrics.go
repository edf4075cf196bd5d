package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// AggregationDuration records how long a dashboard computation takes
	AggregationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "dashboard_aggregation_duration_seconds", Help: "Dashboard aggregation duration in seconds.", Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1}},
	)
	// SkippedRecords counts records left out of a computation by collection and reason
	SkippedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fleet_skipped_records_total", Help: "Records skipped while loading or aggregating fleet data."},
		[]string{"collection", "reason"},
	)
	// NotificationsPublished counts alert publications by notification type and outcome
	NotificationsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "notifications_published_total", Help: "Notifications published to the alert broker."},
		[]string{"type", "status"},
	)
	// CacheLookups counts dashboard cache lookups by result (hit, miss, error)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dashboard_cache_lookups_total", Help: "Dashboard cache lookups by result."},
		[]string{"result"},
	)
)

// RegisterDefault registers collectors to the dedicated registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(AggregationDuration)
		Registry.MustRegister(SkippedRecords)
		Registry.MustRegister(NotificationsPublished)
		Registry.MustRegister(CacheLookups)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
