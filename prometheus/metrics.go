package prometheus

import (
	"time"

	"github.com/Yousra-khallou/PipelineProc/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec

	// Loading metrics
	RecordsLoadedTotal  *prometheus.CounterVec
	RecordsSkippedTotal *prometheus.CounterVec

	// Output metrics
	SupplierOrdersTotal prometheus.Counter
	ExceptionsTotal     *prometheus.CounterVec

	// HTTP request metrics (scheduler mode)
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	prefix := cfg.Metrics.Prefix

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_runs_total",
			Help: "Total number of pipeline runs by outcome",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_run_duration_seconds",
			Help:    "Duration of pipeline runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	RecordsLoadedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_records_loaded_total",
			Help: "Total number of input records loaded by source",
		},
		[]string{"source"},
	)

	RecordsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_records_skipped_total",
			Help: "Total number of malformed input records skipped by source",
		},
		[]string{"source"},
	)

	SupplierOrdersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_supplier_orders_total",
			Help: "Total number of supplier purchase orders generated",
		},
	)

	ExceptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_exceptions_total",
			Help: "Total number of detected anomalies by type",
		},
		[]string{"type"},
	)

	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
}

// RecordRun records one pipeline run outcome and its duration
func RecordRun(status string, duration time.Duration) {
	if RunsTotal == nil {
		return
	}
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordLoaded adds to the loaded-records counter for a source
func RecordLoaded(source string, count int) {
	if RecordsLoadedTotal == nil {
		return
	}
	RecordsLoadedTotal.WithLabelValues(source).Add(float64(count))
}

// RecordSkipped increments the skipped-records counter for a source
func RecordSkipped(source string) {
	if RecordsSkippedTotal == nil {
		return
	}
	RecordsSkippedTotal.WithLabelValues(source).Inc()
}

// RecordSupplierOrders adds to the generated purchase order counter
func RecordSupplierOrders(count int) {
	if SupplierOrdersTotal == nil {
		return
	}
	SupplierOrdersTotal.Add(float64(count))
}

// RecordException adds to the exception counter for an anomaly type
func RecordException(exceptionType string, count int) {
	if ExceptionsTotal == nil {
		return
	}
	ExceptionsTotal.WithLabelValues(exceptionType).Add(float64(count))
}
