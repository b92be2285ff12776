// Package metrics provides Prometheus metrics for monitoring the scan and
// delivery pipeline.
package metrics

import (
	"time"

	"github.com/parakeep/parascan/internal/tracker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScansSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parascan_scans_submitted_total",
			Help: "Total number of scan tasks submitted",
		},
		[]string{"strategy"},
	)
	ScansFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parascan_scans_finished_total",
			Help: "Total number of scan tasks that reached a terminal state",
		},
		[]string{"status"},
	)
	FilesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parascan_files_scanned_total",
			Help: "Total number of filesystem entries collected by scans",
		},
	)
	ExtractionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parascan_extraction_failures_total",
			Help: "Total number of absorbed per-file extraction failures",
		},
		[]string{"file_type"},
	)
	BatchesDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parascan_batches_delivered_total",
			Help: "Total number of batches acknowledged by the remote store",
		},
	)
	BatchesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parascan_batches_failed_total",
			Help: "Total number of batches that failed delivery",
		},
		[]string{"result"},
	)
	DeliveryAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parascan_delivery_attempts_per_batch",
			Help:    "Delivery attempts spent per batch",
			Buckets: []float64{1, 2, 3, 4, 5, 8, 10},
		},
	)
	BatchDeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parascan_batch_delivery_duration_seconds",
			Help:    "Wall-clock time spent delivering one batch, retries included",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"result"},
	)
	ScansByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "parascan_scans_by_status",
			Help: "Current number of tracked scan tasks by status",
		},
		[]string{"status"},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parascan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parascan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func RecordScanSubmitted(strategy string, fileCount int) {
	ScansSubmitted.WithLabelValues(strategy).Inc()
	FilesScanned.Add(float64(fileCount))
}

func RecordScanFinished(status tracker.TaskStatus) {
	ScansFinished.WithLabelValues(string(status)).Inc()
}

func RecordExtractionFailure(fileType string) {
	ExtractionFailures.WithLabelValues(fileType).Inc()
}

func RecordBatchDelivered(attempts int, duration time.Duration) {
	BatchesDelivered.Inc()
	DeliveryAttempts.Observe(float64(attempts))
	BatchDeliveryDuration.WithLabelValues("accepted").Observe(duration.Seconds())
}

func RecordBatchFailed(result string, attempts int, duration time.Duration) {
	BatchesFailed.WithLabelValues(result).Inc()
	DeliveryAttempts.Observe(float64(attempts))
	BatchDeliveryDuration.WithLabelValues(result).Observe(duration.Seconds())
}

func UpdateScanGauges(countsByStatus map[tracker.TaskStatus]int) {
	ScansByStatus.Reset()
	for status, count := range countsByStatus {
		ScansByStatus.WithLabelValues(string(status)).Set(float64(count))
	}
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
