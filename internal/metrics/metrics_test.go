package metrics

import (
	"testing"
	"time"

	"github.com/parakeep/parascan/internal/tracker"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordScanSubmitted(t *testing.T) {
	ScansSubmitted.Reset()

	RecordScanSubmitted("standard", 250)
	RecordScanSubmitted("standard", 10)
	RecordScanSubmitted("compact", 5)

	assert.Equal(t, 2.0, getCounterValue(t, ScansSubmitted, "standard"))
	assert.Equal(t, 1.0, getCounterValue(t, ScansSubmitted, "compact"))
}

func TestRecordScanFinished(t *testing.T) {
	ScansFinished.Reset()

	RecordScanFinished(tracker.StatusCompleted)
	RecordScanFinished(tracker.StatusCompleted)
	RecordScanFinished(tracker.StatusPartialFailure)

	assert.Equal(t, 2.0, getCounterValue(t, ScansFinished, "completed"))
	assert.Equal(t, 1.0, getCounterValue(t, ScansFinished, "partial_failure"))
}

func TestRecordExtractionFailure(t *testing.T) {
	ExtractionFailures.Reset()

	RecordExtractionFailure("pdf")
	RecordExtractionFailure("pdf")
	RecordExtractionFailure("image")

	assert.Equal(t, 2.0, getCounterValue(t, ExtractionFailures, "pdf"))
	assert.Equal(t, 1.0, getCounterValue(t, ExtractionFailures, "image"))
}

func TestRecordBatchDelivered(t *testing.T) {
	BatchDeliveryDuration.Reset()

	RecordBatchDelivered(2, 1500*time.Millisecond)

	sum := getHistogramSum(t, BatchDeliveryDuration, "accepted")
	assert.Equal(t, 1.5, sum)
}

func TestRecordBatchFailed(t *testing.T) {
	BatchesFailed.Reset()
	BatchDeliveryDuration.Reset()

	RecordBatchFailed("transport_failure", 3, 2*time.Second)
	RecordBatchFailed("rejected_client", 1, 100*time.Millisecond)

	assert.Equal(t, 1.0, getCounterValue(t, BatchesFailed, "transport_failure"))
	assert.Equal(t, 1.0, getCounterValue(t, BatchesFailed, "rejected_client"))
	assert.Equal(t, 2.0, getHistogramSum(t, BatchDeliveryDuration, "transport_failure"))
}

func TestUpdateScanGauges(t *testing.T) {
	ScansByStatus.Reset()

	UpdateScanGauges(map[tracker.TaskStatus]int{
		tracker.StatusProcessing: 3,
		tracker.StatusCompleted:  7,
	})

	assert.Equal(t, 3.0, getGaugeValue(t, ScansByStatus, "processing"))
	assert.Equal(t, 7.0, getGaugeValue(t, ScansByStatus, "completed"))
}

func TestUpdateScanGauges_Reset(t *testing.T) {
	ScansByStatus.Reset()

	UpdateScanGauges(map[tracker.TaskStatus]int{tracker.StatusProcessing: 5})
	UpdateScanGauges(map[tracker.TaskStatus]int{tracker.StatusCompleted: 2})

	assert.Equal(t, 0.0, getGaugeValue(t, ScansByStatus, "processing"),
		"stale statuses are cleared on update")
	assert.Equal(t, 2.0, getGaugeValue(t, ScansByStatus, "completed"))
}

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/api/scans", "202", 50*time.Millisecond)

	count := getCounterValue(t, HTTPRequestsTotal, "POST", "/api/scans", "202")
	assert.Equal(t, 1.0, count)

	sum := getHistogramSum(t, HTTPRequestDuration, "POST", "/api/scans")
	assert.Greater(t, sum, 0.0)
}

func getCounterValue(t *testing.T, counter *prometheus.CounterVec, labels ...string) float64 {
	metric := &dto.Metric{}
	observer, err := counter.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)

	err = observer.Write(metric)
	require.NoError(t, err)
	return metric.Counter.GetValue()
}

func getGaugeValue(t *testing.T, gauge *prometheus.GaugeVec, labels ...string) float64 {
	metric := &dto.Metric{}
	observer, err := gauge.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)

	err = observer.Write(metric)
	require.NoError(t, err)
	return metric.Gauge.GetValue()
}

func getHistogramSum(t *testing.T, histogram *prometheus.HistogramVec, labels ...string) float64 {
	metric := &dto.Metric{}
	observer, err := histogram.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)

	h := observer.(prometheus.Histogram)
	err = h.Write(metric)
	require.NoError(t, err)
	return metric.Histogram.GetSampleSum()
}
