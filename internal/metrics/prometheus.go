// Package metrics provides Prometheus metrics for the cut-list pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Batch metrics
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyclesheet_batches_total",
			Help: "Total number of PDF batches processed",
		},
		[]string{"status"},
	)

	BatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cyclesheet_batch_duration_seconds",
			Help:    "Time taken to process a batch of PDFs",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"status"},
	)

	BatchesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cyclesheet_batches_active",
			Help: "Number of batches currently holding a processing slot",
		},
	)

	// Document metrics
	DocumentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyclesheet_documents_total",
			Help: "Total number of PDF documents processed",
		},
		[]string{"status"},
	)

	DocumentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cyclesheet_document_duration_seconds",
			Help:    "Time taken to extract one PDF document",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Table metrics
	TablesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyclesheet_tables_total",
			Help: "Total number of extracted tables by outcome",
		},
		[]string{"outcome"},
	)

	RecordsExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cyclesheet_records_extracted_total",
			Help: "Total number of part records extracted",
		},
	)

	// Warning metrics
	WarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyclesheet_warnings_total",
			Help: "Total number of warnings by code",
		},
		[]string{"code"},
	)
)

// Table outcomes recorded by RecordTable.
const (
	TableUsed    = "used"
	TableSkipped = "skipped"
	TableEmpty   = "empty"
)

// RecordBatch records the outcome and duration of a batch.
func RecordBatch(status string, duration time.Duration) {
	BatchesTotal.WithLabelValues(status).Inc()
	BatchDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordDocument records one extracted document.
func RecordDocument(status string, records int, duration time.Duration) {
	DocumentsTotal.WithLabelValues(status).Inc()
	DocumentDuration.Observe(duration.Seconds())
	RecordsExtracted.Add(float64(records))
}

// RecordTable records the outcome of one extracted table.
func RecordTable(outcome string) {
	TablesTotal.WithLabelValues(outcome).Inc()
}

// RecordWarning records a warning code surfaced to the user.
func RecordWarning(code string) {
	WarningsTotal.WithLabelValues(code).Inc()
}

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
