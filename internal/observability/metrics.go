// Package observability provides pipeline metrics recorders: a Prometheus
// implementation for scraped deployments and an expvar-backed one for
// process-local metrics without external dependencies.
package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder observes pipeline operation outcomes and data-quality counters.
type Recorder interface {
	// Observe records an operation outcome and duration.
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	// CountRows adds to the ingested-row counter.
	CountRows(n int)
	// CountSentinel counts a malformed field value that degraded to a
	// sentinel (absent likert, zero timestamp, pass-through language).
	CountSentinel(field string)
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func (NopRecorder) Observe(context.Context, string, bool, time.Duration) {}
func (NopRecorder) CountRows(int)                                        {}
func (NopRecorder) CountSentinel(string)                                 {}

// PrometheusRecorder publishes pipeline metrics via prometheus collectors.
type PrometheusRecorder struct {
	rowsIngested prometheus.Counter
	sentinels    *prometheus.CounterVec
	operations   *prometheus.CounterVec
	durations    *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the pipeline collectors on the registerer
// (pass prometheus.DefaultRegisterer for the usual /metrics exposition).
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		rowsIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "surveycore_rows_ingested_total",
			Help: "Total raw survey rows ingested.",
		}),
		sentinels: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "surveycore_sentinel_values_total",
			Help: "Malformed field values degraded to sentinels during normalization.",
		}, []string{"field"}),
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "surveycore_operations_total",
			Help: "Pipeline operations by outcome.",
		}, []string{"operation", "status"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "surveycore_operation_duration_seconds",
			Help:    "Pipeline operation durations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) CountRows(n int) {
	r.rowsIngested.Add(float64(n))
}

func (r *PrometheusRecorder) CountSentinel(field string) {
	r.sentinels.WithLabelValues(field).Inc()
}
