package metrics_collectors

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes
const (
	OutcomeSaved        = "saved"
	OutcomeInvalid      = "invalid"
	OutcomeStorageError = "storage_error"
)

// MetricsRegistry owns the ingestor's Prometheus collectors. A nil *MetricsRegistry
// is valid and records nothing.
type MetricsRegistry struct {
	registry      *prometheus.Registry
	submissions   *prometheus.CounterVec
	storeDuration prometheus.Histogram
}

// NewMetricsRegistry creates a private registry with the ingest collectors and
// the standard Go runtime and process collectors.
func NewMetricsRegistry() *MetricsRegistry {
	r := &MetricsRegistry{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gps",
				Subsystem: "ingest",
				Name:      "submissions_total",
				Help:      "Location submissions by transport and outcome",
			},
			[]string{"transport", "outcome"},
		),
		storeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "gps",
				Subsystem: "ingest",
				Name:      "store_duration_seconds",
				Help:      "Time spent persisting a location record",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	r.registry.MustRegister(
		r.submissions,
		r.storeDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// ObserveSubmission counts one submission.
func (r *MetricsRegistry) ObserveSubmission(transport, outcome string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(transport, outcome).Inc()
}

// ObserveStore records the duration of one repository insert.
func (r *MetricsRegistry) ObserveStore(d time.Duration) {
	if r == nil {
		return
	}
	r.storeDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *MetricsRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry for additional collectors.
func (r *MetricsRegistry) Registry() *prometheus.Registry {
	return r.registry
}
