// Package metrics exposes ingestion counters for Prometheus.
//
// The recorder owns its own registry so several servers (and tests) can run
// in one process without colliding on the default registerer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/affectgrid/internal/grid"
)

const namespace = "affectgrid"

// Recorder implements pipeline.Recorder on top of Prometheus collectors.
type Recorder struct {
	registry *prometheus.Registry

	ingested   *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   prometheus.Histogram
	queueDepth prometheus.Gauge
}

// Option configures a Recorder.
type Option func(*options)

type options struct {
	runtime bool
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(o *options) {
		o.runtime = true
	}
}

// New creates a Recorder with a fresh registry.
func New(opts ...Option) *Recorder {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coordinates_ingested_total",
			Help:      "Coordinates stored and classified, by valence.",
		}, []string{"valence"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_failures_total",
			Help:      "Rejected or failed submissions, by error code.",
		}, []string{"code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Time from enqueue to completed ingestion.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_queue_depth",
			Help:      "Submissions waiting for the single writer.",
		}),
	}

	r.registry.MustRegister(r.ingested, r.failures, r.duration, r.queueDepth)
	if o.runtime {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// Pre-create both valence series so dashboards see zeros.
	for _, v := range []grid.Valence{grid.ValenceNegative, grid.ValencePositive} {
		r.ingested.WithLabelValues(string(v))
	}

	return r
}

// Accepted records a successfully stored coordinate.
func (r *Recorder) Accepted(v grid.Valence, d time.Duration) {
	r.ingested.WithLabelValues(string(v)).Inc()
	r.duration.Observe(d.Seconds())
}

// Failed records a rejected or failed submission.
func (r *Recorder) Failed(code string) {
	r.failures.WithLabelValues(code).Inc()
}

// QueueDepth sets the current queue length.
func (r *Recorder) QueueDepth(n int) {
	r.queueDepth.Set(float64(n))
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
