package metrics

import (
	"context"
	"net/http"

	"price-sync/core/reconcile"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds configuration for the metrics registry.
type Config struct {
	// Enabled exposes /metrics and registers the observer.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace" default:"price_sync"`
}

// Registry holds the sync metrics. It implements reconcile.Observer.
type Registry struct {
	reg *prometheus.Registry

	Batches     *prometheus.CounterVec
	Rows        *prometheus.CounterVec
	Dropped     *prometheus.CounterVec
	Truncations *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with every sync metric registered.
func NewRegistry(namespace string) *Registry {
	r := prometheus.NewRegistry()
	labels := []string{"source", "job"}

	batches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_total",
		Help:      "Batches processed, by outcome.",
	}, append(labels, "outcome"))
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_written_total",
		Help:      "Rows written by committed batches.",
	}, append(labels, "entity", "op"))
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_dropped_total",
		Help:      "Records dropped during normalization or diffing.",
	}, labels)
	truncations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_truncations_total",
		Help:      "Runs stopped after a page exhausted its retries.",
	}, labels)
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of one partition run.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, labels)

	r.MustRegister(batches, rows, dropped, truncations, duration)
	return &Registry{
		reg:         r,
		Batches:     batches,
		Rows:        rows,
		Dropped:     dropped,
		Truncations: truncations,
		RunDuration: duration,
	}
}

// BatchDone implements reconcile.Observer.
func (r *Registry) BatchDone(ctx context.Context, res reconcile.BatchResult) {
	r.Batches.WithLabelValues(res.Source, res.Job, string(res.Outcome)).Inc()
	if res.Dropped > 0 {
		r.Dropped.WithLabelValues(res.Source, res.Job).Add(float64(res.Dropped))
	}
	// products created before a rolled back batch stay committed
	r.addRows(res, "product", "insert", res.ProductsInserted)
	if res.Outcome != reconcile.OutcomeCommitted {
		return
	}
	r.addRows(res, "product", "update", res.ProductsUpdated)
	r.addRows(res, "price", "insert", res.PricesInserted)
	r.addRows(res, "price", "update", res.PricesUpdated)
	r.addRows(res, "print", "insert", res.Projected)
}

// StreamTruncated implements reconcile.Observer.
func (r *Registry) StreamTruncated(ctx context.Context, summary reconcile.RunSummary, err error) {
	r.Truncations.WithLabelValues(summary.Source, summary.Job).Inc()
}

// RunFinished records the duration of a partition run.
func (r *Registry) RunFinished(summary reconcile.RunSummary) {
	r.RunDuration.WithLabelValues(summary.Source, summary.Job).Observe(summary.Elapsed.Seconds())
}

func (r *Registry) addRows(res reconcile.BatchResult, entity, op string, n int) {
	if n > 0 {
		r.Rows.WithLabelValues(res.Source, res.Job, entity, op).Add(float64(n))
	}
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler serves the registry in the prometheus text format.
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
