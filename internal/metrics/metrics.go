// Package metrics exposes Prometheus metrics for the completion server.
package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tentacle-scylla/cqlcomplete/pkg/complete"
	"github.com/tentacle-scylla/cqlcomplete/pkg/types"
)

// Registry holds the server's collectors on a private prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	Completions       *prometheus.CounterVec
	CompletionLatency *prometheus.HistogramVec
	SourceErrors      *prometheus.CounterVec
	HistoryFlushes    *prometheus.CounterVec
	HistoryQueued     prometheus.Gauge

	ready atomic.Bool
}

// NewRegistry creates and registers all collectors under namespace
// ("cqlcomplete" when empty), plus the Go runtime and process collectors.
func NewRegistry(namespace string) *Registry {
	if namespace == "" {
		namespace = "cqlcomplete"
	}
	r := &Registry{reg: prometheus.NewRegistry()}
	r.Completions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "completions_total",
		Help: "Completion requests by statement and outcome.",
	}, []string{"statement", "outcome"})
	r.CompletionLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "completion_latency_seconds",
		Help:    "Completion latency by statement.",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 2},
	}, []string{"statement"})
	r.SourceErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "suggestion_source_errors_total",
		Help: "Suggestion source failures by provider.",
	}, []string{"provider"})
	r.HistoryFlushes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "history_flushes_total",
		Help: "History flushes by result.",
	}, []string{"result"})
	r.HistoryQueued = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "history_queued_users",
		Help: "Users with history entries waiting for a flush.",
	})

	r.reg.MustRegister(
		r.Completions, r.CompletionLatency, r.SourceErrors,
		r.HistoryFlushes, r.HistoryQueued,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Gatherer returns the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ObserveCompletion records one completion result.
func (r *Registry) ObserveCompletion(res complete.Result, d time.Duration) {
	stmt := res.Statement.String()
	r.Completions.WithLabelValues(stmt, string(res.Outcome)).Inc()
	r.CompletionLatency.WithLabelValues(stmt).Observe(d.Seconds())
	for _, err := range res.Errors {
		provider := "unknown"
		var serr *types.SuggestionSourceError
		if errors.As(err, &serr) {
			provider = serr.Provider
		}
		r.SourceErrors.WithLabelValues(provider).Inc()
	}
}

// ObserveFlush records a history flush.
func (r *Registry) ObserveFlush(err error, queued int) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.HistoryFlushes.WithLabelValues(result).Inc()
	r.HistoryQueued.Set(float64(queued))
}

// SetReady marks the server ready (or not) for /readyz.
func (r *Registry) SetReady(v bool) { r.ready.Store(v) }

// Ready reports the readiness flag.
func (r *Registry) Ready() bool { return r.ready.Load() }
