// Package metrics holds the Prometheus collectors for the chat core.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several instances can exist in one process
// (tests create one per case). All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	commits        *prometheus.CounterVec
	commitDuration prometheus.Histogram
	posted         *prometheus.CounterVec
	evicted        *prometheus.CounterVec
	rateLimited    prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomchat",
			Name:      "commits_total",
			Help:      "Mutating operations by kind and result.",
		}, []string{"op", "result"}),
		commitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "roomchat",
			Name:      "document_save_seconds",
			Help:      "Time spent persisting the chat document.",
			Buckets:   prometheus.DefBuckets,
		}),
		posted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomchat",
			Name:      "messages_posted_total",
			Help:      "Messages stored, by kind.",
		}, []string{"kind"}),
		evicted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomchat",
			Name:      "messages_evicted_total",
			Help:      "Messages physically removed, by reason.",
		}, []string{"reason"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roomchat",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-user rate limiter.",
		}),
	}
	m.registry.MustRegister(
		m.commits,
		m.commitDuration,
		m.posted,
		m.evicted,
		m.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Commit(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.commits.WithLabelValues(op, result).Inc()
}

func (m *Metrics) ObserveSave(d time.Duration) {
	if m == nil {
		return
	}
	m.commitDuration.Observe(d.Seconds())
}

func (m *Metrics) Posted(kind string) {
	if m == nil {
		return
	}
	m.posted.WithLabelValues(kind).Inc()
}

// Evicted counts removed messages. reason is "cap" or "expired".
func (m *Metrics) Evicted(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.evicted.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
