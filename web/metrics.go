// ABOUTME: Prometheus metrics for the board server
// ABOUTME: Counts stage transitions and stored deal changes, and times HTTP requests
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many servers as they like.
type Metrics struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	changes     *prometheus.CounterVec
	requests    *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealboard",
			Name:      "stage_transitions_total",
			Help:      "Deal stage changes sent to the record store, by result.",
		}, []string{"from", "to", "result"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealboard",
			Name:      "deal_changes_total",
			Help:      "Deal edits and deletes applied to the board after the record store confirmed them.",
		}, []string{"event", "stage"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dealboard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
	}
	m.registry.MustRegister(
		m.transitions,
		m.changes,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveTransition matches pipeline.TransitionObserver.
func (m *Metrics) ObserveTransition(from, to string, err error) {
	result := "accepted"
	if err != nil {
		result = "rejected"
	}
	m.transitions.WithLabelValues(from, to, result).Inc()
}

// ObserveDealEdited matches pipeline.OnDealEdited.
func (m *Metrics) ObserveDealEdited(d models.Deal) {
	m.changes.WithLabelValues("edited", d.Stage).Inc()
}

// ObserveDealDeleted matches pipeline.OnDealDeleted. The deal is gone by
// then, so its stage is reported as unknown.
func (m *Metrics) ObserveDealDeleted(int64) {
	m.changes.WithLabelValues("deleted", pipeline.UnknownStage).Inc()
}

// BoardOptions hooks every board callback up to these metrics.
func (m *Metrics) BoardOptions() []pipeline.Option {
	return []pipeline.Option{
		pipeline.WithTransitionObserver(m.ObserveTransition),
		pipeline.OnDealEdited(m.ObserveDealEdited),
		pipeline.OnDealDeleted(m.ObserveDealDeleted),
	}
}

func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
