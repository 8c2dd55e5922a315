// Package metrics exposes Prometheus collectors for grading and HTTP traffic.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/readcheck/internal/evaluator"
)

// Metrics holds the collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	gradings        *prometheus.CounterVec
	gradingDuration prometheus.Histogram
	judgments       *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg. A nil reg gets a
// fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		gradings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "readcheck_gradings_total",
				Help: "Grading calls by outcome",
			},
			[]string{"outcome"},
		),
		gradingDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "readcheck_grading_duration_seconds",
				Help:    "Duration of successful grading calls",
				Buckets: []float64{0.05, 0.25, 1, 2.5, 5, 10, 30},
			},
		),
		judgments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "readcheck_open_answer_judgments_total",
				Help: "Open-answer evaluations by outcome",
			},
			[]string{"outcome"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
	}
	m.registry.MustRegister(m.gradings, m.gradingDuration, m.judgments, m.requests, m.requestDuration)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveGrading counts one grading call. outcome is "graded" or the
// failure class; d is recorded only for graded calls.
func (m *Metrics) ObserveGrading(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.gradings.WithLabelValues(outcome).Inc()
	if outcome == "graded" {
		m.gradingDuration.Observe(d.Seconds())
	}
}

// ObserveJudgment implements evaluator.Observer.
func (m *Metrics) ObserveJudgment(outcome evaluator.Outcome) {
	if m == nil {
		return
	}
	m.judgments.WithLabelValues(string(outcome)).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
