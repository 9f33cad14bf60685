// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Interpretation outcomes, used as the "outcome" label.
const (
	OutcomeSuccess     = "success"
	OutcomeLaunchError = "launch_error"
	OutcomeTimeout     = "timeout"
	OutcomeUnavailable = "unavailable"
	OutcomeParseError  = "parse_error"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	Interpretations     *prometheus.CounterVec
	InterpreterDuration prometheus.Histogram
	InterpreterExits    *prometheus.CounterVec
	MatchedFields       prometheus.Histogram
	InFlight            prometheus.Gauge
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zuery_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zuery_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		Interpretations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zuery_interpretations_total",
				Help: "Total number of interpreter invocations by outcome",
			},
			[]string{"outcome"},
		),
		InterpreterDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "zuery_interpreter_duration_seconds",
				Help:    "Wall time of interpreter processes in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		InterpreterExits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zuery_interpreter_exits_total",
				Help: "Interpreter process exits by exit code",
			},
			[]string{"code"},
		),
		MatchedFields: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "zuery_matched_fields",
				Help:    "Number of matched fields per parsed report",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
			},
		),
		InFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "zuery_interpretations_in_flight",
				Help: "Number of interpretations currently running or waiting for a slot",
			},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Begin marks an interpretation as in flight and returns its completion func.
func (m *Metrics) Begin() func() {
	if m == nil {
		return func() {}
	}
	m.InFlight.Inc()
	return m.InFlight.Dec
}

func (m *Metrics) ObserveInterpretation(outcome string) {
	if m == nil {
		return
	}
	m.Interpretations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveProcess(exitCode int, d time.Duration) {
	if m == nil {
		return
	}
	m.InterpreterDuration.Observe(d.Seconds())
	m.InterpreterExits.WithLabelValues(strconv.Itoa(exitCode)).Inc()
}

func (m *Metrics) ObserveFields(n int) {
	if m == nil {
		return
	}
	m.MatchedFields.Observe(float64(n))
}
