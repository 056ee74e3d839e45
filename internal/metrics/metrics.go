// Package metrics exposes validation activity as Prometheus collectors.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/schemacheck/pkg/domain"
)

const namespace = "schemacheck"

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry    *prometheus.Registry
	validations *prometheus.CounterVec
	violations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	rejections  *prometheus.CounterVec
}

// New creates the collectors, registered alongside the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total number of validations by engine and result",
			},
			[]string{"engine", "result"},
		),
		violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "violations_total",
				Help:      "Total number of reported violations by kind",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "validation_duration_seconds",
				Help:      "Duration of validations",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"engine"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejections_total",
				Help:      "Total number of submissions refused before validation",
			},
			[]string{"reason"},
		),
	}

	m.registry.MustRegister(
		m.validations, m.violations, m.duration, m.rejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Hooks records every report and rejection the checker emits.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnValidated: func(_ context.Context, e *domain.ValidationEvent) {
			m.Observe(e.Report)
		},
		OnRejected: func(_ context.Context, e *domain.RejectionEvent) {
			m.rejections.WithLabelValues(e.Reason).Inc()
		},
	}
}

// Observe records one report.
func (m *Metrics) Observe(r *domain.Report) {
	result := "valid"
	if !r.Valid {
		result = "invalid"
	}
	engine := string(r.Engine)
	m.validations.WithLabelValues(engine, result).Inc()
	m.duration.WithLabelValues(engine).Observe(r.Duration.Seconds())
	for kind, n := range r.CountByKind() {
		m.violations.WithLabelValues(string(kind)).Add(float64(n))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
