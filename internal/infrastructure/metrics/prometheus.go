package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusExporter exports metrics to Prometheus format.
type PrometheusExporter struct {
	decisions *prometheus.CounterVec
	scopes    *prometheus.CounterVec
}

// NewPrometheusExporter creates a new Prometheus exporter.
func NewPrometheusExporter() *PrometheusExporter {
	return &PrometheusExporter{
		decisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monban_permission_decisions_total",
				Help: "Total number of permission check decisions",
			},
			[]string{"permission", "result"},
		),
		scopes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monban_scopes_built_total",
				Help: "Total number of visibility scopes built",
			},
			[]string{"kind", "mode"},
		),
	}
}

// RecordDecision records a permission decision in Prometheus.
func (e *PrometheusExporter) RecordDecision(permission string, passed bool) {
	result := "denied"
	if passed {
		result = "passed"
	}
	e.decisions.WithLabelValues(permission, result).Inc()
}

// RecordScope records a scope construction in Prometheus.
func (e *PrometheusExporter) RecordScope(kind string, admin bool) {
	mode := "restricted"
	if admin {
		mode = "unrestricted"
	}
	e.scopes.WithLabelValues(kind, mode).Inc()
}
