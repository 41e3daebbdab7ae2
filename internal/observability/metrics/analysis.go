package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kirillkom/document-insight/internal/core/domain"
)

// AnalysisMetrics records analysis pipeline outcomes.
type AnalysisMetrics struct {
	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	modelCallsTotal *prometheus.CounterVec
}

func NewAnalysisMetrics(service string, registerer prometheus.Registerer) *AnalysisMetrics {
	factory := promauto.With(registerer)
	constLabels := prometheus.Labels{"service": service}

	return &AnalysisMetrics{
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "analysis",
			Name:        "runs_total",
			Help:        "Total document analyses by file kind and outcome.",
			ConstLabels: constLabels,
		}, []string{"file_kind", "outcome"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "analysis",
			Name:        "duration_seconds",
			Help:        "Document analysis duration in seconds by outcome.",
			Buckets:     []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		modelCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "model",
			Name:        "calls_total",
			Help:        "Total vision model calls by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
	}
}

func (m *AnalysisMetrics) ObserveAnalysis(kind domain.FileKind, outcome string, duration time.Duration) {
	if kind == "" {
		kind = domain.FileKindUnknown
	}
	m.runsTotal.WithLabelValues(string(kind), outcome).Inc()
	m.runDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *AnalysisMetrics) ObserveModelCall(outcome string) {
	m.modelCallsTotal.WithLabelValues(outcome).Inc()
}
