package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage outcomes recorded by the response pipeline.
const (
	OutcomeAnswered = "answered"
	OutcomeNoAnswer = "no_answer"
	OutcomeTimeout  = "timeout"
)

// ResponderMetrics tracks which pipeline stage produced replies.
type ResponderMetrics struct {
	attempts *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewResponderMetrics registers the response pipeline metrics on the provided registerer.
func NewResponderMetrics(reg prometheus.Registerer) *ResponderMetrics {
	if reg == nil {
		return &ResponderMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "responder_stage_total",
		Help: "Response pipeline stage attempts by outcome.",
	}, []string{"stage", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "responder_stage_duration_seconds",
		Help:    "Time spent in each response pipeline stage.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
	}, []string{"stage"})
	reg.MustRegister(attempts, latency)
	return &ResponderMetrics{attempts: attempts, latency: latency}
}

// Observe records one stage attempt.
func (m *ResponderMetrics) Observe(stage, outcome string, took time.Duration) {
	if m == nil || m.attempts == nil {
		return
	}
	stage = normalizeLabel(stage)
	m.attempts.WithLabelValues(stage, outcome).Inc()
	m.latency.WithLabelValues(stage).Observe(took.Seconds())
}
