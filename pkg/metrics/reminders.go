package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReminderMetrics counts adherence reminders handed to delivery.
type ReminderMetrics struct {
	sent   *prometheus.CounterVec
	failed *prometheus.CounterVec
}

// NewReminderMetrics registers the reminder counters on the provided registerer.
func NewReminderMetrics(reg prometheus.Registerer) *ReminderMetrics {
	if reg == nil {
		return &ReminderMetrics{}
	}
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reminders_sent_total",
		Help: "Adherence reminders delivered by kind.",
	}, []string{"kind"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reminders_failed_total",
		Help: "Adherence reminders that failed delivery by kind.",
	}, []string{"kind"})
	reg.MustRegister(sent, failed)
	return &ReminderMetrics{sent: sent, failed: failed}
}

func (m *ReminderMetrics) IncSent(kind string) {
	if m == nil || m.sent == nil {
		return
	}
	m.sent.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *ReminderMetrics) IncFailed(kind string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(kind)).Inc()
}
