package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestResponderMetricsCountsByStageAndOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewResponderMetrics(reg)
	m.Observe("groq", OutcomeTimeout, 20*time.Second)
	m.Observe("fallback", OutcomeAnswered, time.Millisecond)
	m.Observe("fallback", OutcomeAnswered, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	mf := findMetricFamily(mfs, "responder_stage_total")
	if mf == nil {
		t.Fatal("responder_stage_total not exported")
	}

	counts := map[string]float64{}
	for _, metric := range mf.GetMetric() {
		counts[labelValue(metric.GetLabel(), "stage")+"/"+labelValue(metric.GetLabel(), "outcome")] = metric.GetCounter().GetValue()
	}
	if counts["groq/timeout"] != 1 || counts["fallback/answered"] != 2 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestReminderMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReminderMetrics(reg)
	m.IncSent("daily")
	m.IncSent("daily")
	m.IncFailed("checkup")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "reminders_sent_total", "kind", "daily"); err != nil || got != 2 {
		t.Fatalf("expected daily=2, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "reminders_failed_total", "kind", "checkup"); err != nil || got != 1 {
		t.Fatalf("expected checkup failures=1, got %f err=%v", got, err)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewResponderMetrics(nil).Observe("groq", OutcomeAnswered, time.Second)
	NewReminderMetrics(nil).IncSent("daily")
	var m *ReminderMetrics
	m.IncFailed("daily")
}

func labelValue(labels []*dto.LabelPair, name string) string {
	for _, label := range labels {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}
