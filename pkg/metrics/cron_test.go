package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsCountsResultsAndDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	metrics.ObserveDuration("medication-reminders", 250*time.Millisecond)
	metrics.IncSuccess("medication-reminders")
	metrics.IncSuccess("medication-reminders")
	metrics.IncFailure("weekly-report")
	metrics.IncSkipped("weekly-report")
	metrics.IncSuccess("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	cases := []struct {
		job, result string
		want        float64
	}{
		{"medication-reminders", JobSucceeded, 2},
		{"weekly-report", JobFailed, 1},
		{"weekly-report", JobSkipped, 1},
		{"unknown", JobSucceeded, 1},
	}
	for _, tc := range cases {
		got, err := fetchRunCount(mfs, tc.job, tc.result)
		if err != nil {
			t.Fatalf("fetch %s/%s: %v", tc.job, tc.result, err)
		}
		if got != tc.want {
			t.Fatalf("%s/%s: expected %v, got %v", tc.job, tc.result, tc.want, got)
		}
	}

	if got, err := fetchHistogramSum(mfs, "cron_job_duration_seconds", "job", "medication-reminders"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilCronMetricsIsNoop(t *testing.T) {
	var m *CronJobMetrics
	m.IncSuccess("job")
	m.ObserveDuration("job", time.Second)
	NewCronJobMetrics(nil).IncSkipped("job")
}

func fetchRunCount(mfs []*dto.MetricFamily, job, result string) (float64, error) {
	mf := findMetricFamily(mfs, "cron_job_runs_total")
	if mf == nil {
		return 0, fmt.Errorf("cron_job_runs_total not found")
	}
	for _, metric := range mf.GetMetric() {
		if labelValue(metric.GetLabel(), "job") == job && labelValue(metric.GetLabel(), "result") == result {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("no series for job=%s result=%s", job, result)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if labelValue(metric.GetLabel(), label) == value {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if labelValue(metric.GetLabel(), label) == value {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}
