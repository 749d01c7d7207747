package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStorefrontMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefrontMetrics(reg)

	m.ObserveCacheLookup(true)
	m.ObserveCacheLookup(false)
	m.ObserveCacheLookup(false)
	m.IncOrdersCreated("checkout", 1)
	m.IncOrdersCreated("demo", 6)
	m.IncStatusAdvance()
	m.ObserveRefresh([]string{"grid", "rows"}, 3*time.Millisecond)
	m.IncStorageFailure("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	checks := []struct {
		name, label, value string
		want               float64
	}{
		{"filter_cache_lookups_total", "result", "hit", 1},
		{"filter_cache_lookups_total", "result", "miss", 2},
		{"orders_created_total", "source", "demo", 6},
		{"refresh_passes_total", "region", "rows", 1},
		{"state_storage_failures_total", "op", "unknown", 1},
	}
	for _, c := range checks {
		got, err := fetchCounterValue(mfs, c.name, c.label, c.value)
		if err != nil {
			t.Fatalf("fetch %s: %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s{%s=%s} expected %v, got %v", c.name, c.label, c.value, c.want, got)
		}
	}

	if sum := fetchHistogramSum(mfs, "refresh_pass_duration_seconds"); sum <= 0 {
		t.Fatalf("expected refresh duration sum > 0, got %f", sum)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *StorefrontMetrics
	m.ObserveCacheLookup(true)
	m.IncOrdersCreated("checkout", 1)
	m.IncStatusAdvance()
	m.ObserveRefresh([]string{"grid"}, time.Millisecond)
	m.IncStorageFailure("save")

	unregistered := NewStorefrontMetrics(nil)
	unregistered.ObserveCacheLookup(false)
	unregistered.ObserveRefresh([]string{"kpis"}, time.Millisecond)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string) float64 {
	mf := findMetricFamily(mfs, name)
	if mf == nil || len(mf.GetMetric()) == 0 {
		return 0
	}
	return mf.GetMetric()[0].GetHistogram().GetSampleSum()
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
