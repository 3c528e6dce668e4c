package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStorefrontExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefront(reg)

	m.IncCartMutation("add", "ok")
	m.IncCartMutation("add", "ok")
	m.IncCartMutation("add", "")
	m.IncRestore("cart", "corrupt")
	m.IncSessionTransition("login")
	m.IncCheckout("success")
	m.ObserveBackendCall("create_order", "ok", 150*time.Millisecond)
	m.SetBreakerState("backend", BreakerOpen)
	m.SetActiveClients(3)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "storefront_cart_mutations_total", "result", "ok"); err != nil {
		t.Fatalf("fetch cart mutations: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 ok mutations, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "storefront_cart_mutations_total", "result", "unknown"); err != nil {
		t.Fatalf("fetch normalized label: %v", err)
	} else if got != 1 {
		t.Fatalf("expected blank label normalized to unknown, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "storefront_restore_outcomes_total", "outcome", "corrupt"); err != nil || got != 1 {
		t.Fatalf("expected corrupt restore=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "storefront_checkout_outcomes_total", "outcome", "success"); err != nil || got != 1 {
		t.Fatalf("expected checkout success=1, got %f err=%v", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "storefront_backend_request_duration_seconds", "endpoint", "create_order"); err != nil || got <= 0 {
		t.Fatalf("expected backend duration > 0, got %f err=%v", got, err)
	}
	if got, err := fetchGaugeValue(mfs, "storefront_backend_breaker_state", "breaker", "backend"); err != nil || got != BreakerOpen {
		t.Fatalf("expected breaker open, got %f err=%v", got, err)
	}
}

func TestStorefrontNilSafe(t *testing.T) {
	var m *Storefront
	m.IncCartMutation("add", "ok")
	m.SetActiveClients(1)

	empty := NewStorefront(nil)
	empty.IncCheckout("failure")
	empty.ObserveBackendCall("me", "ok", time.Millisecond)
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

func fetchGaugeValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetGauge().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("gauge %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
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

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
