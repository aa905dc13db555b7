package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCartMetricsExportCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCartMetrics(reg)

	metrics.IncUnresolvedPrice("fingerlings")
	metrics.IncUnresolvedPrice("")
	metrics.IncSkippedLine()
	metrics.IncPersistFailure("cartItems")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "cart_unresolved_prices", "category", "fingerlings"); err != nil {
		t.Fatalf("fetch unresolved: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unresolved=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "cart_unresolved_prices", "category", "unknown"); err != nil {
		t.Fatalf("fetch unknown-category unresolved: %v", err)
	} else if got != 1 {
		t.Fatalf("expected empty category to normalize to unknown, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "cart_persist_failures", "key", "cartItems"); err != nil {
		t.Fatalf("fetch persist failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected persist failures=1, got %f", got)
	}
}

func TestCheckoutMetricsExport(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)

	metrics.IncSubmission("success")
	metrics.ObserveSubmissionDuration(120 * time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "checkout_submissions", "outcome", "success"); err != nil {
		t.Fatalf("fetch submissions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected submissions=1, got %f", got)
	}
}

func TestNilReceiversAreSafe(t *testing.T) {
	var cart *CartMetrics
	cart.IncUnresolvedPrice("x")
	cart.IncSkippedLine()
	cart.IncPersistFailure("y")

	var checkout *CheckoutMetrics
	checkout.IncSubmission("success")
	checkout.ObserveSubmissionDuration(time.Second)

	empty := NewCartMetrics(nil)
	empty.IncSkippedLine()
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
	return 0, fmt.Errorf("metric %q with %s=%s not found", name, label, value)
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
