package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestWebhookMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)

	m.IncOutcome(OutcomeRecorded)
	m.IncOutcome(OutcomeRecorded)
	m.IncOutcome(OutcomeRejected)
	m.IncStepFailure(StepLegacy)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got := counterValue(mfs, "webhook_events_total", "outcome", OutcomeRecorded); got != 2 {
		t.Fatalf("expected recorded=2, got %f", got)
	}
	if got := counterValue(mfs, "webhook_events_total", "outcome", OutcomeRejected); got != 1 {
		t.Fatalf("expected rejected=1, got %f", got)
	}
	if got := counterValue(mfs, "fulfillment_step_failures_total", "step", StepLegacy); got != 1 {
		t.Fatalf("expected legacy failures=1, got %f", got)
	}
}

func TestWebhookMetricsNilSafe(t *testing.T) {
	var m *WebhookMetrics
	m.IncOutcome(OutcomeFailed)
	m.IncStepFailure(StepPartner)

	NewWebhookMetrics(nil).IncOutcome(OutcomeIgnored)
}

func counterValue(mfs []*dto.MetricFamily, name, label, value string) float64 {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return -1
}
