package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Webhook outcomes, one per terminal state of a delivery.
const (
	OutcomeRejected  = "rejected"
	OutcomeRecorded  = "recorded"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
)

// Fulfillment steps that may fail after the sale is recorded.
const (
	StepPartner = "partner"
	StepLegacy  = "legacy"
)

// WebhookMetrics counts webhook deliveries and the follow-up writes that need reconciliation.
// A nil *WebhookMetrics is valid and records nothing.
type WebhookMetrics struct {
	events   *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Payment webhook deliveries by outcome.",
	}, []string{"outcome"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_step_failures_total",
		Help: "Writes that failed after the sale was recorded.",
	}, []string{"step"})
	reg.MustRegister(events, failures)
	return &WebhookMetrics{
		events:   events,
		failures: failures,
	}
}

func (m *WebhookMetrics) IncOutcome(outcome string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(outcome).Inc()
}

func (m *WebhookMetrics) IncStepFailure(step string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(step).Inc()
}
