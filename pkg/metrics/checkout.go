package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records counters for the basket/order/payment pipeline.
type CheckoutMetrics struct {
	duration      *prometheus.HistogramVec
	intents       *prometheus.CounterVec
	ordersCreated prometheus.Counter
	webhookEvents *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_operation_duration_seconds",
		Help:    "Duration of checkout core operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	intents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_intents_total",
		Help: "Payment intents created or updated at the gateway.",
	}, []string{"action"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders persisted from checkout submissions.",
	})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Gateway webhook events by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, intents, ordersCreated, webhookEvents)
	return &CheckoutMetrics{
		duration:      duration,
		intents:       intents,
		ordersCreated: ordersCreated,
		webhookEvents: webhookEvents,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *CheckoutMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(duration.Seconds())
}

// IncIntent counts a gateway intent action ("created" or "updated").
func (m *CheckoutMetrics) IncIntent(action string) {
	if m == nil || m.intents == nil {
		return
	}
	m.intents.WithLabelValues(action).Inc()
}

// IncOrderCreated counts a persisted order.
func (m *CheckoutMetrics) IncOrderCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncWebhookEvent counts a webhook event by outcome
// ("applied", "duplicate", "ignored", "stale").
func (m *CheckoutMetrics) IncWebhookEvent(outcome string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(outcome).Inc()
}
