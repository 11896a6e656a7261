package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCheckoutMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.IncIntent("created")
	m.IncIntent("created")
	m.IncIntent("updated")
	m.IncOrderCreated()
	m.IncWebhookEvent("applied")
	m.IncWebhookEvent("stale")
	m.ObserveDuration("reconcile_intent", 25*time.Millisecond)

	if got := testutil.ToFloat64(m.intents.WithLabelValues("created")); got != 2 {
		t.Fatalf("expected 2 created intents, got %v", got)
	}
	if got := testutil.ToFloat64(m.ordersCreated); got != 1 {
		t.Fatalf("expected 1 order, got %v", got)
	}
	if got := testutil.ToFloat64(m.webhookEvents.WithLabelValues("stale")); got != 1 {
		t.Fatalf("expected 1 stale event, got %v", got)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	var m *CheckoutMetrics
	m.IncIntent("created")
	m.IncOrderCreated()
	m.IncWebhookEvent("applied")
	m.ObserveDuration("create_order", time.Second)

	empty := NewCheckoutMetrics(nil)
	empty.IncOrderCreated()
}
