package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-123")
	ctx = log.WithBasketID(ctx, "basket-9")

	log.Error(ctx, "boom", errors.New("boom"))

	if !bytes.Contains(buf.Bytes(), []byte("\"request_id\"")) {
		t.Fatalf("expected request_id to be preserved; entry=%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("\"basket_id\"")) {
		t.Fatalf("expected basket_id to be preserved; entry=%s", buf.String())
	}
}

func TestLoggerWithOrderFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})
	ctx := log.WithOrderID(context.Background(), "order-1")
	ctx = log.WithPaymentReference(ctx, "pi_123")
	log.Info(ctx, "order.created")

	if !bytes.Contains(buf.Bytes(), []byte("\"payment_reference\":\"pi_123\"")) {
		t.Fatalf("expected payment_reference field; entry=%s", buf.String())
	}
}
