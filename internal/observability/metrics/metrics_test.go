package metrics

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("driver", "kafka"),
		attribute.String("product_id", "456"),
		attribute.String("result", "sent"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "driver" && attrs[1].Key != "driver" {
		t.Fatalf("expected driver to be retained")
	}
	if attrs[0].Key != "result" && attrs[1].Key != "result" {
		t.Fatalf("expected result to be retained")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordStockEvent(context.Background(), "stock.changed", "memory")
	m.RecordAlertEmail(context.Background(), "sent")
	m.RecordSale(context.Background(), "taobao")
}
