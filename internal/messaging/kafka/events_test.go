package kafka

import (
	"encoding/json"
	"testing"
	"time"
)

func TestOrderEvent_JSONShape(t *testing.T) {
	event := OrderEvent{
		EventID:   "evt-1",
		EventType: EventTypeOrderDeleted,
		OrderID:   42,
		Timestamp: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded["event_type"] != "order.deleted" {
		t.Fatalf("expected event_type order.deleted, got %v", decoded["event_type"])
	}
	if decoded["order_id"] != float64(42) {
		t.Fatalf("expected order_id 42, got %v", decoded["order_id"])
	}
	if _, ok := decoded["metadata"]; ok {
		t.Fatal("empty metadata must be omitted")
	}
}

func TestProductEvent_JSONShape(t *testing.T) {
	event := ProductEvent{
		EventID:   "evt-2",
		EventType: EventTypeProductCreated,
		ProductID: 7,
		Timestamp: time.Now().UTC(),
		Metadata:  map[string]any{"name": "Keyboard"},
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded ProductEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Metadata["name"] != "Keyboard" {
		t.Fatalf("expected metadata name, got %v", decoded.Metadata)
	}
}
