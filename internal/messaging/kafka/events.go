package kafka

import "time"

// EventType определяет тип события жизненного цикла.
type EventType string

const (
	// Order события
	EventTypeOrderCreated EventType = "order.created"
	EventTypeOrderUpdated EventType = "order.updated"
	EventTypeOrderDeleted EventType = "order.deleted"

	// Product события
	EventTypeProductCreated EventType = "product.created"
	EventTypeProductUpdated EventType = "product.updated"
	EventTypeProductDeleted EventType = "product.deleted"
)

// Topics для Kafka
const (
	TopicOrderEvents   = "orders.order.events"
	TopicProductEvents = "orders.product.events"
)

// OrderEvent представляет событие заказа.
type OrderEvent struct {
	EventID   string         `json:"event_id"`
	EventType EventType      `json:"event_type"`
	OrderID   int64          `json:"order_id"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ProductEvent представляет событие товара.
type ProductEvent struct {
	EventID   string         `json:"event_id"`
	EventType EventType      `json:"event_type"`
	ProductID int64          `json:"product_id"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
