// Package notify publishes order lifecycle events and, on the consumer
// side, turns them into customer emails. Both directions are best
// effort: a lost notification never fails the operation that caused it.
package notify

import (
	"encoding/json"
	"time"
)

const TopicOrderEvents = "order.events"

const (
	EventOrderConfirmed = "OrderConfirmed"
	EventOrderUnplaced  = "OrderUnplaced"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderItemSummary struct {
	ProductName string `json:"product_name"`
	Variant     string `json:"variant"`
	Qty         int    `json:"qty"`
}

type OrderConfirmedPayload struct {
	OrderID       string             `json:"order_id"`
	OrderNumber   string             `json:"order_number"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email,omitempty"`
	AmountPaise   int                `json:"amount_paise"`
	Items         []OrderItemSummary `json:"items,omitempty"`
}

type OrderUnplacedPayload struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}

// PartitionKey keeps all events for one order on one partition.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
