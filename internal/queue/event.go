// Package queue carries order events over RabbitMQ: the payload, the
// publisher used by the order service and the background consumer.
package queue

import (
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// OrderEventsQueue is the durable queue every order event is routed to.
const OrderEventsQueue = "order.events"

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is published when an order is created or its status changes.
// It contains enough information for downstream consumers to log or
// notify the customer without querying the primary database.
type OrderEvent struct {
	Type          string `json:"type"`
	OrderID       uint64 `json:"order_id"`
	TableID       uint64 `json:"table_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	Total         string `json:"total"`
	OccurredAt    string `json:"occurred_at"`
}

// NewOrderEvent builds an event of the given type from o.
func NewOrderEvent(typ string, o model.Order, at time.Time) OrderEvent {
	ev := OrderEvent{
		Type:          typ,
		OrderID:       o.ID,
		TableID:       o.TableID,
		CustomerName:  o.CustomerName,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Total:         o.Total.StringFixed(2),
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
	if o.CustomerPhone != nil {
		ev.CustomerPhone = *o.CustomerPhone
	}
	return ev
}
