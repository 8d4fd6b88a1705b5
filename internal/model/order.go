package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the kitchen-side progress of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order states.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// Active reports whether an order in state s still occupies its table.
func (s OrderStatus) Active() bool {
	return s.Valid() && !s.Terminal()
}

// CanTransition reports whether an order may move from s to next.  Active
// states may move to any state; terminal states only accept a repeat of
// themselves so that re-submitting "completed" stays idempotent.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	if s.Terminal() {
		return s == next
	}
	return true
}

// PaymentStatus tracks whether the order has been settled.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Valid reports whether s is a known payment state.
func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid
}

// Order is a customer's request for items at a table.  Total is fixed at
// creation time from the item snapshots and never recomputed.
type Order struct {
	ID            uint64          `json:"id"`
	TableID       uint64          `json:"tableId"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone *string         `json:"customerPhone,omitempty"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	PaymentMethod string          `json:"paymentMethod"`
	Total         decimal.Decimal `json:"total"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
	DeletedAt     *time.Time      `json:"deletedAt,omitempty"`
}

// OrderItem is one cart line of an order.  Price is the unit price at the
// time the order was placed, independent of the live product price.
type OrderItem struct {
	ID          uint64          `json:"id"`
	OrderID     uint64          `json:"orderId"`
	ProductID   uint64          `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Notes       *string         `json:"notes,omitempty"`
}

// LineTotal returns price × quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderWithItems bundles an order with its items.
type OrderWithItems struct {
	Order
	Items []OrderItem `json:"orderItems"`
}

// SumItems returns Σ(price × quantity) over items.
func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// OrderPatch carries the optional fields of a staff order update.  Nil
// fields are left untouched.  Total is deliberately absent.
type OrderPatch struct {
	Status        *OrderStatus   `json:"status,omitempty"`
	PaymentStatus *PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentMethod *string        `json:"paymentMethod,omitempty"`
	CustomerName  *string        `json:"customerName,omitempty"`
	CustomerPhone *string        `json:"customerPhone,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
	CompletedAt   *time.Time     `json:"-"`
}

// Apply copies the non-nil fields of p onto o.
func (p OrderPatch) Apply(o *Order) {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		o.PaymentStatus = *p.PaymentStatus
	}
	if p.PaymentMethod != nil {
		o.PaymentMethod = *p.PaymentMethod
	}
	if p.CustomerName != nil {
		o.CustomerName = *p.CustomerName
	}
	if p.CustomerPhone != nil {
		o.CustomerPhone = p.CustomerPhone
	}
	if p.Notes != nil {
		o.Notes = p.Notes
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		o.CompletedAt = &t
	}
}
