package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// ReceiptLine is one printed line of a receipt.
type ReceiptLine struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// Receipt is the customer-facing summary of a paid order.
type Receipt struct {
	OrderID       uint64          `json:"orderId"`
	TableNumber   int             `json:"tableNumber"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	Items         []ReceiptLine   `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentDate   time.Time       `json:"paymentDate"`
}

// Receipt builds the receipt of a paid order.  Unpaid orders yield
// ErrNotPaid.
func (s *Service) Receipt(ctx context.Context, id uint64) (*Receipt, error) {
	o, err := s.store.GetOrderWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus != model.PaymentPaid {
		return nil, ErrNotPaid
	}

	r := &Receipt{
		OrderID:       o.ID,
		CustomerName:  o.CustomerName,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
		PaymentDate:   o.CreatedAt,
	}
	if r.CustomerName == "" {
		r.CustomerName = "Client"
	}
	if o.CustomerPhone != nil {
		r.CustomerPhone = *o.CustomerPhone
	}
	if o.CompletedAt != nil {
		r.PaymentDate = *o.CompletedAt
	}
	if t, err := s.store.GetTable(ctx, o.TableID); err == nil {
		r.TableNumber = t.Number
	}
	r.Items = make([]ReceiptLine, 0, len(o.Items))
	for _, it := range o.Items {
		r.Items = append(r.Items, ReceiptLine{
			Name:     it.ProductName,
			Quantity: it.Quantity,
			Price:    it.Price,
			Total:    it.LineTotal(),
		})
	}
	r.Subtotal = model.SumItems(o.Items)
	return r, nil
}
