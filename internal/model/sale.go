package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is the accounting record written once an order is completed and
// paid.  At most one non-deleted sale exists per order.
type Sale struct {
	ID            uint64          `json:"id"`
	OrderID       *uint64         `json:"orderId,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"createdAt"`
	DeletedAt     *time.Time      `json:"deletedAt,omitempty"`
}

// DailyStats summarises one calendar day.
type DailyStats struct {
	TotalSales    decimal.Decimal `json:"totalSales"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Profit        decimal.Decimal `json:"profit"`
	OrderCount    int             `json:"orderCount"`
}

// DayStats is one row of the weekly overview.
type DayStats struct {
	Day    string          `json:"day"`
	Date   time.Time       `json:"date"`
	Sales  decimal.Decimal `json:"sales"`
	Orders int             `json:"orders"`
}
