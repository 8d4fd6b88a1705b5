// Package payment presents one initiate/status/webhook contract over
// cash and the mobile-money providers.  Provider failures never escape
// the Gateway: they are turned into a Result with Success false.
package payment

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedMethod is returned by Lookup for unknown method names.
var ErrUnsupportedMethod = errors.New("unsupported payment method")

// Request describes a payment to start.
type Request struct {
	Method        string          `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty"`
	OrderID       string          `json:"orderId,omitempty"`
	CustomerName  string          `json:"customerName,omitempty"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// Result is the normalized outcome of InitiatePayment.
type Result struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
	Message       string `json:"message"`
	RedirectURL   string `json:"redirectUrl,omitempty"`
	USSDCode      string `json:"ussdCode,omitempty"`
	QRCode        string `json:"qrCode,omitempty"`
}

// Transaction states reported by CheckPaymentStatus.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Status is the state of one transaction.
type Status struct {
	TransactionID string          `json:"transactionId"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
}

// WebhookResult is a provider callback reduced to the transaction it
// concerns.
type WebhookResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
}

// Provider is one payment method.
type Provider interface {
	// Method is the identifier used in requests, e.g. "orange_money".
	Method() string
	// Label is the human name shown to customers.
	Label() string
	// Enabled reports whether the method is offered to customers.
	Enabled() bool
	// Configured reports whether the credentials needed to take a
	// payment are present.
	Configured() bool
	Initiate(ctx context.Context, req Request) (Result, error)
	Status(ctx context.Context, transactionID string) (Status, error)
	Webhook(ctx context.Context, payload map[string]any) (WebhookResult, error)
}

// Options are shared by every provider.
type Options struct {
	Production    bool
	PublicBaseURL string
	Currency      string
	HTTP          *http.Client
	Now           func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) client() *http.Client {
	if o.HTTP != nil {
		return o.HTTP
	}
	return http.DefaultClient
}

func (o Options) currency(req Request) string {
	if req.Currency != "" {
		return req.Currency
	}
	if o.Currency != "" {
		return o.Currency
	}
	return "XOF"
}

// pendingStatus is the status reported for mobile-money transactions.
// The providers are not polled, so every transaction stays pending until
// its webhook arrives.
func pendingStatus(o Options, method, transactionID string) Status {
	return Status{
		TransactionID: transactionID,
		Status:        StatusPending,
		Amount:        decimal.Zero,
		Currency:      o.currency(Request{}),
		PaymentMethod: method,
		CreatedAt:     o.now(),
	}
}

func webhookID(payload map[string]any, key string) WebhookResult {
	switch v := payload[key].(type) {
	case string:
		if v != "" {
			return WebhookResult{Success: true, TransactionID: v}
		}
	case float64:
		return WebhookResult{Success: true, TransactionID: decimal.NewFromFloat(v).String()}
	}
	return WebhookResult{}
}
