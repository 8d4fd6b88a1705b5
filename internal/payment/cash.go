package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/config"
)

// Cash settles immediately at the counter.  It needs no credentials and
// makes no network call.
type Cash struct {
	enabled bool
	opts    Options
}

// NewCash returns the cash provider.  enabled only controls whether the
// method is listed to customers.
func NewCash(enabled bool, opts Options) *Cash { return &Cash{enabled: enabled, opts: opts} }

func (c *Cash) Method() string   { return config.MethodCash }
func (c *Cash) Label() string    { return "Cash" }
func (c *Cash) Enabled() bool    { return c.enabled }
func (c *Cash) Configured() bool { return true }

func (c *Cash) Initiate(_ context.Context, _ Request) (Result, error) {
	return Result{
		Success:       true,
		TransactionID: fmt.Sprintf("CASH_%d", c.opts.now().UnixMilli()),
		Message:       "Cash payment confirmed",
	}, nil
}

func (c *Cash) Status(_ context.Context, transactionID string) (Status, error) {
	now := c.opts.now()
	return Status{
		TransactionID: transactionID,
		Status:        StatusSuccess,
		Amount:        decimal.Zero,
		Currency:      c.opts.currency(Request{}),
		PaymentMethod: config.MethodCash,
		CreatedAt:     now,
		CompletedAt:   &now,
	}, nil
}

// Webhook is meaningless for cash; there is no provider to call back.
func (c *Cash) Webhook(context.Context, map[string]any) (WebhookResult, error) {
	return WebhookResult{}, nil
}
