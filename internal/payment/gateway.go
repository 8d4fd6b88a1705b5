package payment

import (
	"context"
	"log/slog"
)

// Gateway dispatches payment operations to the registered providers.
type Gateway struct {
	registry Registry
	log      *slog.Logger
}

// NewGateway returns a Gateway over registry.
func NewGateway(registry Registry, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{registry: registry, log: log}
}

// InitiatePayment starts a payment.  It never returns an error: unknown
// methods, missing credentials and provider failures all come back as a
// Result with Success false and a message.
func (g *Gateway) InitiatePayment(ctx context.Context, req Request) Result {
	p, err := Lookup(g.registry, req.Method)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	if !p.Configured() {
		return Result{Success: false, Message: p.Label() + " is not configured"}
	}
	res, err := p.Initiate(ctx, req)
	if err != nil {
		g.log.Warn("payment initiation failed", "method", req.Method, "order_id", req.OrderID, "err", err)
		return Result{Success: false, Message: err.Error()}
	}
	g.log.Info("payment initiated", "method", req.Method, "order_id", req.OrderID, "transaction_id", res.TransactionID)
	return res
}

// CheckPaymentStatus reports the state of a transaction.  Cash is always
// settled; mobile-money transactions are reported pending.
func (g *Gateway) CheckPaymentStatus(ctx context.Context, method, transactionID string) (Status, error) {
	p, err := Lookup(g.registry, method)
	if err != nil {
		return Status{}, err
	}
	return p.Status(ctx, transactionID)
}

// ProcessWebhook normalizes a provider callback.  Unknown methods and
// payloads without a transaction id yield Success false.
func (g *Gateway) ProcessWebhook(ctx context.Context, method string, payload map[string]any) WebhookResult {
	p, err := Lookup(g.registry, method)
	if err != nil {
		return WebhookResult{Success: false}
	}
	res, err := p.Webhook(ctx, payload)
	if err != nil {
		g.log.Warn("payment webhook rejected", "method", method, "err", err)
		return WebhookResult{Success: false}
	}
	if res.Success {
		g.log.Info("payment webhook received", "method", method, "transaction_id", res.TransactionID)
	}
	return res
}

// MethodInfo describes a payment method offered to customers.
type MethodInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Methods lists the enabled and configured methods in display order.
func (g *Gateway) Methods() []MethodInfo {
	var out []MethodInfo
	for _, p := range g.registry.sorted() {
		if p.Enabled() && p.Configured() {
			out = append(out, MethodInfo{ID: p.Method(), Label: p.Label()})
		}
	}
	return out
}
