package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/iliyamo/restaurant-pos/internal/config"
)

// OrangeMoney talks to the Orange Money web payment API with a bearer
// token.
type OrangeMoney struct {
	cfg  config.ProviderConfig
	opts Options
}

func NewOrangeMoney(cfg config.ProviderConfig, opts Options) *OrangeMoney {
	return &OrangeMoney{cfg: cfg, opts: opts}
}

func (p *OrangeMoney) Method() string   { return config.MethodOrangeMoney }
func (p *OrangeMoney) Label() string    { return "Orange Money" }
func (p *OrangeMoney) Enabled() bool    { return p.cfg.Enabled }
func (p *OrangeMoney) Configured() bool { return p.cfg.Enabled && p.cfg.APIKey != "" }

type orangeResponse struct {
	Status     string `json:"status"`
	PayToken   string `json:"pay_token"`
	PaymentURL string `json:"payment_url"`
	Message    string `json:"message"`
}

func (p *OrangeMoney) Initiate(ctx context.Context, req Request) (Result, error) {
	now := p.opts.now()
	if !p.opts.Production {
		return Result{
			Success:       true,
			TransactionID: fmt.Sprintf("OM_%d", now.UnixMilli()),
			Message:       "Orange Money payment initiated (simulation)",
			USSDCode:      "#144*1*1#",
		}, nil
	}

	orderID := req.OrderID
	if orderID == "" {
		orderID = fmt.Sprintf("ORDER_%d", now.UnixMilli())
	}
	body := map[string]any{
		"merchant_key": p.cfg.MerchantID,
		"currency":     p.opts.currency(req),
		"order_id":     orderID,
		"amount":       json.Number(req.Amount.String()),
		"return_url":   p.opts.PublicBaseURL + "/payment/success",
		"cancel_url":   p.opts.PublicBaseURL + "/payment/cancel",
		"notif_url":    p.cfg.WebhookURL,
		"lang":         "fr",
		"reference":    fmt.Sprintf("REF_%d", now.UnixMilli()),
	}
	var out orangeResponse
	if _, _, err := call(ctx, p.opts.client(), http.MethodPost, p.cfg.BaseURL+"/webpayment", bearer(p.cfg.APIKey), body, &out); err != nil {
		return Result{}, err
	}
	if out.Status != "SUCCESS" {
		if out.Message != "" {
			return Result{}, errors.New(out.Message)
		}
		return Result{}, errors.New("orange money: payment initialisation failed")
	}
	return Result{
		Success:       true,
		TransactionID: out.PayToken,
		Message:       "Orange Money payment initiated",
		RedirectURL:   out.PaymentURL,
	}, nil
}

func (p *OrangeMoney) Status(_ context.Context, transactionID string) (Status, error) {
	return pendingStatus(p.opts, p.Method(), transactionID), nil
}

func (p *OrangeMoney) Webhook(_ context.Context, payload map[string]any) (WebhookResult, error) {
	return webhookID(payload, "pay_token"), nil
}
