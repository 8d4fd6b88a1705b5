package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/iliyamo/restaurant-pos/internal/config"
)

// MoovMoney calls the Moov Money payment API with a bearer token.
type MoovMoney struct {
	cfg  config.ProviderConfig
	opts Options
}

func NewMoovMoney(cfg config.ProviderConfig, opts Options) *MoovMoney {
	return &MoovMoney{cfg: cfg, opts: opts}
}

func (p *MoovMoney) Method() string   { return config.MethodMoovMoney }
func (p *MoovMoney) Label() string    { return "Moov Money" }
func (p *MoovMoney) Enabled() bool    { return p.cfg.Enabled }
func (p *MoovMoney) Configured() bool { return p.cfg.Enabled && p.cfg.APIKey != "" }

func (p *MoovMoney) Initiate(ctx context.Context, req Request) (Result, error) {
	now := p.opts.now()
	if !p.opts.Production {
		return Result{
			Success:       true,
			TransactionID: fmt.Sprintf("MOOV_%d", now.UnixMilli()),
			Message:       "Moov Money payment initiated (simulation)",
			USSDCode:      "#155#",
		}, nil
	}

	orderID := req.OrderID
	if orderID == "" {
		orderID = fmt.Sprintf("ORDER_%d", now.UnixMilli())
	}
	desc := req.Description
	if desc == "" {
		desc = "Restaurant payment"
	}
	body := map[string]any{
		"merchantId":    p.cfg.MerchantID,
		"amount":        json.Number(req.Amount.String()),
		"currency":      p.opts.currency(req),
		"orderId":       orderID,
		"customerPhone": req.CustomerPhone,
		"description":   desc,
	}
	var out struct {
		Success       bool   `json:"success"`
		TransactionID string `json:"transactionId"`
		USSDCode      string `json:"ussdCode"`
		Message       string `json:"message"`
	}
	if _, _, err := call(ctx, p.opts.client(), http.MethodPost, p.cfg.BaseURL+"/payment/init", bearer(p.cfg.APIKey), body, &out); err != nil {
		return Result{}, err
	}
	if !out.Success {
		if out.Message != "" {
			return Result{}, errors.New(out.Message)
		}
		return Result{}, errors.New("moov money: payment initialisation failed")
	}
	return Result{
		Success:       true,
		TransactionID: out.TransactionID,
		Message:       "Moov Money payment initiated",
		USSDCode:      out.USSDCode,
	}, nil
}

func (p *MoovMoney) Status(_ context.Context, transactionID string) (Status, error) {
	return pendingStatus(p.opts, p.Method(), transactionID), nil
}

func (p *MoovMoney) Webhook(_ context.Context, payload map[string]any) (WebhookResult, error) {
	return webhookID(payload, "transactionId"), nil
}
