package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/config"
)

// Wave opens a checkout session; amounts are sent in minor units.
type Wave struct {
	cfg  config.ProviderConfig
	opts Options
}

func NewWave(cfg config.ProviderConfig, opts Options) *Wave {
	return &Wave{cfg: cfg, opts: opts}
}

func (p *Wave) Method() string   { return config.MethodWave }
func (p *Wave) Label() string    { return "Wave" }
func (p *Wave) Enabled() bool    { return p.cfg.Enabled }
func (p *Wave) Configured() bool { return p.cfg.Enabled && p.cfg.APIKey != "" }

// simulatedWaveQR is the placeholder QR code returned outside production.
var simulatedWaveQR = "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte("<svg>QR Code Wave</svg>"))

func (p *Wave) Initiate(ctx context.Context, req Request) (Result, error) {
	if !p.opts.Production {
		return Result{
			Success:       true,
			TransactionID: fmt.Sprintf("WAVE_%d", p.opts.now().UnixMilli()),
			Message:       "Wave payment initiated (simulation)",
			QRCode:        simulatedWaveQR,
		}, nil
	}

	minor := req.Amount.Mul(decimal.NewFromInt(100)).Round(0)
	body := map[string]any{
		"amount":      json.Number(minor.String()),
		"currency":    p.opts.currency(req),
		"success_url": p.opts.PublicBaseURL + "/payment/success",
		"cancel_url":  p.opts.PublicBaseURL + "/payment/cancel",
		"metadata": map[string]string{
			"orderId":      req.OrderID,
			"customerName": req.CustomerName,
		},
	}
	var out struct {
		ID            string `json:"id"`
		WaveLaunchURL string `json:"wave_launch_url"`
		QRCode        string `json:"qr_code"`
	}
	if _, _, err := call(ctx, p.opts.client(), http.MethodPost, p.cfg.BaseURL+"/v1/checkout/sessions", bearer(p.cfg.APIKey), body, &out); err != nil {
		return Result{}, err
	}
	if out.ID == "" {
		return Result{}, errors.New("wave: checkout session not created")
	}
	return Result{
		Success:       true,
		TransactionID: out.ID,
		Message:       "Wave payment initiated",
		RedirectURL:   out.WaveLaunchURL,
		QRCode:        out.QRCode,
	}, nil
}

func (p *Wave) Status(_ context.Context, transactionID string) (Status, error) {
	return pendingStatus(p.opts, p.Method(), transactionID), nil
}

func (p *Wave) Webhook(_ context.Context, payload map[string]any) (WebhookResult, error) {
	return webhookID(payload, "id"), nil
}
