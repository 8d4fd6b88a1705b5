package payment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/config"
)

// MTNMoMo uses the MTN MoMo collection API: a basic-auth token exchange
// followed by a bearer request-to-pay.
type MTNMoMo struct {
	cfg   config.ProviderConfig
	opts  Options
	newID func() string
}

func NewMTNMoMo(cfg config.ProviderConfig, opts Options) *MTNMoMo {
	return &MTNMoMo{cfg: cfg, opts: opts, newID: uuid.NewString}
}

func (p *MTNMoMo) Method() string   { return config.MethodMTNMoMo }
func (p *MTNMoMo) Label() string    { return "MTN Mobile Money" }
func (p *MTNMoMo) Enabled() bool    { return p.cfg.Enabled }
func (p *MTNMoMo) Configured() bool { return p.cfg.Enabled && p.cfg.SubscriptionKey != "" }

var nonDigits = regexp.MustCompile(`\D`)

// defaultMSISDN is used when the customer left no phone number.
const defaultMSISDN = "22990000000"

func (p *MTNMoMo) headers() map[string]string {
	return map[string]string{
		"Ocp-Apim-Subscription-Key": p.cfg.SubscriptionKey,
		"X-Target-Environment":      p.cfg.TargetEnvironment,
	}
}

func (p *MTNMoMo) token(ctx context.Context) (string, error) {
	h := p.headers()
	h["Authorization"] = "Basic " + base64.StdEncoding.EncodeToString([]byte(p.cfg.APIUserID+":"+p.cfg.APIKey))
	var out struct {
		AccessToken string `json:"access_token"`
	}
	status, _, err := call(ctx, p.opts.client(), http.MethodPost, p.cfg.BaseURL+"/collection/token/", h, nil, &out)
	if err != nil {
		return "", err
	}
	if status/100 != 2 || out.AccessToken == "" {
		return "", fmt.Errorf("mtn momo: token request failed (%d)", status)
	}
	return out.AccessToken, nil
}

func (p *MTNMoMo) Initiate(ctx context.Context, req Request) (Result, error) {
	now := p.opts.now()
	if !p.opts.Production {
		return Result{
			Success:       true,
			TransactionID: fmt.Sprintf("MTN_%d", now.UnixMilli()),
			Message:       "MTN MoMo payment initiated (simulation)",
			USSDCode:      "*126#",
		}, nil
	}

	access, err := p.token(ctx)
	if err != nil {
		return Result{}, err
	}

	ref := p.newID()
	orderID := req.OrderID
	if orderID == "" {
		orderID = fmt.Sprintf("ORDER_%d", now.UnixMilli())
	}
	party := nonDigits.ReplaceAllString(req.CustomerPhone, "")
	if party == "" {
		party = defaultMSISDN
	}
	message := req.Description
	if message == "" {
		message = "Restaurant payment"
	}
	body := map[string]any{
		"amount":     req.Amount.String(),
		"currency":   p.opts.currency(req),
		"externalId": orderID,
		"payer": map[string]string{
			"partyIdType": "MSISDN",
			"partyId":     party,
		},
		"payerMessage": message,
		"payeeNote":    "Order " + req.OrderID,
	}
	h := p.headers()
	h["Authorization"] = "Bearer " + access
	h["X-Reference-Id"] = ref
	if p.cfg.WebhookURL != "" {
		h["X-Callback-Url"] = p.cfg.WebhookURL
	}
	status, header, err := call(ctx, p.opts.client(), http.MethodPost, p.cfg.BaseURL+"/collection/v1_0/requesttopay", h, body, nil)
	if err != nil {
		return Result{}, err
	}
	if status/100 != 2 {
		return Result{}, errors.New("mtn momo: request to pay failed")
	}
	if echoed := header.Get("X-Reference-Id"); echoed != "" {
		ref = echoed
	}
	return Result{
		Success:       true,
		TransactionID: ref,
		Message:       "MTN MoMo payment initiated",
	}, nil
}

func (p *MTNMoMo) Status(_ context.Context, transactionID string) (Status, error) {
	return pendingStatus(p.opts, p.Method(), transactionID), nil
}

func (p *MTNMoMo) Webhook(_ context.Context, payload map[string]any) (WebhookResult, error) {
	return webhookID(payload, "referenceId"), nil
}
