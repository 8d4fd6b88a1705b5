package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/config"
)

var fixedNow = time.UnixMilli(1700000000123)

func devOptions() Options {
	return Options{PublicBaseURL: "https://pos.example", Currency: "XOF", Now: func() time.Time { return fixedNow }}
}

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func configured(base string) config.ProviderConfig {
	return config.ProviderConfig{
		Enabled: true, BaseURL: base, MerchantID: "m1", APIKey: "key",
		APIUserID: "user", SubscriptionKey: "sub", TargetEnvironment: "sandbox",
		WebhookURL: "https://pos.example/hook",
	}
}

func devGateway(cfg config.ProviderConfig) *Gateway {
	opts := devOptions()
	return NewGateway(NewRegistryOf(
		NewCash(true, opts),
		NewOrangeMoney(cfg, opts),
		NewMTNMoMo(cfg, opts),
		NewMoovMoney(cfg, opts),
		NewWave(cfg, opts),
	), quietLog())
}

// failingTransport fails the test on any network use.
type failingTransport struct{ t *testing.T }

func (f failingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	f.t.Errorf("unexpected network call to %s", r.URL)
	return nil, errors.New("network disabled")
}

func TestCashSucceedsWithoutNetwork(t *testing.T) {
	opts := devOptions()
	opts.Production = true
	opts.HTTP = &http.Client{Transport: failingTransport{t}}
	g := NewGateway(NewRegistryOf(NewCash(false, opts)), quietLog())

	res := g.InitiatePayment(context.Background(), Request{Method: "cash", Amount: decimal.NewFromInt(10)})
	if !res.Success || res.TransactionID != "CASH_1700000000123" {
		t.Fatalf("result = %+v", res)
	}
	st, err := g.CheckPaymentStatus(context.Background(), "cash", res.TransactionID)
	if err != nil || st.Status != StatusSuccess || st.CompletedAt == nil {
		t.Fatalf("status = %+v, err = %v", st, err)
	}
}

func TestUnconfiguredProviderFailsWithoutPanicking(t *testing.T) {
	cfg := configured("http://unused")
	cfg.APIKey = ""
	cfg.SubscriptionKey = ""
	g := devGateway(cfg)

	for _, m := range []string{"orange_money", "mtn_momo", "moov_money", "wave"} {
		res := g.InitiatePayment(context.Background(), Request{Method: m, Amount: decimal.NewFromInt(1)})
		if res.Success || !strings.Contains(res.Message, "not configured") {
			t.Fatalf("%s: result = %+v", m, res)
		}
	}
}

func TestUnknownMethod(t *testing.T) {
	g := devGateway(configured("http://unused"))
	res := g.InitiatePayment(context.Background(), Request{Method: "bitcoin"})
	if res.Success {
		t.Fatal("unknown method succeeded")
	}
	if _, err := g.CheckPaymentStatus(context.Background(), "bitcoin", "x"); !errors.Is(err, ErrUnsupportedMethod) {
		t.Fatalf("status err = %v", err)
	}
	if wh := g.ProcessWebhook(context.Background(), "bitcoin", map[string]any{"id": "x"}); wh.Success {
		t.Fatal("unknown webhook succeeded")
	}
}

func TestSimulationOutsideProduction(t *testing.T) {
	g := devGateway(configured("http://unused"))
	cases := []struct {
		method, id, ussd string
		qr               bool
	}{
		{"orange_money", "OM_1700000000123", "#144*1*1#", false},
		{"mtn_momo", "MTN_1700000000123", "*126#", false},
		{"moov_money", "MOOV_1700000000123", "#155#", false},
		{"wave", "WAVE_1700000000123", "", true},
	}
	for _, tc := range cases {
		res := g.InitiatePayment(context.Background(), Request{Method: tc.method, Amount: decimal.NewFromInt(5)})
		if !res.Success || res.TransactionID != tc.id || res.USSDCode != tc.ussd {
			t.Fatalf("%s: result = %+v", tc.method, res)
		}
		if tc.qr && !strings.HasPrefix(res.QRCode, "data:image/svg+xml;base64,") {
			t.Fatalf("%s: qr = %q", tc.method, res.QRCode)
		}
	}
}

func TestMobileMoneyStatusIsPending(t *testing.T) {
	g := devGateway(configured("http://unused"))
	st, err := g.CheckPaymentStatus(context.Background(), "wave", "WAVE_1")
	if err != nil || st.Status != StatusPending || st.Currency != "XOF" || st.PaymentMethod != "wave" {
		t.Fatalf("status = %+v, err = %v", st, err)
	}
}

func TestProcessWebhookNormalizesIDs(t *testing.T) {
	g := devGateway(configured("http://unused"))
	cases := map[string]map[string]any{
		"orange_money": {"pay_token": "tok"},
		"mtn_momo":     {"referenceId": "tok"},
		"moov_money":   {"transactionId": "tok"},
		"wave":         {"id": "tok"},
	}
	for method, payload := range cases {
		res := g.ProcessWebhook(context.Background(), method, payload)
		if !res.Success || res.TransactionID != "tok" {
			t.Fatalf("%s: result = %+v", method, res)
		}
	}
	if res := g.ProcessWebhook(context.Background(), "wave", map[string]any{}); res.Success {
		t.Fatal("payload without id accepted")
	}
}

func TestMethodsListsEnabledAndConfigured(t *testing.T) {
	cfg := configured("http://unused")
	off := cfg
	off.Enabled = false
	opts := devOptions()
	g := NewGateway(NewRegistryOf(
		NewWave(cfg, opts),
		NewCash(true, opts),
		NewOrangeMoney(off, opts),
	), quietLog())

	got := g.Methods()
	if len(got) != 2 || got[0].ID != "cash" || got[1].ID != "wave" {
		t.Fatalf("methods = %+v", got)
	}
}
