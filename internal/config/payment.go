package config

import (
	"strings"
	"time"
)

// Payment method identifiers.
const (
	MethodCash        = "cash"
	MethodOrangeMoney = "orange_money"
	MethodMTNMoMo     = "mtn_momo"
	MethodMoovMoney   = "moov_money"
	MethodWave        = "wave"
)

// ProviderConfig holds the credentials of one mobile-money provider.  Not
// every provider uses every field.
type ProviderConfig struct {
	Enabled           bool
	BaseURL           string
	MerchantID        string
	APIKey            string
	APISecret         string
	APIUserID         string // MTN only
	SubscriptionKey   string // MTN only
	TargetEnvironment string // MTN only
	WebhookURL        string
}

// PaymentConfig configures the payment gateway.
type PaymentConfig struct {
	Production    bool
	PublicBaseURL string
	Currency      string
	Timeout       time.Duration
	CashEnabled   bool
	Orange        ProviderConfig
	MTN           ProviderConfig
	Moov          ProviderConfig
	Wave          ProviderConfig
}

// LoadPaymentConfig reads provider credentials.  PAYMENT_ENABLED_METHODS
// lists the methods offered to customers.  Outside production every
// enabled provider with credentials is simulated.
func LoadPaymentConfig() PaymentConfig {
	enabled := map[string]bool{}
	for _, m := range envList("PAYMENT_ENABLED_METHODS", "cash,orange_money,mtn_momo,moov_money,wave") {
		enabled[strings.ToLower(m)] = true
	}
	base := strings.TrimRight(envStr("PUBLIC_BASE_URL", "http://localhost:5000"), "/")
	return PaymentConfig{
		Production:    isProduction(envStr("APP_ENV", "development")),
		PublicBaseURL: base,
		Currency:      envStr("CURRENCY", "XOF"),
		Timeout:       envDur("PAYMENT_HTTP_TIMEOUT", 15*time.Second),
		CashEnabled:   enabled[MethodCash],
		Orange: ProviderConfig{
			Enabled:    enabled[MethodOrangeMoney],
			BaseURL:    envStr("ORANGE_MONEY_API_URL", "https://api.orange.com/orange-money-webpay"),
			MerchantID: envStr("ORANGE_MONEY_MERCHANT_ID", ""),
			APIKey:     envStr("ORANGE_MONEY_API_KEY", ""),
			APISecret:  envStr("ORANGE_MONEY_API_SECRET", ""),
			WebhookURL: envStr("ORANGE_MONEY_WEBHOOK_URL", base+"/v1/payments/orange_money/webhook"),
		},
		MTN: ProviderConfig{
			Enabled:           enabled[MethodMTNMoMo],
			BaseURL:           envStr("MTN_MOMO_API_URL", "https://sandbox.momodeveloper.mtn.com"),
			APIUserID:         envStr("MTN_MOMO_API_USER_ID", ""),
			APIKey:            envStr("MTN_MOMO_API_KEY", ""),
			SubscriptionKey:   envStr("MTN_MOMO_SUBSCRIPTION_KEY", ""),
			TargetEnvironment: envStr("MTN_MOMO_TARGET_ENVIRONMENT", "sandbox"),
			WebhookURL:        envStr("MTN_MOMO_WEBHOOK_URL", base+"/v1/payments/mtn_momo/webhook"),
		},
		Moov: ProviderConfig{
			Enabled:    enabled[MethodMoovMoney],
			BaseURL:    envStr("MOOV_MONEY_API_URL", "https://api.moovmoney.com"),
			MerchantID: envStr("MOOV_MONEY_MERCHANT_ID", ""),
			APIKey:     envStr("MOOV_MONEY_API_KEY", ""),
			APISecret:  envStr("MOOV_MONEY_API_SECRET", ""),
			WebhookURL: envStr("MOOV_MONEY_WEBHOOK_URL", base+"/v1/payments/moov_money/webhook"),
		},
		Wave: ProviderConfig{
			Enabled:    enabled[MethodWave],
			BaseURL:    envStr("WAVE_API_URL", "https://api.wave.com"),
			MerchantID: envStr("WAVE_MERCHANT_ID", ""),
			APIKey:     envStr("WAVE_API_KEY", ""),
			APISecret:  envStr("WAVE_SECRET_KEY", ""),
			WebhookURL: envStr("WAVE_WEBHOOK_URL", base+"/v1/payments/wave/webhook"),
		},
	}
}
