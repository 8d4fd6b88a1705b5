package config

// SMSConfig holds Twilio credentials.  The sender is disabled unless all
// three values are set.
type SMSConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

// Enabled reports whether SMS can be sent.
func (c SMSConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != ""
}

// LoadSMSConfig reads TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and
// TWILIO_FROM_NUMBER.
func LoadSMSConfig() SMSConfig {
	return SMSConfig{
		AccountSID: envStr("TWILIO_ACCOUNT_SID", ""),
		AuthToken:  envStr("TWILIO_AUTH_TOKEN", ""),
		From:       envStr("TWILIO_FROM_NUMBER", ""),
	}
}
