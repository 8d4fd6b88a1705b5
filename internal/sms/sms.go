// Package sms sends text messages to customers through Twilio.
package sms

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/iliyamo/restaurant-pos/internal/config"
)

// ErrDisabled is returned by a sender built without credentials.
var ErrDisabled = errors.New("sms disabled")

// messageCreator is the part of the Twilio API the sender uses.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Sender delivers SMS through Twilio.
type Sender struct {
	api  messageCreator
	from string
	log  *slog.Logger
}

// NewSender returns a Twilio-backed sender.  Without complete credentials
// every Send fails with ErrDisabled.
func NewSender(cfg config.SMSConfig, log *slog.Logger) *Sender {
	s := &Sender{from: cfg.From, log: log}
	if cfg.Enabled() {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
		s.api = client.Api
	}
	return s
}

// Enabled reports whether the sender has credentials.
func (s *Sender) Enabled() bool { return s.api != nil }

// Send texts body to the number to and returns the message SID.  The
// Twilio client takes no context; ctx is only checked before the call.
func (s *Sender) Send(ctx context.Context, to, body string) (string, error) {
	if s.api == nil {
		return "", ErrDisabled
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return "", errors.New("sms: empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Sid == nil {
		s.log.Warn("sms sent without sid", "to", to)
		return "", nil
	}
	return *resp.Sid, nil
}
