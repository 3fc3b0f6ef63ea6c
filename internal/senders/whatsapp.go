package senders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/khalidIbrahima/kstores-sub002/internal/config"
)

// TwilioWhatsAppSender delivers WhatsApp messages through the Twilio
// Messages API. Account credentials come from the environment
// (TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN), read by the SDK itself.
type TwilioWhatsAppSender struct {
	client *twilio.RestClient
	from   string
	logger *slog.Logger
}

func NewTwilioWhatsAppSender(cfg config.Config, logger *slog.Logger) *TwilioWhatsAppSender {
	return &TwilioWhatsAppSender{
		client: twilio.NewRestClient(),
		from:   cfg.WhatsAppFrom,
		logger: logger,
	}
}

// SendMessage sends body to a phone-like destination. Twilio requires the
// "whatsapp:" address prefix on both ends; the destination is coerced if
// the caller passed a bare number.
func (s *TwilioWhatsAppSender) SendMessage(ctx context.Context, destination, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(whatsAppAddress(destination))
	params.SetFrom(whatsAppAddress(s.from))
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send to %s: %w", destination, err)
	}

	s.logger.Info("WhatsApp message sent", "to", destination)
	return nil
}

func whatsAppAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
