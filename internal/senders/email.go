// Package senders holds the concrete delivery channels: transactional
// email over SMTP and WhatsApp through the Twilio API.
package senders

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/khalidIbrahima/kstores-sub002/internal/config"
	"github.com/khalidIbrahima/kstores-sub002/internal/models"
	"github.com/khalidIbrahima/kstores-sub002/internal/status"
)

// SMTPEmailSender delivers order status emails through a plain SMTP
// relay.
type SMTPEmailSender struct {
	host     string
	port     string
	from     string
	password string
	logger   *slog.Logger
}

func NewSMTPEmailSender(cfg config.Config, logger *slog.Logger) *SMTPEmailSender {
	return &SMTPEmailSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		password: cfg.SMTPPassword,
		logger:   logger,
	}
}

// SendStatusUpdate emails the customer about a status transition. Guest
// orders get a tracking hint instead of an account link.
func (s *SMTPEmailSender) SendStatusUpdate(ctx context.Context, order *models.Order, newStatus string, isGuest bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := status.For(newStatus)
	to := []string{order.Shipping.Email}

	subject := fmt.Sprintf("Subject: %s Commande %s - %s\r\n", cfg.Emoji, order.ID, cfg.Label)
	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	body := statusEmailBody(order, cfg, isGuest)
	msg := []byte(subject + mime + body)

	auth := smtp.PlainAuth("", s.from, s.password, s.host)
	if err := smtp.SendMail(s.host+":"+s.port, auth, s.from, to, msg); err != nil {
		return fmt.Errorf("send status email for order %s: %w", order.ID, err)
	}

	s.logger.Info("Status email sent", "order_id", order.ID, "status", newStatus)
	return nil
}

func statusEmailBody(order *models.Order, cfg status.DisplayInfo, isGuest bool) string {
	greeting := "Bonjour"
	if order.Shipping.Name != "" {
		greeting = "Bonjour " + order.Shipping.Name
	}

	footer := "Vous pouvez suivre votre commande depuis votre compte."
	if isGuest {
		footer = "Conservez ce message pour suivre votre commande."
	}

	return fmt.Sprintf(
		`<html><body>
<p>%s,</p>
<p>%s Votre commande <b>%s</b> est maintenant : <b style="color:%s">%s</b></p>
<p>%s.</p>
<p>Montant total : %d FCFA</p>
<p>%s</p>
</body></html>`,
		greeting, cfg.Emoji, order.ID, cfg.Color, cfg.Label, cfg.Description, order.Total, footer,
	)
}
