// Package notifier implements the order status fan-out: for one status
// transition it attempts email, WhatsApp and the internal notification
// records, isolating each channel's failure from the others.
package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/khalidIbrahima/kstores-sub002/internal/metrics"
	"github.com/khalidIbrahima/kstores-sub002/internal/models"
	"github.com/khalidIbrahima/kstores-sub002/internal/status"
)

// EmailSender delivers a templated status email for an order.
type EmailSender interface {
	SendStatusUpdate(ctx context.Context, order *models.Order, newStatus string, isGuest bool) error
}

// MessagingSender delivers a message body to a phone-like destination.
type MessagingSender interface {
	SendMessage(ctx context.Context, destination, body string) error
}

// RecordStore persists notification events.
type RecordStore interface {
	InsertNotification(ctx context.Context, event *models.NotificationEvent) error
}

const defaultChannelTimeout = 10 * time.Second

type Notifier struct {
	email    EmailSender
	whatsapp MessagingSender
	records  RecordStore
	timeout  time.Duration
	logger   *slog.Logger
}

func New(email EmailSender, whatsapp MessagingSender, records RecordStore, timeout time.Duration, logger *slog.Logger) *Notifier {
	if timeout <= 0 {
		timeout = defaultChannelTimeout
	}
	return &Notifier{
		email:    email,
		whatsapp: whatsapp,
		records:  records,
		timeout:  timeout,
		logger:   logger,
	}
}

// Notify fans the status transition out to every applicable channel, in
// the fixed order email, WhatsApp, admin record, customer record. A
// channel failure never aborts the remaining channels; every failure ends
// up in the returned Result. The error return is reserved for misuse
// (nil order, missing id). A transition to the status the order already
// had is a no-op.
func (n *Notifier) Notify(ctx context.Context, order *models.Order, newStatus, previousStatus string) (Result, error) {
	// A fresh order lands here with no previous status and is recorded as
	// order_received; everything else is a status update.
	eventType := models.TypeStatusUpdate
	if previousStatus == "" && newStatus == models.StatusPending {
		eventType = models.TypeOrderReceived
	}
	return n.notify(ctx, order, newStatus, previousStatus, eventType)
}

// Replay re-runs the fan-out for an order at its current status, for
// diagnostics. A replay is always recorded as a status update so it shows
// up in the order's history instead of the order-received stream.
func (n *Notifier) Replay(ctx context.Context, order *models.Order) (Result, error) {
	var currentStatus string
	if order != nil {
		currentStatus = order.Status
	}
	return n.notify(ctx, order, currentStatus, "", models.TypeStatusUpdate)
}

func (n *Notifier) notify(ctx context.Context, order *models.Order, newStatus, previousStatus, eventType string) (Result, error) {
	if order == nil || order.ID == "" {
		return Result{}, errors.New("notify: order with a non-empty id is required")
	}
	if previousStatus != "" && newStatus == previousStatus {
		return newOutcome().result(), nil
	}

	statusCfg := status.For(newStatus)
	isGuest := order.IsGuest()
	out := newOutcome()

	if order.Shipping.Email != "" {
		err := n.withTimeout(ctx, func(c context.Context) error {
			return n.email.SendStatusUpdate(c, order, newStatus, isGuest)
		})
		out.record(channelEmail, err)
		metrics.ObserveAttempt(channelEmail, err)
		if err != nil {
			n.logger.Error("Email channel failed", "order_id", order.ID, "error", err)
		}
	}

	if order.Shipping.Phone != "" {
		body := whatsAppBody(order, statusCfg)
		err := n.withTimeout(ctx, func(c context.Context) error {
			return n.whatsapp.SendMessage(c, order.Shipping.Phone, body)
		})
		out.record(channelWhatsApp, err)
		metrics.ObserveAttempt(channelWhatsApp, err)
		if err != nil {
			n.logger.Error("WhatsApp channel failed", "order_id", order.ID, "error", err)
		}
	}

	data := models.NotificationData{
		OrderID:        order.ID,
		CustomerName:   order.Shipping.Name,
		CustomerEmail:  order.Shipping.Email,
		CustomerPhone:  order.Shipping.Phone,
		PreviousStatus: previousStatus,
		NewStatus:      newStatus,
		StatusConfig:   statusCfg,
		EmailSent:      out.sent(channelEmail),
		WhatsappSent:   out.sent(channelWhatsApp),
		SentAt:         time.Now().UTC(),
		Errors:         out.channelErrors(),
	}

	// Admin-facing record, written whether or not any channel succeeded.
	adminErr := n.insertRecord(ctx, eventType, nil, data)
	out.recordInternal(adminErr)
	metrics.ObserveAttempt(channelInternal, adminErr)
	if adminErr != nil {
		n.logger.Error("Admin notification record failed", "order_id", order.ID, "error", adminErr)
	}

	// Customer-facing record only for registered accounts.
	if order.UserID != nil {
		customerData := data
		customerData.IsCustomerNotification = true
		if err := n.insertRecord(ctx, eventType, order.UserID, customerData); err != nil {
			out.recordInternalError(err)
			n.logger.Error("Customer notification record failed", "order_id", order.ID, "error", err)
		}
	}

	n.logger.Info("Status fan-out finished",
		"order_id", order.ID,
		"new_status", newStatus,
		"email_sent", data.EmailSent,
		"whatsapp_sent", data.WhatsappSent,
		"errors", len(out.errors),
	)
	return out.result(), nil
}

func (n *Notifier) insertRecord(ctx context.Context, eventType string, target *string, data models.NotificationData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	event := &models.NotificationEvent{
		Type:         eventType,
		TargetUserID: target,
		Data:         raw,
		CreatedAt:    time.Now().UTC(),
	}
	return n.withTimeout(ctx, func(c context.Context) error {
		return n.records.InsertNotification(c, event)
	})
}

// withTimeout bounds one channel call. smtp.SendMail and the Twilio SDK
// take no context, so an in-flight call cannot be cancelled; on timeout
// the goroutine is abandoned and keeps running until the provider call
// returns, which is the trade-off for not hanging the whole fan-out.
func (n *Notifier) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("channel call timed out after %s: %w", n.timeout, ctx.Err())
	}
}

func whatsAppBody(order *models.Order, cfg status.DisplayInfo) string {
	greeting := "Bonjour"
	if order.Shipping.Name != "" {
		greeting = "Bonjour " + order.Shipping.Name
	}
	return fmt.Sprintf(
		"🛍️ *KStores*\n\n%s,\n%s Commande *%s* : *%s*\n%s.\n\nMontant : %d FCFA",
		greeting, cfg.Emoji, order.ID, cfg.Label, cfg.Description, order.Total,
	)
}
