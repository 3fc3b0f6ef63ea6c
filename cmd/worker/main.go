package main

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/khalidIbrahima/kstores-sub002/internal/config"
	"github.com/khalidIbrahima/kstores-sub002/internal/models"
	"github.com/khalidIbrahima/kstores-sub002/internal/notifier"
	"github.com/khalidIbrahima/kstores-sub002/internal/queue"
	"github.com/khalidIbrahima/kstores-sub002/internal/senders"
	"github.com/khalidIbrahima/kstores-sub002/internal/store"
	"github.com/khalidIbrahima/kstores-sub002/internal/utils"
)

var logger = utils.NewLogger()

func main() {
	cfg := config.Load(logger)

	// --- Database Connection ---
	st, err := store.Open(cfg.DatabaseDSN)
	utils.FailOnError(logger, err, "Failed to connect to database")

	// --- RabbitMQ Connection ---
	q, err := queue.Connect(cfg.AMQPURL)
	utils.FailOnError(logger, err, "Failed to connect to RabbitMQ")
	defer q.Close()

	emailSender := senders.NewSMTPEmailSender(cfg, logger)
	waSender := senders.NewTwilioWhatsAppSender(cfg, logger)
	n := notifier.New(emailSender, waSender, st, cfg.ChannelTimeout, logger)

	msgs, err := q.Consume()
	utils.FailOnError(logger, err, "Failed to register a consumer")

	logger.Info("Worker started. Waiting for status changes.")

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			go processMessage(d, st, n)
		}
	}()

	<-forever
}

// processMessage runs one queued status change through the fan-out. The
// queue gives at-least-once delivery, so a redelivered message may repeat
// a channel's send; that is an accepted trade-off.
func processMessage(d amqp.Delivery, st *store.Store, n *notifier.Notifier) {
	var msg models.StatusChangeMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		logger.Error("Failed to decode queue message", "error", err)
		d.Nack(false, false) // Discard malformed message.
		return
	}

	ctx := context.Background()
	order, err := st.GetOrder(ctx, msg.OrderID)
	if err != nil {
		logger.Error("Failed to load order", "order_id", msg.OrderID, "error", err)
		d.Nack(false, true) // Transient: requeue.
		return
	}
	if order == nil {
		logger.Warn("Order vanished before fan-out, dropping message", "order_id", msg.OrderID)
		d.Ack(false)
		return
	}

	result, err := n.Notify(ctx, order, msg.NewStatus, msg.PreviousStatus)
	if err != nil {
		logger.Error("Fan-out rejected message", "order_id", msg.OrderID, "error", err)
		d.Nack(false, false)
		return
	}

	// Partial channel failures are already captured in the result and the
	// persisted records; they are not retried here.
	logger.Info("Fan-out processed",
		"order_id", msg.OrderID,
		"new_status", msg.NewStatus,
		"internal_recorded", result.Internal,
		"errors", len(result.Errors),
	)
	d.Ack(false)
}
