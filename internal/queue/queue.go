// Package queue carries order status change messages between the API and
// the worker over RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/khalidIbrahima/kstores-sub002/internal/models"
)

const QueueName = "order-status-events"

type Queue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Connect dials RabbitMQ and declares the durable status change queue.
func Connect(url string) (*Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &Queue{conn: conn, ch: ch}, nil
}

func (q *Queue) Close() {
	q.ch.Close()
	q.conn.Close()
}

// PublishStatusChange enqueues one status change for asynchronous fan-out.
func (q *Queue) PublishStatusChange(ctx context.Context, msg models.StatusChangeMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal status change message: %w", err)
	}
	err = q.ch.PublishWithContext(ctx, "", QueueName, false, false,
		amqp.Publishing{ContentType: "application/json", Body: body},
	)
	if err != nil {
		return fmt.Errorf("publish status change for order %s: %w", msg.OrderID, err)
	}
	return nil
}

// Consume registers a manual-ack consumer on the status change queue.
func (q *Queue) Consume() (<-chan amqp.Delivery, error) {
	msgs, err := q.ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("register consumer: %w", err)
	}
	return msgs, nil
}
