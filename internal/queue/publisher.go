package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// dialTimeout bounds the TCP connect and the AMQP handshake of one
// publish.  amqp.Dial would wait up to 30s, which is too long for a
// request handler.
const dialTimeout = 2 * time.Second

// Publisher sends order events to RabbitMQ.  Each publish dials its own
// connection, bounded by dialTimeout, so a broker outage costs the
// request path at most one short dial.  Errors are logged and returned so
// the caller can choose to ignore them.
type Publisher struct {
	url     string
	timeout time.Duration
	log     *slog.Logger
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, log *slog.Logger) *Publisher {
	return &Publisher{url: url, timeout: dialTimeout, log: log}
}

// PublishOrderEvent publishes ev to the order.events queue.  Messages
// are marked as persistent.
func (p *Publisher) PublishOrderEvent(ctx context.Context, ev OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.timeout)})
	if err != nil {
		p.log.Error("rabbitmq dial failed", "err", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error("rabbitmq channel open failed", "err", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		OrderEventsQueue, // name
		true,             // durable
		false,            // autoDelete
		false,            // exclusive
		false,            // noWait
		nil,              // args
	); err != nil {
		p.log.Error("rabbitmq queue declare failed", "err", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", OrderEventsQueue, false, false, pub); err != nil {
		p.log.Error("rabbitmq publish failed", "err", err, "order_id", ev.OrderID)
		return err
	}
	return nil
}
