package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// HandlerFunc processes one decoded order event.  Returning an error
// rejects the message without requeueing it.
type HandlerFunc func(ctx context.Context, ev OrderEvent) error

// StartOrderEventConsumer connects to RabbitMQ, declares the order.events
// queue and hands every message to handle.  It runs a reconnect loop with
// exponential backoff and only returns once ctx is cancelled.
func StartOrderEventConsumer(ctx context.Context, url string, log *slog.Logger, handle HandlerFunc) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("order consumer: dial failed", "err", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, log, handle)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("order consumer: loop ended, reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, log *slog.Logger, handle HandlerFunc) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("order consumer: set QoS failed", "err", err)
	}
	if _, err := ch.QueueDeclare(OrderEventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(OrderEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleDelivery(ctx, d.Body, handle); err != nil {
				log.Error("order consumer: handle message failed", "err", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleDelivery(ctx context.Context, body []byte, handle HandlerFunc) error {
	var ev OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return handle(ctx, ev)
}

// SMSSender sends a text message and returns the provider's message id.
type SMSSender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// EventLogger is the default consumer: it appends one line per event to
// <dir>/orders.log and texts the customer when their order is ready.
type EventLogger struct {
	Dir string
	SMS SMSSender
	Log *slog.Logger

	mu sync.Mutex
}

// Handle implements HandlerFunc.
func (l *EventLogger) Handle(ctx context.Context, ev OrderEvent) error {
	if err := l.appendLine(ev); err != nil {
		return err
	}
	if ev.Type == EventOrderStatusChanged && ev.Status == string(model.OrderReady) && ev.CustomerPhone != "" && l.SMS != nil {
		sid, err := l.SMS.Send(ctx, ev.CustomerPhone, ReadyMessage(ev))
		if err != nil {
			// The log line is already written; an SMS outage must not
			// cause the event to be rejected.
			l.Log.Error("order ready sms failed", "err", err, "order_id", ev.OrderID)
			return nil
		}
		l.Log.Info("order ready sms sent", "order_id", ev.OrderID, "sid", sid)
	}
	return nil
}

func (l *EventLogger) appendLine(ev OrderEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dir := l.Dir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "orders.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single human-friendly log line.
func FormatLine(ev OrderEvent) string {
	name := strings.TrimSpace(ev.CustomerName)
	if name == "" {
		name = "-"
	}
	return fmt.Sprintf("[%s] %s | order_id=%d | table_id=%d | customer=%q | status=%s | payment=%s | total=%s\n",
		ev.OccurredAt, ev.Type, ev.OrderID, ev.TableID, name, ev.Status, ev.PaymentStatus, ev.Total)
}

// ReadyMessage is the SMS body sent when an order becomes ready.
func ReadyMessage(ev OrderEvent) string {
	name := strings.TrimSpace(ev.CustomerName)
	if name == "" {
		return fmt.Sprintf("Your order #%d is ready!", ev.OrderID)
	}
	return fmt.Sprintf("Hello %s, your order #%d is ready!", name, ev.OrderID)
}
