package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"service-delivery-engine/internal/domain"
)

// DefaultExchange is the fanout exchange notification consumers bind to.
const DefaultExchange = "notifications_fanout"

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes notifications to a RabbitMQ exchange as persistent JSON.
type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
	mu       sync.Mutex
	now      func() time.Time
}

// DialRabbit connects to url and declares the fanout exchange.
func DialRabbit(url, exchange string) (*RabbitPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq declare %s: %w", exchange, err)
	}
	return newRabbitPublisher(conn, ch, exchange), nil
}

func newRabbitPublisher(conn *amqp.Connection, ch amqpChannel, exchange string) *RabbitPublisher {
	return &RabbitPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Publish sends every event as its own message. It stops at the first failure.
func (p *RabbitPublisher) Publish(ctx context.Context, events []domain.NotificationEvent) error {
	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, ev := range events {
		body, err := json.Marshal(FromDomain(ev))
		if err != nil {
			return fmt.Errorf("marshal notification %s: %w", ev.ID, err)
		}
		err = p.ch.PublishWithContext(ctx, p.exchange, routingKey(ev), false, false, amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    ev.ID,
			Timestamp:    p.now(),
			Headers: amqp.Table{
				"recipient": string(ev.Recipient),
				"kind":      string(ev.Kind),
			},
			Body: body,
		})
		if err != nil {
			return fmt.Errorf("rabbitmq publish %s: %w", ev.ID, err)
		}
	}
	return nil
}

// Ping reports whether the connection is still open.
func (p *RabbitPublisher) Ping(context.Context) error {
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// Close closes the channel and the connection.
func (p *RabbitPublisher) Close() error {
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
