package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"service-delivery-engine/internal/domain"
)

// DefaultSubject is the subject prefix for notifications.
const DefaultSubject = "notifications"

type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSPublisher publishes notifications to "<subject>.<recipient>.<kind>".
type NATSPublisher struct {
	nc      msgPublisher
	subject string
}

// NewNATSPublisher creates a NATSPublisher on an established connection.
func NewNATSPublisher(nc *nats.Conn, subject string) *NATSPublisher {
	return newNATSPublisher(nc, subject)
}

func newNATSPublisher(nc msgPublisher, subject string) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{nc: nc, subject: subject}
}

// Publish sends every event as its own message.
func (p *NATSPublisher) Publish(ctx context.Context, events []domain.NotificationEvent) error {
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.Marshal(FromDomain(ev))
		if err != nil {
			return fmt.Errorf("marshal notification %s: %w", ev.ID, err)
		}
		msg := &nats.Msg{
			Subject: p.subject + "." + routingKey(ev),
			Header:  nats.Header{},
			Data:    data,
		}
		// lets JetStream streams drop duplicates
		msg.Header.Set(nats.MsgIdHdr, ev.ID)
		if err := p.nc.PublishMsg(msg); err != nil {
			return fmt.Errorf("nats publish %s: %w", ev.ID, err)
		}
	}
	return nil
}
