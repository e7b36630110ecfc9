package notify

import (
	"time"

	"service-delivery-engine/internal/domain"
)

// Message is the wire form of a notification event.
type Message struct {
	ID             string            `json:"id"`
	OrderID        string            `json:"order_id"`
	Kind           string            `json:"kind"`
	Recipient      string            `json:"recipient"`
	RecipientID    string            `json:"recipient_id"`
	PreviousStatus string            `json:"previous_status,omitempty"`
	NewStatus      string            `json:"new_status,omitempty"`
	Countdown      *CountdownMessage `json:"countdown,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// CountdownMessage is attached to countdown alerts.
type CountdownMessage struct {
	RemainingMinutes int    `json:"remaining_minutes"`
	Status           string `json:"status"`
}

// FromDomain converts a NotificationEvent into its wire form.
func FromDomain(ev domain.NotificationEvent) Message {
	m := Message{
		ID:             ev.ID,
		OrderID:        ev.OrderID,
		Kind:           string(ev.Kind),
		Recipient:      string(ev.Recipient),
		RecipientID:    ev.RecipientID,
		PreviousStatus: string(ev.PreviousStatus),
		NewStatus:      string(ev.NewStatus),
		CreatedAt:      ev.CreatedAt,
	}
	if ev.Countdown != nil {
		m.Countdown = &CountdownMessage{
			RemainingMinutes: ev.Countdown.RemainingMinutes,
			Status:           string(ev.Countdown.Status),
		}
	}
	return m
}

// routingKey is "<recipient>.<kind>", e.g. "buyer.status_changed".
func routingKey(ev domain.NotificationEvent) string {
	return string(ev.Recipient) + "." + string(ev.Kind)
}
