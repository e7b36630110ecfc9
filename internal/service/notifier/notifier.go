package notifier

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"service-delivery-engine/internal/apperr"
	"service-delivery-engine/internal/domain"
)

// Notifier decides who hears about an order change and builds the events.
// It does not deliver them.
type Notifier struct {
	now   func() time.Time
	newID func() string
}

// New returns a Notifier.
func New() *Notifier {
	return &Notifier{
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
}

// NotifyOnTransition builds status-change events for a transition from previous to next.
//
// Leaving a terminal status is an error and yields no events; so does an unknown status.
// A transition to the same status yields no events. The buyer always hears about a change,
// the seller once the order ships or is delivered, and an assigned courier when the order
// is cancelled.
func (n *Notifier) NotifyOnTransition(order domain.DeliveryOrder, previous, next domain.OrderStatus) ([]domain.NotificationEvent, error) {
	if !previous.Valid() || !next.Valid() {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalid, domain.ErrUnknownStatus)
	}
	if previous.Terminal() {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalid, domain.ErrTerminalState)
	}
	if previous == next {
		return nil, nil
	}

	recipients := []recipient{{domain.PartyBuyer, order.BuyerID}}
	switch next {
	case domain.OrderShipped, domain.OrderDelivered:
		recipients = append(recipients, recipient{domain.PartySeller, order.SellerID})
	case domain.OrderCancelled:
		if order.HasCourier() {
			recipients = append(recipients, recipient{domain.PartyCourier, order.CourierID})
		}
	}

	now := n.now()
	events := make([]domain.NotificationEvent, 0, len(recipients))
	for _, r := range recipients {
		events = append(events, domain.NotificationEvent{
			ID:             n.newID(),
			OrderID:        order.ID,
			Kind:           domain.KindStatusChanged,
			Recipient:      r.party,
			RecipientID:    r.id,
			PreviousStatus: previous,
			NewStatus:      next,
			CreatedAt:      now,
		})
	}
	return events, nil
}

// CountdownAlerts builds alert events for every party of the order.
func (n *Notifier) CountdownAlerts(order domain.DeliveryOrder, state domain.CountdownState) []domain.NotificationEvent {
	recipients := []recipient{
		{domain.PartyBuyer, order.BuyerID},
		{domain.PartySeller, order.SellerID},
	}
	if order.HasCourier() {
		recipients = append(recipients, recipient{domain.PartyCourier, order.CourierID})
	}

	now := n.now()
	events := make([]domain.NotificationEvent, 0, len(recipients))
	for _, r := range recipients {
		st := state
		events = append(events, domain.NotificationEvent{
			ID:             n.newID(),
			OrderID:        order.ID,
			Kind:           domain.KindCountdownAlert,
			Recipient:      r.party,
			RecipientID:    r.id,
			PreviousStatus: order.Status,
			NewStatus:      order.Status,
			Countdown:      &st,
			CreatedAt:      now,
		})
	}
	return events
}

type recipient struct {
	party domain.Party
	id    string
}
