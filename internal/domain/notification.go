package domain

import "time"

// NotificationKind distinguishes what triggered a notification.
type NotificationKind string

// Party is the role of a notification recipient.
type Party string

const (
	KindStatusChanged  NotificationKind = "status_changed"
	KindCountdownAlert NotificationKind = "countdown_alert"
)

const (
	PartyBuyer   Party = "buyer"
	PartySeller  Party = "seller"
	PartyCourier Party = "courier"
)

// NotificationEvent is a message for one interested party about one order.
// Building events is the engine's job; storing and displaying them is not.
type NotificationEvent struct {
	ID             string
	OrderID        string
	Kind           NotificationKind
	Recipient      Party
	RecipientID    string
	PreviousStatus OrderStatus
	NewStatus      OrderStatus
	Countdown      *CountdownState
	CreatedAt      time.Time
}
