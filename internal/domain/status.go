package domain

import (
	"errors"
	"fmt"
	"strings"
)

// OrderStatus is the canonical delivery order status.
type OrderStatus string

// List of order statuses in lifecycle order.
const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var (
	// ErrTerminalState is returned when a transition out of delivered or cancelled is attempted.
	ErrTerminalState = errors.New("order is in a terminal state")
	// ErrBackwardTransition is returned when a status would move back in the lifecycle.
	ErrBackwardTransition = errors.New("order status cannot move backwards")
	// ErrUnknownStatus is returned when a raw status cannot be normalized.
	ErrUnknownStatus = errors.New("unknown order status")
)

var statusRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderConfirmed:  1,
	OrderProcessing: 2,
	OrderShipped:    3,
	OrderDelivered:  4,
	OrderCancelled:  4,
}

// Valid checks if the OrderStatus is one of the canonical values.
func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transition is permitted.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// ValidateTransition checks a status change against the order lifecycle:
// forward moves only, cancellation from any non-terminal state, nothing out of a terminal state.
// A transition to the same status is accepted and is a no-op.
func ValidateTransition(from, to OrderStatus) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("%w: %q -> %q", ErrUnknownStatus, from, to)
	}
	if from.Terminal() {
		return fmt.Errorf("%w: %s", ErrTerminalState, from)
	}
	if to == from || to == OrderCancelled {
		return nil
	}
	if statusRank[to] <= statusRank[from] {
		return fmt.Errorf("%w: %s -> %s", ErrBackwardTransition, from, to)
	}
	return nil
}

// statusAliases maps every spelling seen at the system edges to a canonical status.
// Keys are lower-cased with single spaces.
var statusAliases = map[string]OrderStatus{
	"pending":    OrderPending,
	"created":    OrderPending,
	"new":        OrderPending,
	"confirmed":  OrderConfirmed,
	"accepted":   OrderConfirmed,
	"processing": OrderProcessing,
	"cooking":    OrderProcessing,
	"preparing":  OrderProcessing,
	"shipped":    OrderShipped,
	"delivering": OrderShipped,
	"in transit": OrderShipped,
	"delivered":  OrderDelivered,
	"completed":  OrderDelivered,
	"cancelled":  OrderCancelled,
	"canceled":   OrderCancelled,
	"deleted":    OrderCancelled,

	"in afwachting":  OrderPending,
	"bevestigd":      OrderConfirmed,
	"in behandeling": OrderProcessing,
	"verzonden":      OrderShipped,
	"onderweg":       OrderShipped,
	"geleverd":       OrderDelivered,
	"bezorgd":        OrderDelivered,
	"geannuleerd":    OrderCancelled,
}

// ParseOrderStatus normalizes a raw status string from an external interface.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	key := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	key = strings.ReplaceAll(key, "_", " ")
	if s, ok := statusAliases[key]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}
