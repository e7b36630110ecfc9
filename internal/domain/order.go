package domain

import "time"

// DeliveryOrder is an order whose delivery is tracked against a deadline.
type DeliveryOrder struct {
	ID          string
	BuyerID     string
	SellerID    string
	CourierID   string
	Destination Point
	Status      OrderStatus
	CreatedAt   time.Time
	Deadline    time.Time
	UpdatedAt   time.Time
}

// HasCourier reports whether a courier is attached to the order.
func (o DeliveryOrder) HasCourier() bool {
	return o.CourierID != ""
}

// NewOrder is the input for creating a DeliveryOrder.
type NewOrder struct {
	BuyerID             string
	SellerID            string
	CourierID           string
	Destination         Point
	ServiceLevelMinutes int
}

// DeadlineFor computes the delivery deadline for an order created at createdAt.
func DeadlineFor(createdAt time.Time, serviceLevelMinutes int) time.Time {
	return createdAt.Add(time.Duration(serviceLevelMinutes) * time.Minute)
}

// OrderCursor is a position in the (deadline, id) ordering of open orders.
// The zero value starts before the first order.
type OrderCursor struct {
	Deadline time.Time
	ID       string
}

// Cursor returns the position just after o.
func (o DeliveryOrder) Cursor() OrderCursor {
	return OrderCursor{Deadline: o.Deadline, ID: o.ID}
}

// Before reports whether c sorts strictly before o.
func (c OrderCursor) Before(o DeliveryOrder) bool {
	if !c.Deadline.Equal(o.Deadline) {
		return c.Deadline.Before(o.Deadline)
	}
	return c.ID < o.ID
}
