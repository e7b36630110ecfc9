package domain

import "time"

// CountdownStatus buckets the time left until a delivery deadline.
type CountdownStatus string

// List of countdown buckets.
const (
	CountdownOnTime  CountdownStatus = "on_time"
	CountdownWarning CountdownStatus = "warning"
	CountdownUrgent  CountdownStatus = "urgent"
	CountdownOverdue CountdownStatus = "overdue"
	CountdownUnknown CountdownStatus = "unknown"
)

// Alerting reports whether entering this bucket should alert the parties of an order.
func (s CountdownStatus) Alerting() bool {
	return s == CountdownWarning || s == CountdownUrgent || s == CountdownOverdue
}

// CountdownState is derived from a deadline and the current time; it is never stored.
type CountdownState struct {
	RemainingMinutes int
	Status           CountdownStatus
}

// CountdownView is what a polling client sees for one order.
type CountdownView struct {
	OrderID     string
	OrderStatus OrderStatus
	Deadline    time.Time
	State       CountdownState
}
