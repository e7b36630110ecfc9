package countdown

import (
	"time"

	"service-delivery-engine/internal/domain"
)

// Default bucket thresholds in minutes.
const (
	DefaultUrgentMinutes  = 30
	DefaultWarningMinutes = 60
)

// Thresholds split the non-negative remaining minutes into buckets:
// below UrgentMinutes is urgent, below WarningMinutes is warning, the rest is on time.
type Thresholds struct {
	UrgentMinutes  int
	WarningMinutes int
}

// Classifier maps a deadline to a countdown bucket.
type Classifier struct {
	th Thresholds
}

// NewClassifier returns a Classifier; non-positive thresholds fall back to defaults.
func NewClassifier(th Thresholds) *Classifier {
	if th.UrgentMinutes <= 0 {
		th.UrgentMinutes = DefaultUrgentMinutes
	}
	if th.WarningMinutes <= 0 {
		th.WarningMinutes = DefaultWarningMinutes
	}
	if th.WarningMinutes < th.UrgentMinutes {
		th.WarningMinutes = th.UrgentMinutes
	}
	return &Classifier{th: th}
}

// Thresholds returns the effective thresholds.
func (c *Classifier) Thresholds() Thresholds {
	return c.th
}

// Classify returns the countdown state for deadline at now.
// A zero deadline yields CountdownUnknown.
func (c *Classifier) Classify(deadline, now time.Time) domain.CountdownState {
	if deadline.IsZero() {
		return domain.CountdownState{Status: domain.CountdownUnknown}
	}
	remaining := floorMinutes(deadline.Sub(now))

	var status domain.CountdownStatus
	switch {
	case remaining < 0:
		status = domain.CountdownOverdue
	case remaining < c.th.UrgentMinutes:
		status = domain.CountdownUrgent
	case remaining < c.th.WarningMinutes:
		status = domain.CountdownWarning
	default:
		status = domain.CountdownOnTime
	}
	return domain.CountdownState{RemainingMinutes: remaining, Status: status}
}

// floorMinutes rounds toward negative infinity so that 30s past the deadline is -1.
func floorMinutes(d time.Duration) int {
	m := d / time.Minute
	if d < 0 && d%time.Minute != 0 {
		m--
	}
	return int(m)
}
