package availability

import (
	"math"
	"time"

	"service-delivery-engine/internal/domain"
)

// Model is the straight-line delivery time estimate: Base + distance * PerKm.
type Model struct {
	BaseMinutes  float64
	MinutesPerKm float64
}

// Result is the outcome of an availability check.
// EstimatedMinutes is nil when no candidate qualifies.
type Result struct {
	IsAvailable      bool
	EstimatedMinutes *int
}

// Checker decides whether any candidate can serve a target location.
type Checker struct {
	model Model
	loc   *time.Location
}

// NewChecker creates a Checker. Service windows are evaluated in loc (UTC when nil).
func NewChecker(model Model, loc *time.Location) *Checker {
	if loc == nil {
		loc = time.UTC
	}
	if model.BaseMinutes < 0 {
		model.BaseMinutes = 0
	}
	if model.MinutesPerKm < 0 {
		model.MinutesPerKm = 0
	}
	return &Checker{model: model, loc: loc}
}

// Check returns availability for target given the candidates and the current time.
// An invalid target is reported as unavailable rather than as an error.
func (c *Checker) Check(target domain.Point, candidates []domain.DeliveryCandidate, now time.Time) Result {
	if !target.Valid() {
		return Result{}
	}
	local := now.In(c.loc)

	best := -1
	for _, cand := range candidates {
		dist, ok := c.qualifies(cand, target, local)
		if !ok {
			continue
		}
		if est := c.estimate(dist); best < 0 || est < best {
			best = est
		}
	}
	if best < 0 {
		return Result{}
	}
	return Result{IsAvailable: true, EstimatedMinutes: &best}
}

// qualifies returns the candidate's distance to target and whether it is eligible.
func (c *Checker) qualifies(cand domain.DeliveryCandidate, target domain.Point, now time.Time) (float64, bool) {
	if !cand.IsActive || !cand.Location.Valid() || !(cand.RadiusKm > 0) {
		return 0, false
	}
	if !inAnyWindow(cand.Windows, now) {
		return 0, false
	}
	dist := domain.DistanceKm(cand.Location, target)
	if dist > cand.RadiusKm {
		return 0, false
	}
	return dist, true
}

func inAnyWindow(windows []domain.ServiceWindow, now time.Time) bool {
	for _, w := range windows {
		ok, err := w.Contains(now)
		if err != nil {
			// one broken window must not disqualify the courier's other windows
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

func (c *Checker) estimate(distanceKm float64) int {
	minutes := int(math.Ceil(c.model.BaseMinutes + distanceKm*c.model.MinutesPerKm))
	if minutes < 1 {
		return 1
	}
	return minutes
}
