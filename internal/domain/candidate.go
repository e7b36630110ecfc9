package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DeliveryCandidate is a courier that may take a delivery job.
type DeliveryCandidate struct {
	ID       int64
	Name     string
	Location Point
	RadiusKm float64
	IsActive bool
	Windows  []ServiceWindow
}

// PartialCandidateUpdate carries optional fields to update a candidate.
// A nil field means “do not change” that attribute.
type PartialCandidateUpdate struct {
	ID       int64
	Name     *string
	Location *Point
	RadiusKm *float64
	IsActive *bool
	Windows  *[]ServiceWindow
}

// ServiceWindow is a recurring weekly slot during which a courier works.
// Start and End are wall-clock "HH:MM" values; End may be "24:00".
type ServiceWindow struct {
	Day   time.Weekday
	Start string
	End   string
}

// ErrMalformedWindow is returned for windows that cannot be evaluated.
var ErrMalformedWindow = errors.New("malformed service window")

const minutesPerDay = 24 * 60

// Validate checks that the window can be evaluated.
func (w ServiceWindow) Validate() error {
	_, _, err := w.bounds()
	return err
}

// Contains reports whether t falls inside the window. Both bounds are inclusive.
// The caller is responsible for passing t in the courier's time zone.
func (w ServiceWindow) Contains(t time.Time) (bool, error) {
	start, end, err := w.bounds()
	if err != nil {
		return false, err
	}
	if t.Weekday() != w.Day {
		return false, nil
	}
	minute := t.Hour()*60 + t.Minute()
	return minute >= start && minute <= end, nil
}

func (w ServiceWindow) bounds() (int, int, error) {
	if w.Day < time.Sunday || w.Day > time.Saturday {
		return 0, 0, fmt.Errorf("%w: day %d", ErrMalformedWindow, w.Day)
	}
	start, err := parseClock(w.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err := parseClock(w.End)
	if err != nil {
		return 0, 0, err
	}
	if start > end {
		return 0, 0, fmt.Errorf("%w: start %s after end %s", ErrMalformedWindow, w.Start, w.End)
	}
	return start, end, nil
}

// parseClock converts "HH:MM" into minutes since midnight; "24:00" is the end of day.
func parseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, fmt.Errorf("%w: clock %q", ErrMalformedWindow, s)
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:])
	if m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: clock %q", ErrMalformedWindow, s)
	}
	total := h*60 + m
	if total == minutesPerDay {
		// inclusive bound: the last minute of the day
		total = minutesPerDay - 1
	}
	return total, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
