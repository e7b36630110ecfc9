package orders

import "time"

// SetClock replaces the time and id sources of s.
func SetClock(s *Service, now func() time.Time, newID func() string) {
	s.now = now
	s.newID = newID
}
