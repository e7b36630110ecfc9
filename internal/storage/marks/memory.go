package marks

import (
	"context"
	"sync"
	"time"

	"service-delivery-engine/internal/domain"
)

// MemoryStore is a process-local mark store for single-worker setups without Redis.
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	seen      map[string]time.Time
	nextSweep time.Time
}

// NewMemoryStore creates a MemoryStore.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:  ttl,
		now:  time.Now,
		seen: make(map[string]time.Time),
	}
}

// MarkOnce records (orderID, bucket) and reports whether this call was the first within the TTL.
func (s *MemoryStore) MarkOnce(_ context.Context, orderID string, bucket domain.CountdownStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !now.Before(s.nextSweep) {
		s.evict(now)
		s.nextSweep = now.Add(s.sweepEvery())
	}

	k := key(orderID, bucket)
	if exp, ok := s.seen[k]; ok && now.Before(exp) {
		return false, nil
	}
	s.seen[k] = now.Add(s.ttl)
	return true, nil
}

// sweepEvery bounds how long an expired mark lingers in the map.
func (s *MemoryStore) sweepEvery() time.Duration {
	return min(s.ttl/2, time.Minute)
}

// Len returns the number of marks held, expired ones included until the next sweep.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func (s *MemoryStore) evict(now time.Time) {
	for k, exp := range s.seen {
		if !now.Before(exp) {
			delete(s.seen, k)
		}
	}
}
