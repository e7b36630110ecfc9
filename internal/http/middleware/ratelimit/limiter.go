package ratelimit

import (
	"sync"
	"time"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(key string) bool
}

// Config stores Bucket limiter settings.
type Config struct {
	Rate       float64       // tokens per second
	Burst      int           // bucket capacity
	TTL        time.Duration // idle buckets are dropped after TTL, 0 keeps them forever
	MaxBuckets int           // 0 means unlimited; new keys are rejected once full
}

// Allowed is a Limiter that never rejects.
type Allowed struct{}

// Allow always returns true.
func (Allowed) Allow(string) bool { return true }

// Buckets is a per-key token bucket limiter.
type Buckets struct {
	cfg Config
	now func() time.Time

	mu        sync.Mutex
	state     map[string]*tokens
	nextSweep time.Time
}

type tokens struct {
	left float64
	at   time.Time
}

// NewBuckets creates a limiter; now may be nil.
func NewBuckets(cfg Config, now func() time.Time) *Buckets {
	if now == nil {
		now = time.Now
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxBuckets < 0 {
		cfg.MaxBuckets = 0
	}
	return &Buckets{cfg: cfg, now: now, state: make(map[string]*tokens)}
}

// Allow consumes one token for key.
func (b *Buckets) Allow(key string) bool {
	now := b.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.sweep(now)

	t, ok := b.state[key]
	if !ok {
		if b.cfg.MaxBuckets > 0 && len(b.state) >= b.cfg.MaxBuckets {
			return false
		}
		t = &tokens{left: float64(b.cfg.Burst), at: now}
		b.state[key] = t
	}

	if dt := now.Sub(t.at); dt > 0 {
		t.left = min(t.left+dt.Seconds()*b.cfg.Rate, float64(b.cfg.Burst))
	}
	t.at = now

	if t.left < 1 {
		return false
	}
	t.left--
	return true
}

// Len reports the number of tracked keys.
func (b *Buckets) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.state)
}

// sweep drops idle keys at most once per half TTL. Caller holds mu.
func (b *Buckets) sweep(now time.Time) {
	if b.cfg.TTL <= 0 || now.Before(b.nextSweep) {
		return
	}
	b.nextSweep = now.Add(b.cfg.TTL / 2)
	for k, t := range b.state {
		if now.Sub(t.at) > b.cfg.TTL {
			delete(b.state, k)
		}
	}
}
