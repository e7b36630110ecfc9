package geocoding

import (
	"context"
	"errors"
	"net"
	"time"

	"service-delivery-engine/internal/domain"
	"service-delivery-engine/internal/logx"
)

type geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Point, error)
}

type counter interface {
	Inc()
}

// RetryConfig describes the RetryingGeocoder backoff.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingGeocoder retries transient geocoder failures with exponential backoff.
type RetryingGeocoder struct {
	next    geocoder
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingGeocoder wraps next; it returns nil when next is nil.
func NewRetryingGeocoder(next geocoder, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingGeocoder {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &RetryingGeocoder{next: next, logger: logger, retries: retries, cfg: cfg}
}

// Geocode calls the wrapped geocoder until it succeeds, fails permanently or runs out of attempts.
func (g *RetryingGeocoder) Geocode(ctx context.Context, address string) (domain.Point, error) {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		p, err := g.next.Geocode(ctx, address)
		if err == nil {
			return p, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("geocoder retry",
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return domain.Point{}, lastErr
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// backoff doubles base per attempt up to max; a max below base is raised to base.
func backoff(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if max < base {
		max = base
	}
	d := base
	for i := 1; i < attempt; i++ {
		if d > max/2 {
			return max
		}
		d *= 2
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
