package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-delivery-engine/internal/config"
	"service-delivery-engine/internal/http/middleware/ratelimit"
	"service-delivery-engine/internal/logx"
)

// unlimitedPaths are probed by orchestrators and scrapers.
var unlimitedPaths = []string{"/ping", "/healthcheck", "/health", "/metrics"}

func newRateLimiter(cfg *config.Config) ratelimit.Limiter {
	rl := cfg.RateLimit
	if !rl.Enabled {
		return ratelimit.Allowed{}
	}
	return ratelimit.NewBuckets(ratelimit.Config{
		Rate:       rl.Rate,
		Burst:      rl.Burst,
		TTL:        rl.TTL,
		MaxBuckets: rl.MaxBuckets,
	}, nil)
}

type rateLimitIn struct {
	dig.In
	Logger  logx.Logger
	Counter prometheus.Counter `name:"rate_limit_exceeded_total"`
	Limiter ratelimit.Limiter
}

func newRateLimitMiddleware(in rateLimitIn) *ratelimit.Middleware {
	return ratelimit.New(in.Logger, in.Counter, in.Limiter, unlimitedPaths...)
}
