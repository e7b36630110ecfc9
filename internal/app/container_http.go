package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"service-delivery-engine/internal/config"
	"service-delivery-engine/internal/grpcserver"
	"service-delivery-engine/internal/http/handlers"
	"service-delivery-engine/internal/http/middleware"
	"service-delivery-engine/internal/http/middleware/ratelimit"
	"service-delivery-engine/internal/http/pprofserver"
	"service-delivery-engine/internal/http/router"
	"service-delivery-engine/internal/logx"
	"service-delivery-engine/internal/metrics"
	"service-delivery-engine/internal/ports/notification"
	"service-delivery-engine/internal/service/availability"
	"service-delivery-engine/internal/service/countdown"
	"service-delivery-engine/internal/service/orders"
)

// Version is reported by /health; set with -ldflags at build time.
var Version = "dev"

type healthIn struct {
	dig.In

	Pool      *pgxpool.Pool
	Resources *resources
	// Publisher registers its broker check on construction, so it must exist first.
	Publisher notification.Publisher
}

func newHealth(in healthIn) (*healthgo.Health, error) {
	checks := append([]healthgo.Config{{
		Name:    "postgres",
		Timeout: 2 * time.Second,
		Check:   func(ctx context.Context) error { return in.Pool.Ping(ctx) },
	}}, in.Resources.healthChecks()...)

	return healthgo.New(
		healthgo.WithComponent(healthgo.Component{
			Name:    grpcserver.ServiceName,
			Version: Version,
		}),
		healthgo.WithChecks(checks...),
	)
}

type routesIn struct {
	dig.In

	Logger       logx.Logger
	Config       *config.Config
	Gatherer     prometheus.Gatherer
	HTTPMetrics  metrics.HTTP
	RateLimit    *ratelimit.Middleware
	Health       *healthgo.Health
	Base         *handlers.Handlers
	Availability *handlers.AvailabilityHandler
	Candidates   *handlers.CandidateHandler
	Orders       *handlers.OrderHandler
}

func newRouter(in routesIn) http.Handler {
	return router.New(router.Routes{
		Base:         in.Base,
		Availability: in.Availability,
		Candidates:   in.Candidates,
		Orders:       in.Orders,
		Health:       in.Health.Handler(),
		Metrics:      promhttp.HandlerFor(in.Gatherer, promhttp.HandlerOpts{}),
		Middleware: []func(http.Handler) http.Handler{
			middleware.Observability(in.Logger, in.HTTPMetrics),
			in.RateLimit.Handler(),
		},
	})
}

func newServer(cfg *config.Config, mux http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

type pprofOut struct {
	dig.Out
	Server *http.Server `name:"pprof_server"`
}

// newPprofServer yields a nil server when profiling is disabled.
func newPprofServer(cfg *config.Config) pprofOut {
	if !cfg.Pprof.Enabled {
		return pprofOut{}
	}
	return pprofOut{Server: &http.Server{
		Addr:              cfg.Pprof.Addr,
		Handler:           pprofserver.Handler(pprofserver.Config{User: cfg.Pprof.User, Pass: cfg.Pprof.Pass}),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

func newGRPCServer(logger logx.Logger) *grpcserver.Server {
	return grpcserver.New(logger)
}

func registerHTTP(container *dig.Container) error {
	return provideAll(container,
		handlers.New,
		func(l logx.Logger, s *availability.Service) *handlers.AvailabilityHandler {
			return handlers.NewAvailabilityHandler(l, s)
		},
		func(l logx.Logger, s *availability.Service) *handlers.CandidateHandler {
			return handlers.NewCandidateHandler(l, s)
		},
		func(l logx.Logger, o *orders.Service, c *countdown.Service) *handlers.OrderHandler {
			return handlers.NewOrderHandler(l, o, c)
		},
		newRateLimiter,
		newRateLimitMiddleware,
		newHealth,
		newRouter,
		newServer,
		newPprofServer,
		newGRPCServer,
	)
}
