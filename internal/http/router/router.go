package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"service-delivery-engine/internal/http/handlers"
)

// Routes groups the handlers and middleware the router mounts.
type Routes struct {
	Base         *handlers.Handlers
	Availability *handlers.AvailabilityHandler
	Candidates   *handlers.CandidateHandler
	Orders       *handlers.OrderHandler

	// Health and Metrics are mounted when non-nil.
	Health  http.Handler
	Metrics http.Handler

	// Middleware runs after the base chi middleware, in order.
	Middleware []func(http.Handler) http.Handler
	Timeout    time.Duration
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(rt Routes) http.Handler {
	if rt.Base == nil {
		rt.Base = handlers.New(nil)
	}
	if rt.Timeout <= 0 {
		rt.Timeout = 5 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	for _, mw := range rt.Middleware {
		r.Use(mw)
	}

	r.Get("/ping", rt.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(rt.Base.HealthcheckHead))
	if rt.Health != nil {
		r.Method(http.MethodGet, "/health", rt.Health)
	}
	if rt.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(rt.Timeout))

		if h := rt.Availability; h != nil {
			r.Get("/availability", h.Check)
			r.Get("/availability/address", h.CheckAddress)
		}
		if h := rt.Candidates; h != nil {
			r.Route("/candidates", func(r chi.Router) {
				r.Get("/", h.List)
				r.Post("/", h.Create)
				r.Get("/{id}", h.GetByID)
				r.Patch("/{id}", h.Update)
			})
		}
		if h := rt.Orders; h != nil {
			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.Create)
				r.Get("/{id}", h.GetByID)
				r.Post("/{id}/status", h.UpdateStatus)
				r.Get("/{id}/countdown", h.Countdown)
			})
		}
	})

	r.NotFound(rt.Base.NotFound)
	r.MethodNotAllowed(rt.Base.MethodNotAllowed)

	return r
}
