package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewGeocoderRetriesTotal returns a counter for retry attempts against the geocoding provider
func NewGeocoderRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geocoder_retries_total",
		Help: "Total number of retry attempts performed by the geocoding gateway",
	})
}

// NewCountdownAlertsTotal returns a counter for published countdown alert events
func NewCountdownAlertsTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "countdown_alerts_total",
		Help: "Total number of countdown alert notifications published",
	})
}

// NewNotificationPublishFailuresTotal returns a counter for notification batches that could not be delivered
func NewNotificationPublishFailuresTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_publish_failures_total",
		Help: "Total number of status change notifications that failed to publish",
	})
}

// HTTP groups request metrics used by the observability middleware.
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTP returns request counters labelled by method, route pattern and status.
func NewHTTP() HTTP {
	labels := []string{"method", "path", "status"}
	return HTTP{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, labels),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, labels),
	}
}

// Collectors returns the collectors for registration.
func (h HTTP) Collectors() []prometheus.Collector {
	return []prometheus.Collector{h.Requests, h.Duration}
}

// Register registers c with reg and returns the collector that ends up registered.
// When an identical collector already exists the existing one is returned.
func Register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
