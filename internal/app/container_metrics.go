package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-delivery-engine/internal/metrics"
)

type metricsOut struct {
	dig.Out

	RateLimited     prometheus.Counter `name:"rate_limit_exceeded_total"`
	GeocoderRetries prometheus.Counter `name:"geocoder_retries_total"`
	CountdownAlerts prometheus.Counter `name:"countdown_alerts_total"`
	PublishFailures prometheus.Counter `name:"notification_publish_failures_total"`
	HTTP            metrics.HTTP
}

func provideMetrics(reg prometheus.Registerer) (metricsOut, error) {
	var (
		out metricsOut
		err error
	)
	counters := []struct {
		dst *prometheus.Counter
		c   prometheus.Counter
	}{
		{&out.RateLimited, metrics.NewRateLimitExceededTotal()},
		{&out.GeocoderRetries, metrics.NewGeocoderRetriesTotal()},
		{&out.CountdownAlerts, metrics.NewCountdownAlertsTotal()},
		{&out.PublishFailures, metrics.NewNotificationPublishFailuresTotal()},
	}
	for _, c := range counters {
		if *c.dst, err = metrics.Register(reg, c.c); err != nil {
			return metricsOut{}, err
		}
	}

	h := metrics.NewHTTP()
	if h.Requests, err = metrics.Register(reg, h.Requests); err != nil {
		return metricsOut{}, err
	}
	if h.Duration, err = metrics.Register(reg, h.Duration); err != nil {
		return metricsOut{}, err
	}
	out.HTTP = h
	return out, nil
}

func registerMetrics(container *dig.Container) error {
	return provideAll(container, provideMetrics)
}
