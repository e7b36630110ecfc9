package app

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-delivery-engine/internal/config"
	"service-delivery-engine/internal/domain"
	"service-delivery-engine/internal/gateway/geocoding"
	"service-delivery-engine/internal/logx"
	"service-delivery-engine/internal/ports/notification"
	"service-delivery-engine/internal/repository"
	"service-delivery-engine/internal/service/availability"
	"service-delivery-engine/internal/service/countdown"
	"service-delivery-engine/internal/service/notifier"
	"service-delivery-engine/internal/service/orders"
)

const operationTimeout = 3 * time.Second

type addressGeocoder interface {
	Geocode(ctx context.Context, address string) (domain.Point, error)
}

type geocoderIn struct {
	dig.In

	Config  *config.Config
	Logger  logx.Logger
	Retries prometheus.Counter `name:"geocoder_retries_total"`
}

// newGeocoder returns a nil interface when no provider is configured, so
// address checks fail with a geocoding error instead of a nil dereference.
func newGeocoder(in geocoderIn) addressGeocoder {
	g := in.Config.Geocoder
	if g.BaseURL == "" {
		in.Logger.Warn("geocoder not configured, address checks are disabled")
		return nil
	}
	base := geocoding.NewHTTPGeocoder(g.BaseURL, g.APIKey, g.Timeout)
	return geocoding.NewRetryingGeocoder(base, in.Logger, in.Retries, geocoding.RetryConfig{
		MaxAttempts: g.MaxAttempts,
		BaseDelay:   g.BaseDelay,
		MaxDelay:    g.MaxDelay,
	})
}

func newChecker(cfg *config.Config) (*availability.Checker, error) {
	loc, err := cfg.Availability.Location()
	if err != nil {
		return nil, err
	}
	return availability.NewChecker(availability.Model{
		BaseMinutes:  cfg.Availability.BaseMinutes,
		MinutesPerKm: cfg.Availability.MinutesPerKm,
	}, loc), nil
}

func newAvailabilityService(
	repo *repository.CandidateRepo,
	geo addressGeocoder,
	checker *availability.Checker,
	logger logx.Logger,
) *availability.Service {
	return availability.NewService(repo, geo, checker, operationTimeout, logger)
}

func newClassifier(cfg *config.Config) *countdown.Classifier {
	return countdown.NewClassifier(countdown.Thresholds{
		UrgentMinutes:  cfg.Countdown.UrgentMinutes,
		WarningMinutes: cfg.Countdown.WarningMinutes,
	})
}

func newCountdownService(repo *repository.OrderRepo, c *countdown.Classifier) *countdown.Service {
	return countdown.NewService(repo, c, operationTimeout)
}

type ordersIn struct {
	dig.In

	Config    *config.Config
	Logger    logx.Logger
	Repo      *repository.OrderRepo
	Notifier  *notifier.Notifier
	Publisher notification.Publisher
	Failures  prometheus.Counter `name:"notification_publish_failures_total"`
}

func newOrdersService(in ordersIn) *orders.Service {
	return orders.NewService(in.Repo, in.Notifier, in.Publisher, orders.Config{
		DefaultServiceLevelMinutes: in.Config.Orders.ServiceLevelMinutes,
		OperationTimeout:           operationTimeout,
		PublishTimeout:             in.Config.Notify.PublishTimeout,
	}, in.Logger, in.Failures)
}

func registerDomainServices(container *dig.Container) error {
	return provideAll(container,
		notifier.New,
		newGeocoder,
		newChecker,
		newAvailabilityService,
		newClassifier,
		newCountdownService,
		newOrdersService,
	)
}
