package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-delivery-engine/internal/config"
	"service-delivery-engine/internal/logx"
	"service-delivery-engine/internal/ports/notification"
	"service-delivery-engine/internal/repository"
	"service-delivery-engine/internal/service/countdown"
	"service-delivery-engine/internal/service/notifier"
	"service-delivery-engine/internal/service/orders"
	"service-delivery-engine/internal/transport/kafka"
)

func newProcessor(svc *orders.Service, logger logx.Logger) *orders.Processor {
	return orders.NewProcessor(svc, logger)
}

func newConsumer(cfg *config.Config, logger logx.Logger, p *orders.Processor, res *resources) (*kafka.Consumer, error) {
	k := cfg.Kafka
	c, err := kafka.NewConsumer(logger, k.Brokers, k.GroupID, k.Topic, makeOrderEventHandler(p))
	if err != nil {
		return nil, err
	}
	if c == nil {
		logger.Warn("kafka not configured, order events are not consumed")
		return nil, nil
	}
	res.onClose("kafka", c.Close)
	return c, nil
}

type watcherIn struct {
	dig.In

	Config    *config.Config
	Logger    logx.Logger
	Orders    *repository.OrderRepo
	Classify  *countdown.Classifier
	Marks     notification.MarkStore
	Notifier  *notifier.Notifier
	Publisher notification.Publisher
	Emitted   prometheus.Counter `name:"countdown_alerts_total"`
}

func newWatcher(in watcherIn) *countdown.Watcher {
	return countdown.NewWatcher(
		in.Orders,
		in.Classify,
		in.Marks,
		in.Notifier,
		in.Publisher,
		in.Logger,
		in.Emitted,
		countdown.WatcherConfig{
			Interval:  in.Config.Countdown.ScanInterval,
			BatchSize: in.Config.Countdown.BatchSize,
		},
	)
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		newProcessor,
		newConsumer,
		newWatcher,
	)
}
