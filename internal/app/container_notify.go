package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"service-delivery-engine/internal/config"
	"service-delivery-engine/internal/logx"
	"service-delivery-engine/internal/ports/notification"
	"service-delivery-engine/internal/storage/marks"
	"service-delivery-engine/internal/transport/notify"
)

// dialers are swapped in tests.
var (
	dialRabbit = func(url, exchange string) (rabbitPublisher, error) { return notify.DialRabbit(url, exchange) }
	dialNATS   = func(url string) (*nats.Conn, error) {
		return nats.Connect(url,
			nats.Name("service-delivery-engine"),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(time.Second),
		)
	}
)

type rabbitPublisher interface {
	notification.Publisher
	Ping(context.Context) error
	Close() error
}

func newPublisher(cfg *config.Config, logger logx.Logger, res *resources) (notification.Publisher, error) {
	n := cfg.Notify
	switch n.Driver {
	case config.DriverRabbitMQ:
		p, err := dialRabbit(n.RabbitURL, n.Exchange)
		if err != nil {
			return nil, err
		}
		res.onClose("rabbitmq", p.Close)
		res.check(healthgo.Config{Name: "rabbitmq", Timeout: 2 * time.Second, Check: p.Ping})
		logger.Info("notifications via rabbitmq", logx.String("exchange", n.Exchange))
		return p, nil

	case config.DriverNATS:
		nc, err := dialNATS(n.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("nats connect: %w", err)
		}
		res.onClose("nats", nc.Drain)
		res.check(healthgo.Config{
			Name:    "nats",
			Timeout: 2 * time.Second,
			Check: func(context.Context) error {
				if !nc.IsConnected() {
					return errors.New("nats connection is not active")
				}
				return nil
			},
		})
		logger.Info("notifications via nats", logx.String("subject", n.Subject))
		return notify.NewNATSPublisher(nc, n.Subject), nil

	default:
		logger.Info("notifications are logged only")
		return notify.NewLogPublisher(logger), nil
	}
}

// newRedisClient returns nil when Redis is not configured.
func newRedisClient(cfg *config.Config, res *resources) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	res.onClose("redis", client.Close)
	return client
}

func newMarkStore(cfg *config.Config, client *redis.Client, logger logx.Logger, res *resources) notification.MarkStore {
	if client == nil {
		logger.Warn("redis not configured, countdown marks are kept in memory")
		return marks.NewMemoryStore(cfg.Countdown.MarkTTL)
	}
	store := marks.NewRedisStore(client, cfg.Countdown.MarkTTL)
	res.check(healthgo.Config{Name: "redis", Timeout: 2 * time.Second, Check: store.Ping})
	return store
}

func registerNotify(container *dig.Container) error {
	return provideAll(container,
		newPublisher,
		newRedisClient,
		newMarkStore,
	)
}
