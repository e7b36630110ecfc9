package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-delivery-engine/internal/config"
	"service-delivery-engine/internal/logx"
	"service-delivery-engine/internal/repository"
)

type dbConnectFunc func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect  dbConnectFunc
	loadConfig func() (*config.Config, error)
	registry   func() (prometheus.Registerer, prometheus.Gatherer)
	logFatalf  func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect:  connectDbWithRetry,
		loadConfig: config.Load,
		registry: func() (prometheus.Registerer, prometheus.Gatherer) {
			return prometheus.DefaultRegisterer, prometheus.DefaultGatherer
		},
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithConfig replaces config loading with a fixed config.
func (b *ContainerBuilder) WithConfig(cfg *config.Config) *ContainerBuilder {
	if cfg != nil {
		b.loadConfig = func() (*config.Config, error) { return cfg, nil }
	}
	return b
}

// WithRegistry uses reg for metrics instead of the global registry.
func (b *ContainerBuilder) WithRegistry(reg *prometheus.Registry) *ContainerBuilder {
	if reg != nil {
		b.registry = func() (prometheus.Registerer, prometheus.Gatherer) { return reg, reg }
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds the API container.
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	return b.must(b.build(ctx))
}

// MustBuildWorker builds the worker container.
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	return b.must(b.buildWorker(ctx))
}

func (b *ContainerBuilder) must(c *dig.Container, err error) *dig.Container {
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return c
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"core", func() error { return b.registerCore(container, ctx) }},
		{"DB", func() error { return registerDb(container, b.dbConnect) }},
		{"metrics", func() error { return registerMetrics(container) }},
		{"notify", func() error { return registerNotify(container) }},
		{"service", func() error { return registerDomainServices(container) }},
		{"http", func() error { return registerHTTP(container) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return container, nil
}

func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"core", func() error { return b.registerCore(container, ctx) }},
		{"DB", func() error { return registerDb(container, b.dbConnect) }},
		{"metrics", func() error { return registerMetrics(container) }},
		{"notify", func() error { return registerNotify(container) }},
		{"service", func() error { return registerDomainServices(container) }},
		{"worker", func() error { return registerWorker(container) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return container, nil
}

// MustBuildContainer builds the API container with production settings.
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds the worker container with production settings.
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func (b *ContainerBuilder) registerCore(container *dig.Container, ctx context.Context) error {
	reg, gatherer := b.registry()
	return provideAll(container,
		func() context.Context { return ctx },
		b.loadConfig,
		NewLogger,
		newResources,
		func() prometheus.Registerer { return reg },
		func() prometheus.Gatherer { return gatherer },
	)
}

func registerDb(container *dig.Container, dbConnect dbConnectFunc) error {
	providerDB := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*pgxpool.Pool, error) {
		pool, err := dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, err
		}
		if cfg.DB.AutoMigrate {
			if err := repository.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			logger.Info("db schema migrated")
		}
		return pool, nil
	}
	return provideAll(container,
		providerDB,
		repository.NewCandidateRepo,
		repository.NewOrderRepo,
	)
}
