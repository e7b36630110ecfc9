package app

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"service-delivery-engine/internal/logx"
	"service-delivery-engine/internal/service/countdown"
	"service-delivery-engine/internal/transport/kafka"
)

// WorkerRunner runs the order event consumer and the countdown watcher.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun runs the worker loops until the container context is cancelled.
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

type workerIn struct {
	dig.In

	Ctx       context.Context
	Logger    logx.Logger
	Pool      *pgxpool.Pool
	Consumer  *kafka.Consumer `optional:"true"`
	Watcher   *countdown.Watcher
	Resources *resources
}

func runWorker(container *dig.Container) error {
	return container.Invoke(func(in workerIn) error {
		defer closeResources(in.Logger, in.Resources, in.Pool)

		in.Logger.Info("service-delivery-worker started")
		return runLoops(in.Ctx, in.Logger,
			loop{name: "kafka consumer", run: in.Consumer.Run},
			loop{name: "countdown watcher", run: in.Watcher.Run},
		)
	})
}

type loop struct {
	name string
	run  func(context.Context) error
}

// runLoops runs every loop until one fails or ctx ends; the first failure stops the rest.
func runLoops(ctx context.Context, logger logx.Logger, loops ...loop) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, l := range loops {
		l := l
		g.Go(func() error {
			err := l.run(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("worker loop stopped", logx.String("loop", l.name), logx.Err(err))
			}
			return err
		})
	}
	return g.Wait()
}
