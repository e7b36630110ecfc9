package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"service-delivery-engine/internal/config"
	"service-delivery-engine/internal/grpcserver"
	"service-delivery-engine/internal/logx"
)

const shutdownTimeout = 15 * time.Second

// Runner runs the API: HTTP, gRPC health and the optional pprof server.
type Runner struct {
	runFn  func(*dig.Container) error
	fatalf func(string, ...any)
	logger logx.Logger
}

// NewRunner returns a Runner.
func NewRunner() *Runner {
	return &Runner{runFn: run, fatalf: log.Fatalf, logger: newLoggerTo(log.Writer(), "info")}
}

// MustRun starts the servers using the provided DI container and blocks until shutdown.
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		r.logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		r.logger.Warn("startup aborted: startup timeout exceeded")
	default:
		r.fatalf("run error: %v", err)
	}
}

type apiIn struct {
	dig.In

	Ctx       context.Context
	Config    *config.Config
	Logger    logx.Logger
	Pool      *pgxpool.Pool
	Server    *http.Server
	Pprof     *http.Server `name:"pprof_server" optional:"true"`
	GRPC      *grpcserver.Server
	Resources *resources
}

func run(container *dig.Container) error {
	return container.Invoke(serve)
}

var listen = net.Listen

func serve(in apiIn) error {
	defer closeResources(in.Logger, in.Resources, in.Pool)

	grpcLis, err := listen("tcp", fmt.Sprintf(":%d", in.Config.GRPCPort))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	g, ctx := errgroup.WithContext(in.Ctx)

	g.Go(func() error {
		in.Logger.Info("http server listening", logx.String("addr", in.Server.Addr))
		return listenAndServe(in.Server)
	})
	if in.Pprof != nil {
		g.Go(func() error {
			in.Logger.Info("pprof server listening", logx.String("addr", in.Pprof.Addr))
			return listenAndServe(in.Pprof)
		})
	}
	g.Go(func() error { return in.GRPC.Serve(grpcLis) })
	g.Go(func() error {
		in.GRPC.Watch(ctx, 10*time.Second, in.Pool.Ping)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		in.Logger.Info("shutting down")
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		in.GRPC.Shutdown(shCtx)
		var errs []error
		for _, srv := range []*http.Server{in.Server, in.Pprof} {
			if srv == nil {
				continue
			}
			if err := srv.Shutdown(shCtx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

func listenAndServe(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func closeResources(logger logx.Logger, res *resources, pool *pgxpool.Pool) {
	if res != nil {
		if err := res.closeAll(); err != nil {
			logger.Error("resource close error", logx.Err(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
}
