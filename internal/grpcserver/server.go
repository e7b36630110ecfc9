package grpcserver

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"service-delivery-engine/internal/logx"
)

// ServiceName is the name reported in the grpc.health.v1 registry next to "".
const ServiceName = "service-delivery-engine"

// Server exposes the standard gRPC health service.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	logger logx.Logger
}

// New creates a health-only gRPC server. Status starts as NOT_SERVING.
func New(logger logx.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = logx.Nop()
	}
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	logOpts := []logging.Option{logging.WithLogOnEvents(logging.FinishCall)}
	base := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			logging.UnaryServerInterceptor(interceptorLogger(logger), logOpts...),
			recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			logging.StreamServerInterceptor(interceptorLogger(logger), logOpts...),
			recovery.StreamServerInterceptor(),
		),
	}
	srv := grpc.NewServer(append(base, opts...)...)
	healthpb.RegisterHealthServer(srv, hs)

	return &Server{srv: srv, health: hs, logger: logger}
}

// SetServing flips the reported status for both registered names.
func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Watch re-evaluates check every interval until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration, check func(context.Context) error) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			cctx, cancel := context.WithTimeout(ctx, interval)
			err := check(cctx)
			cancel()
			if ok := err == nil; ok != healthy {
				healthy = ok
				s.SetServing(ok)
				if err != nil {
					s.logger.Warn("grpc health degraded", logx.Err(err))
				} else {
					s.logger.Info("grpc health restored")
				}
			}
		}
	}
}

// Serve blocks serving lis until Shutdown is called.
func (s *Server) Serve(lis net.Listener) error {
	s.SetServing(true)
	s.logger.Info("grpc server started", logx.String("addr", lis.Addr().String()))
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Shutdown marks the server as not serving and stops it gracefully,
// falling back to a hard stop when ctx expires first.
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("grpc graceful stop timed out, forcing")
		s.srv.Stop()
		<-done
	}
}

// interceptorLogger adapts logx to the interceptor logger; fields arrive as key/value pairs.
func interceptorLogger(l logx.Logger) logging.Logger {
	return logging.LoggerFunc(func(_ context.Context, lvl logging.Level, msg string, kv ...any) {
		fields := make([]logx.Field, 0, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok {
				continue
			}
			fields = append(fields, logx.Any(key, kv[i+1]))
		}
		switch lvl {
		case logging.LevelDebug:
			l.Debug(msg, fields...)
		case logging.LevelWarn:
			l.Warn(msg, fields...)
		case logging.LevelError:
			l.Error(msg, fields...)
		default:
			l.Info(msg, fields...)
		}
	})
}
