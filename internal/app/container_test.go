package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"service-delivery-engine/internal/config"
	"service-delivery-engine/internal/grpcserver"
	"service-delivery-engine/internal/http/handlers"
	"service-delivery-engine/internal/logx"
	"service-delivery-engine/internal/ports/notification"
	"service-delivery-engine/internal/storage/marks"
	"service-delivery-engine/internal/transport/notify"
)

func stubDB(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error) {
	return &pgxpool.Pool{}, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.LogLevel = "error"
	return &cfg
}

func testBuilder(cfg *config.Config, reg *prometheus.Registry) *ContainerBuilder {
	return NewContainerBuilder().
		WithConfig(cfg).
		WithRegistry(reg).
		WithDBConnect(stubDB).
		WithLogFatalf(func(format string, args ...interface{}) {
			panic("unexpected fatal: " + format)
		})
}

type apiGraph struct {
	dig.In

	Server       *http.Server
	Pprof        *http.Server `name:"pprof_server" optional:"true"`
	GRPC         *grpcserver.Server
	Health       *healthgo.Health
	Base         *handlers.Handlers
	Availability *handlers.AvailabilityHandler
	Candidates   *handlers.CandidateHandler
	Orders       *handlers.OrderHandler
	Publisher    notification.Publisher
}

func TestMustBuild_ProvidesAPIGraph(t *testing.T) {
	t.Parallel()

	c := testBuilder(testConfig(), prometheus.NewRegistry()).MustBuild(context.Background())

	err := c.Invoke(func(g apiGraph) {
		require.NotNil(t, g.Server)
		require.Equal(t, ":8080", g.Server.Addr)
		require.Greater(t, g.Server.ReadHeaderTimeout, time.Duration(0))
		require.Greater(t, g.Server.ReadTimeout, time.Duration(0))
		require.Greater(t, g.Server.WriteTimeout, time.Duration(0))
		require.Greater(t, g.Server.IdleTimeout, time.Duration(0))
		require.Nil(t, g.Pprof, "pprof is disabled by default")

		require.NotNil(t, g.GRPC)
		require.NotNil(t, g.Health)
		require.NotNil(t, g.Base)
		require.NotNil(t, g.Availability)
		require.NotNil(t, g.Candidates)
		require.NotNil(t, g.Orders)
		require.IsType(t, &notify.LogPublisher{}, g.Publisher)
	})
	require.NoError(t, err)
}

func TestMustBuild_PprofEnabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Pprof.Enabled = true
	cfg.Pprof.Addr = "127.0.0.1:6061"

	c := testBuilder(cfg, prometheus.NewRegistry()).MustBuild(context.Background())
	err := c.Invoke(func(g apiGraph) {
		require.NotNil(t, g.Pprof)
		require.Equal(t, "127.0.0.1:6061", g.Pprof.Addr)
	})
	require.NoError(t, err)
}

func TestMustBuild_RoutesServePing(t *testing.T) {
	t.Parallel()

	c := testBuilder(testConfig(), prometheus.NewRegistry()).MustBuild(context.Background())
	err := c.Invoke(func(srv *http.Server) {
		rr := newRecorder()
		srv.Handler.ServeHTTP(rr, newRequest(http.MethodGet, "/ping"))
		require.Equal(t, http.StatusOK, rr.Code)

		rr = newRecorder()
		srv.Handler.ServeHTTP(rr, newRequest(http.MethodGet, "/metrics"))
		require.Equal(t, http.StatusOK, rr.Code)
		require.Contains(t, rr.Body.String(), "http_requests_total")
	})
	require.NoError(t, err)
}

func TestMustBuildWorker_ProvidesWatcherWithoutKafka(t *testing.T) {
	t.Parallel()

	c := testBuilder(testConfig(), prometheus.NewRegistry()).MustBuildWorker(context.Background())

	err := c.Invoke(func(in workerIn) {
		require.NotNil(t, in.Watcher)
		require.Nil(t, in.Consumer)
		require.NotNil(t, in.Resources)
	})
	require.NoError(t, err)

	err = c.Invoke(func(store notification.MarkStore) {
		require.IsType(t, &marks.MemoryStore{}, store)
	})
	require.NoError(t, err)
}

func TestProvideMetrics_SharedRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	first, err := provideMetrics(reg)
	require.NoError(t, err)
	second, err := provideMetrics(reg)
	require.NoError(t, err)

	first.CountdownAlerts.Inc()
	second.CountdownAlerts.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	var got float64
	for _, f := range families {
		if f.GetName() == "countdown_alerts_total" {
			got = f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	require.Equal(t, float64(2), got)
}

func TestMustBuild_InvokeSurfacesConfigErrors(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Availability.TimeZone = "Nowhere/Special"

	c := testBuilder(cfg, prometheus.NewRegistry()).MustBuild(context.Background())
	err := c.Invoke(func(*handlers.AvailabilityHandler) {})
	require.Error(t, err)
}
