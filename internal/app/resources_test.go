package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/stretchr/testify/require"
)

func TestResources_CloseAllReverseOrder(t *testing.T) {
	t.Parallel()

	res := newResources()
	var order []string
	res.onClose("first", func() error { order = append(order, "first"); return nil })
	res.onClose("second", func() error { order = append(order, "second"); return errors.New("stuck") })
	res.onClose("third", func() error { order = append(order, "third"); return nil })

	err := res.closeAll()
	require.ErrorContains(t, err, "second: stuck")
	require.Equal(t, []string{"third", "second", "first"}, order)

	require.NoError(t, res.closeAll(), "closers run once")
}

func TestResources_HealthChecksAreCopied(t *testing.T) {
	t.Parallel()

	res := newResources()
	res.check(healthgo.Config{Name: "redis", Check: func(context.Context) error { return nil }})

	checks := res.healthChecks()
	checks[0].Name = "mutated"
	require.Equal(t, "redis", res.healthChecks()[0].Name)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, parseLevel("warning"))
	require.Equal(t, slog.LevelError, parseLevel(" error "))
	require.Equal(t, slog.LevelInfo, parseLevel(""))

	var buf bytes.Buffer
	l := newLoggerTo(&buf, "warn")
	l.Info("hidden")
	l.Warn("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}
