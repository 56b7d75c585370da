package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/Chuchoruto/ISS-Tracker/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := context.Background()
	for _, tc := range []struct {
		level   string
		enabled slog.Level
		dropped slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
	} {
		t.Run(tc.level, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tc.level, LogFormat: "json"})
			assert.True(t, logger.Enabled(ctx, tc.enabled))
			assert.False(t, logger.Enabled(ctx, tc.dropped))
			assert.Same(t, logger, slog.Default())
		})
	}
}

func TestNewLogger_Format(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	text := NewLogger(&config.Config{LogLevel: "info", LogFormat: "text"})
	assert.IsType(t, &slog.TextHandler{}, text.Handler())

	json := NewLogger(&config.Config{LogLevel: "info", LogFormat: "json"})
	assert.IsType(t, &slog.JSONHandler{}, json.Handler())
}

func TestMetrics_RegisterWithFreshRegistry(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(m.Loads))

	m.Loads.WithLabelValues("success").Inc()
	m.Loads.WithLabelValues("success").Inc()
	assert.InDelta(t, 2, testutil.ToFloat64(m.Loads.WithLabelValues("success")), 0)
	assert.Len(t, m.collectors(), 15)
}
