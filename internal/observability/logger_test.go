package observability

import (
	"log/slog"
	"testing"

	"github.com/johnjung/speculative-weather-report/internal/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_FromConfig(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level   string
		format  string
		enabled slog.Level
		hidden  slog.Level
	}{
		{"debug", "text", slog.LevelDebug, slog.LevelDebug - 1},
		{"WARN", "json", slog.LevelWarn, slog.LevelInfo},
		{"warning", "json", slog.LevelWarn, slog.LevelInfo},
		{"error", "json", slog.LevelError, slog.LevelWarn},
		{"verbose", "json", slog.LevelInfo, slog.LevelDebug},
	}
	for _, tt := range tests {
		logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: tt.format})
		require.NotNil(t, logger)
		assert.True(t, logger.Enabled(t.Context(), tt.enabled), tt.level)
		assert.False(t, logger.Enabled(t.Context(), tt.hidden), tt.level)
		assert.Same(t, logger, slog.Default(), tt.level)
	}
}

func TestNewMetricsForTesting_Unregistered(t *testing.T) {
	m1 := NewMetricsForTesting()
	m2 := NewMetricsForTesting()

	m1.FieldErrors.WithLabelValues("temperature", "parse").Inc()
	assert.InDelta(t, 1, testutil.ToFloat64(m1.FieldErrors.WithLabelValues("temperature", "parse")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m2.FieldErrors.WithLabelValues("temperature", "parse")), 0)
}
