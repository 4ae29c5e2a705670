package infrastructure

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobilitycli/internal/config"
)

func TestReadSystemStats(t *testing.T) {
	start := time.Now().Add(-time.Second)
	stats := ReadSystemStats("quality", start)

	assert.Equal(t, "quality", stats.Command)
	assert.Positive(t, stats.GoRoutines)
	assert.Positive(t, stats.HeapAlloc)
	assert.GreaterOrEqual(t, stats.Elapsed, time.Second)

	attr := stats.LogAttrs()
	assert.Equal(t, "runtime", attr.Key)
	assert.Equal(t, slog.KindGroup, attr.Value.Kind())
}

func TestSystemMetrics_Record(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.Enabled = true
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "prometheus"

	providers, err := InitializeOTel(cfg, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewSystemMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.Record(context.Background(), ReadSystemStats("report", time.Now()))

	path := filepath.Join(t.TempDir(), "runtime.prom")
	require.NoError(t, providers.WriteMetricsFile(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "mobility_goroutines")
	assert.Contains(t, text, "mobility_memory_heap_bytes")
	assert.Contains(t, text, "mobility_command_duration_seconds")
	assert.Contains(t, text, `command="report"`)
}

func TestSystemMetrics_NilSafe(t *testing.T) {
	var m *SystemMetrics
	assert.NotPanics(t, func() {
		m.Record(context.Background(), ReadSystemStats("x", time.Now()))
	})
}
