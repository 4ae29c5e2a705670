package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobilitycli/internal/config"
)

func TestNewLogger_TraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger, closers, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "json", Output: "console"}, &buf)
	require.NoError(t, err)
	assert.Empty(t, closers)

	ctx := WithTraceID(context.Background(), "test-trace-123")
	logger.InfoContext(ctx, "Extracted records for year", slog.Int("year", 2020))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test-trace-123", entry["trace_id"])
	assert.Equal(t, float64(2020), entry["year"])
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := NewLogger(config.LoggingConfig{Level: "info", Format: "text", Output: "console"}, &buf)
	require.NoError(t, err)

	logger.Info("Filtered records", "records", 3)

	out := buf.String()
	assert.Contains(t, out, `msg="Filtered records"`)
	assert.Contains(t, out, "records=3")
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := NewLogger(config.LoggingConfig{Level: "warn", Format: "json", Output: "console"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "shown")
}

func TestNewLogger_BothOutputs(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "nested", "app.log")

	logger, closers, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "both", FilePath: logFile}, &buf)
	require.NoError(t, err)
	require.Len(t, closers, 1)

	logger.Info("dual")
	for _, c := range closers {
		require.NoError(t, c.Close())
	}

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "dual")
	assert.Contains(t, buf.String(), "dual")
}

func TestNewLogger_FileOutputRequiresPath(t *testing.T) {
	_, _, err := NewLogger(config.LoggingConfig{Level: "info", Output: "file"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestFanoutHandler(t *testing.T) {
	var infoBuf, errBuf bytes.Buffer
	h := &fanoutHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	logger := slog.New(h).With("component", "loader")

	logger.Info("info only")
	logger.Error("both")

	assert.Contains(t, infoBuf.String(), "info only")
	assert.Contains(t, infoBuf.String(), "both")
	assert.NotContains(t, errBuf.String(), "info only")
	assert.Contains(t, errBuf.String(), `"component":"loader"`)
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	// existing IDs are preserved
	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)))
	assert.Empty(t, GetTraceID(context.Background()))
}
