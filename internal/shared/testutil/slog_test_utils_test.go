package testutil

import (
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("Raw data loaded", slog.Int("rows", 120))
		logger.Error("Raw data file not found", slog.String("path", "/tmp/x.csv"))

		assert.Equal(t, 2, handler.Count())
		assert.True(t, handler.ContainsMessage("Raw data loaded"))
		assert.True(t, handler.ContainsAttr("rows", int64(120)))
		assert.True(t, handler.ContainsAttr("path", "/tmp/x.csv"))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	})

	t.Run("keeps attributes from With", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With("component", "indicator_service").Info("Filtered records", "records", 3)

		record, ok := handler.FindRecord("Filtered")
		require.True(t, ok)
		assert.Equal(t, "indicator_service", record.Attrs["component"])
		assert.Equal(t, int64(3), record.Attrs["records"])
	})

	t.Run("flattens groups", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.WithGroup("quality").Info("audit", "missing", 7)

		assert.True(t, handler.ContainsAttr("quality.missing", int64(7)))
	})

	t.Run("clear functionality", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.With("k", "v").Info("message 2")
		assert.Equal(t, 2, handler.Count(), "derived loggers share one store")

		handler.Clear()
		assert.Equal(t, 0, handler.Count())
	})

	t.Run("assertion helpers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("important message", slog.String("component", "test"))
		logger.Warn("warning message", slog.Int("retry", 3))

		AssertLogContains(t, handler, slog.LevelInfo, "important")
		AssertLogAttr(t, handler, "component", "test")
		AssertNoErrors(t, handler)
	})

	t.Run("thread safety", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				logger.Info("concurrent log", slog.Int("goroutine", n))
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 10, handler.Count())
	})
}

func TestDatasetFixtures(t *testing.T) {
	fixtures := NewDatasetFixtures(t)

	assert.DirExists(t, fixtures.Paths.RawDir)
	assert.DirExists(t, fixtures.Paths.ProcessedDir)
	assert.NoFileExists(t, fixtures.Paths.RawDataCSV)

	path := fixtures.WriteRaw(t, RawIndicatorsCSV)
	assert.Equal(t, fixtures.Paths.RawDataCSV, path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, RawIndicatorsCSV, string(content))
}
