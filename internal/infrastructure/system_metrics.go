package infrastructure

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SystemMetrics records Go runtime statistics for one command run
type SystemMetrics struct {
	goRoutines     metric.Int64Gauge
	heapAlloc      metric.Int64Gauge
	totalAlloc     metric.Int64Gauge
	memorySystem   metric.Int64Gauge
	gcCount        metric.Int64Gauge
	commandSeconds metric.Float64Histogram
}

// NewSystemMetrics creates the runtime instruments on meter
func NewSystemMetrics(meter metric.Meter) (*SystemMetrics, error) {
	goRoutines, err := meter.Int64Gauge(
		"mobility_goroutines",
		metric.WithDescription("Number of goroutines when the command finished"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Int64Gauge(
		"mobility_memory_heap_bytes",
		metric.WithDescription("Heap bytes in use when the command finished"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	totalAlloc, err := meter.Int64Gauge(
		"mobility_memory_allocated_bytes",
		metric.WithDescription("Cumulative bytes allocated by the command"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	memorySystem, err := meter.Int64Gauge(
		"mobility_memory_system_bytes",
		metric.WithDescription("Memory obtained from the OS in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"mobility_gc_cycles",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	commandSeconds, err := meter.Float64Histogram(
		"mobility_command_duration_seconds",
		metric.WithDescription("Wall time of a CLI command"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &SystemMetrics{
		goRoutines:     goRoutines,
		heapAlloc:      heapAlloc,
		totalAlloc:     totalAlloc,
		memorySystem:   memorySystem,
		gcCount:        gcCount,
		commandSeconds: commandSeconds,
	}, nil
}

// SystemStats holds a snapshot of runtime statistics
type SystemStats struct {
	Command      string
	GoRoutines   int64
	HeapAlloc    int64
	TotalAlloc   int64
	MemorySystem int64
	GCCount      uint32
	LastGCPause  time.Duration
	Elapsed      time.Duration
	Timestamp    time.Time
}

// ReadSystemStats takes a runtime snapshot for a command started at start
func ReadSystemStats(command string, start time.Time) *SystemStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &SystemStats{
		Command:      command,
		GoRoutines:   int64(runtime.NumGoroutine()),
		HeapAlloc:    int64(memStats.HeapAlloc),
		TotalAlloc:   int64(memStats.TotalAlloc),
		MemorySystem: int64(memStats.Sys),
		GCCount:      memStats.NumGC,
		LastGCPause:  time.Duration(memStats.PauseNs[(memStats.NumGC+255)%256]),
		Elapsed:      time.Since(start),
		Timestamp:    time.Now(),
	}
}

// Record writes stats to the instruments. Safe on a nil receiver.
func (sm *SystemMetrics) Record(ctx context.Context, stats *SystemStats) {
	if sm == nil || stats == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("command", stats.Command))

	sm.goRoutines.Record(ctx, stats.GoRoutines, attrs)
	sm.heapAlloc.Record(ctx, stats.HeapAlloc, attrs)
	sm.totalAlloc.Record(ctx, stats.TotalAlloc, attrs)
	sm.memorySystem.Record(ctx, stats.MemorySystem, attrs)
	sm.gcCount.Record(ctx, int64(stats.GCCount), attrs)
	sm.commandSeconds.Record(ctx, stats.Elapsed.Seconds(), attrs)
}

// LogAttrs returns stats as a log group
func (stats *SystemStats) LogAttrs() slog.Attr {
	return slog.Group("runtime",
		slog.Duration("elapsed", stats.Elapsed),
		slog.Int64("goroutines", stats.GoRoutines),
		slog.Int64("heap_mb", stats.HeapAlloc/1024/1024),
		slog.Int64("alloc_mb", stats.TotalAlloc/1024/1024),
		slog.Int64("system_mb", stats.MemorySystem/1024/1024),
		slog.Uint64("gc_count", uint64(stats.GCCount)),
		slog.Int64("last_gc_pause_us", stats.LastGCPause.Microseconds()),
	)
}
