package stats

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// Collector defines the interface for collecting one engine metric.
type Collector interface {
	Name() string                         // Name of the metric (e.g., "cpu")
	Collect(ctx context.Context) *float64 // Collect the metric value, nil on failure
	Unit() string                         // Unit of the metric (e.g., "percentage")
}

// CPUCollector collects host CPU usage.
type CPUCollector struct {
	Logger zerolog.Logger
}

func (c *CPUCollector) Name() string {
	return "cpu"
}

func (c *CPUCollector) Collect(ctx context.Context) *float64 {
	cpuPercentages, err := cpu.Percent(0, false)
	if err != nil {
		c.Logger.Error().Err(err).Msg("Failed to get CPU usage")
		return nil
	}
	if len(cpuPercentages) == 0 {
		c.Logger.Warn().Msg("CPU usage data is empty")
		return nil
	}
	return &cpuPercentages[0]
}

func (c *CPUCollector) Unit() string {
	return "percentage"
}

// MemoryCollector collects host memory utilization.
type MemoryCollector struct {
	Logger zerolog.Logger
}

func (m *MemoryCollector) Name() string {
	return "memory"
}

func (m *MemoryCollector) Collect(ctx context.Context) *float64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		m.Logger.Error().Err(err).Msg("Failed to get memory usage")
		return nil
	}
	return &vm.UsedPercent
}

func (m *MemoryCollector) Unit() string {
	return "percentage"
}

// GoroutineCollector collects the number of active goroutines.
type GoroutineCollector struct {
	Logger zerolog.Logger
}

func (g *GoroutineCollector) Name() string {
	return "goroutines"
}

func (g *GoroutineCollector) Collect(ctx context.Context) *float64 {
	n := float64(runtime.NumGoroutine())
	return &n
}

func (g *GoroutineCollector) Unit() string {
	return "count"
}
