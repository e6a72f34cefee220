package health

import (
	"context"
	"fmt"
	"runtime"
)

// MemoryCheckerConfig configures a MemoryChecker. Thresholds are fractions
// of MaxAlloc.
type MemoryCheckerConfig struct {
	// WarningThreshold makes the check degraded. Default: 0.8
	WarningThreshold float64 `yaml:"warning_threshold"`

	// CriticalThreshold makes the check unhealthy. Default: 0.95
	CriticalThreshold float64 `yaml:"critical_threshold"`

	// MaxAlloc is the heap budget in bytes. Zero uses the memory obtained
	// from the OS.
	MaxAlloc uint64 `yaml:"max_alloc"`
}

// MemoryChecker compares the live heap with MaxAlloc. The response cache
// and rate limit windows are the only long-lived allocations.
type MemoryChecker struct {
	config MemoryCheckerConfig
}

// NewMemoryChecker creates a MemoryChecker, fixing out of range thresholds.
func NewMemoryChecker(config MemoryCheckerConfig) *MemoryChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= 0 || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = 0.95
	}
	if config.CriticalThreshold < config.WarningThreshold {
		config.CriticalThreshold = config.WarningThreshold + 0.1
		if config.CriticalThreshold > 1 {
			config.CriticalThreshold = 0.99
		}
	}

	return &MemoryChecker{config: config}
}

func (m *MemoryChecker) Name() string { return "memory" }

func (m *MemoryChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	budget := m.config.MaxAlloc
	if budget == 0 {
		budget = stats.Sys
	}
	details := map[string]any{
		"heap_alloc_bytes": stats.HeapAlloc,
		"budget_bytes":     budget,
		"num_gc":           stats.NumGC,
		"goroutines":       runtime.NumGoroutine(),
	}
	if budget == 0 {
		return Healthy("memory stats unavailable").WithDetails(details)
	}

	ratio := float64(stats.HeapAlloc) / float64(budget)
	details["usage_percent"] = ratio * 100
	switch {
	case ratio >= m.config.CriticalThreshold:
		return Unhealthy(fmt.Sprintf("memory usage critical: %.1f%%", ratio*100), ErrCheckFailed).WithDetails(details)
	case ratio >= m.config.WarningThreshold:
		return Degraded(fmt.Sprintf("memory usage high: %.1f%%", ratio*100)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("memory usage normal: %.1f%%", ratio*100)).WithDetails(details)
	}
}
