// Package resources governs how much memory and CPU the pipeline is allowed
// to use: it samples system memory, sizes worker pools, and tracks every pool
// it hands out so they can all be torn down together.
package resources

import "fmt"

// Limits is the caller-owned resource budget for a pipeline run. It is
// immutable once handed to a Governor.
type Limits struct {
	MaxWorkers            int
	MaxMemoryMB           int
	MaxCPUPercent         float64
	ChunkSizeMB           int
	WarnMemoryPercent     float64
	CriticalMemoryPercent float64
}

// DefaultLimits returns a conservative budget suitable for a desktop machine.
func DefaultLimits() Limits {
	return Limits{
		MaxWorkers:            4,
		MaxMemoryMB:           4096,
		MaxCPUPercent:         75,
		ChunkSizeMB:           100,
		WarnMemoryPercent:     75,
		CriticalMemoryPercent: 90,
	}
}

// Validate checks the structural invariants of the budget.
func (l Limits) Validate() error {
	if l.MaxWorkers < 1 {
		return fmt.Errorf("max workers must be at least 1, got %d", l.MaxWorkers)
	}
	if l.CriticalMemoryPercent <= l.WarnMemoryPercent {
		return fmt.Errorf("critical memory percent (%.0f) must exceed warn percent (%.0f)",
			l.CriticalMemoryPercent, l.WarnMemoryPercent)
	}
	return nil
}
