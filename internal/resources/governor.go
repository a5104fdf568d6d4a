package resources

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// memoryPerWorkerMB is the working-set budget assumed for one preprocessing
// worker when sizing pools.
const memoryPerWorkerMB = 500

// minChunkMB is the hard floor for chunk sizing.
const minChunkMB = 10

// ResourceKind tags what a ResourceError ran out of.
type ResourceKind string

const (
	// ResourceMemory indicates insufficient or critically scarce memory.
	ResourceMemory ResourceKind = "memory"
)

// ResourceError is raised by pre-flight checks before any expensive resource
// is acquired. It is never the result of a failed allocation.
type ResourceError struct {
	Kind ResourceKind
	Msg  string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("insufficient %s: %s", e.Kind, e.Msg)
}

// Governor hands out memory-aware worker pools and tracks them so they can
// all be shut down together. Construct one per process and pass it by
// reference; there is no package-level singleton.
type Governor struct {
	limits   Limits
	log      zerolog.Logger
	snap     SnapshotFunc
	cpuCount func() int

	mu    sync.Mutex
	pools map[string]*WorkerPool

	monitor  *Monitor
	shutOnce sync.Once
}

// NewGovernor validates the limits, starts the background memory monitor and
// returns a ready Governor.
func NewGovernor(limits Limits, log zerolog.Logger) (*Governor, error) {
	return newGovernor(limits, log, ReadSnapshot, runtime.NumCPU, 5*time.Second)
}

func newGovernor(limits Limits, log zerolog.Logger, snap SnapshotFunc, cpuCount func() int, monitorInterval time.Duration) (*Governor, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	g := &Governor{
		limits:   limits,
		log:      log,
		snap:     snap,
		cpuCount: cpuCount,
		pools:    make(map[string]*WorkerPool),
	}
	g.monitor = NewMonitor(limits, monitorInterval, snap, nil, log)
	g.monitor.Start()
	return g, nil
}

// Limits returns the budget in effect.
func (g *Governor) Limits() Limits { return g.limits }

// CheckResources fails with a ResourceError when available memory is below
// requiredMB or usage is past the critical threshold. It has no side effects;
// call it before allocating, not during.
func (g *Governor) CheckResources(requiredMB int) error {
	snap, err := g.snap()
	if err != nil {
		return fmt.Errorf("cannot sample memory: %w", err)
	}

	if snap.AvailableMB < requiredMB {
		return &ResourceError{
			Kind: ResourceMemory,
			Msg:  fmt.Sprintf("need %d MB, %d MB available", requiredMB, snap.AvailableMB),
		}
	}
	if snap.UsedPercent > g.limits.CriticalMemoryPercent {
		return &ResourceError{
			Kind: ResourceMemory,
			Msg: fmt.Sprintf("memory usage %.1f%% past critical threshold %.1f%%",
				snap.UsedPercent, g.limits.CriticalMemoryPercent),
		}
	}
	return nil
}

// OptimalWorkers computes a safe worker count from the current snapshot:
// min(configured max, available/500MB, floor(cpus*0.75)), with every term
// floored to 1. Available memory is capped at the configured MaxMemoryMB
// budget. An unreadable CPU count is treated as one CPU.
func (g *Governor) OptimalWorkers() int {
	memWorkers := 1
	if snap, err := g.snap(); err == nil {
		avail := snap.AvailableMB
		// The configured budget caps what the machine reports.
		if g.limits.MaxMemoryMB > 0 && g.limits.MaxMemoryMB < avail {
			avail = g.limits.MaxMemoryMB
		}
		if n := avail / memoryPerWorkerMB; n > 1 {
			memWorkers = n
		}
	}

	cpus := 1
	if g.cpuCount != nil {
		if n := g.cpuCount(); n > 0 {
			cpus = n
		}
	}
	cpuWorkers := int(float64(cpus) * 0.75)
	if cpuWorkers < 1 {
		cpuWorkers = 1
	}

	workers := g.limits.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	if memWorkers < workers {
		workers = memWorkers
	}
	if cpuWorkers < workers {
		workers = cpuWorkers
	}
	return workers
}

// WithPool runs fn with a worker pool tracked under id. maxWorkers <= 0
// selects OptimalWorkers(); anything larger than the configured maximum is
// clamped. Resources are checked before the pool exists. On return — normal
// or error — the pool is drained, shut down, and removed from tracking.
func (g *Governor) WithPool(ctx context.Context, id string, maxWorkers int, fn func(*WorkerPool) error) error {
	workers := maxWorkers
	if workers <= 0 {
		workers = g.OptimalWorkers()
	} else if workers > g.limits.MaxWorkers {
		workers = g.limits.MaxWorkers
	}

	if err := g.CheckResources(workers * memoryPerWorkerMB); err != nil {
		return err
	}

	pool := newWorkerPool(ctx, id, workers)

	g.mu.Lock()
	if _, exists := g.pools[id]; exists {
		g.mu.Unlock()
		pool.abort()
		return fmt.Errorf("worker pool %q already registered", id)
	}
	g.pools[id] = pool
	g.mu.Unlock()

	g.log.Debug().Str("pool", id).Int("workers", workers).Msg("worker pool created")

	defer func() {
		_ = pool.Wait() // in-flight work finishes on every exit path
		pool.abort()

		g.mu.Lock()
		delete(g.pools, id)
		g.mu.Unlock()
	}()

	return fn(pool)
}

// ChunkSize splits a workload of totalMB into memory-bounded units:
// min(available/4, configured chunk size, total/minChunks), floored to 10 MB.
func (g *Governor) ChunkSize(totalMB, minChunks int) int {
	candidate := g.limits.ChunkSizeMB

	if snap, err := g.snap(); err == nil {
		if memBound := snap.AvailableMB / 4; memBound < candidate {
			candidate = memBound
		}
	}
	if minChunks > 0 {
		if splitBound := totalMB / minChunks; splitBound < candidate {
			candidate = splitBound
		}
	}
	if candidate < minChunkMB {
		candidate = minChunkMB
	}
	return candidate
}

// ShutdownAll aborts every tracked pool without waiting and stops the
// background monitor. Idempotent.
func (g *Governor) ShutdownAll() {
	g.shutOnce.Do(func() {
		g.mu.Lock()
		for id, pool := range g.pools {
			pool.abort()
			delete(g.pools, id)
		}
		g.mu.Unlock()

		g.monitor.Stop()
		g.log.Debug().Msg("resource governor shut down")
	})
}
