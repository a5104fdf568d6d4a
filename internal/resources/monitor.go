package resources

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Monitor samples memory in the background, publishes snapshots onto a
// channel, and invokes an optional callback per sample. Publishing never
// blocks: a consumer that stops draining the channel just misses samples,
// it does not stall the monitor.
type Monitor struct {
	limits   Limits
	interval time.Duration
	snap     SnapshotFunc
	onSample func(Snapshot)
	log      zerolog.Logger

	snapshots chan Snapshot
	stop      chan struct{}
	stopOnce  sync.Once
	started   atomic.Bool
	done      chan struct{}
}

// NewMonitor builds a monitor sampling at the given interval. onSample may be
// nil. A nil snap selects the real /proc reader.
func NewMonitor(limits Limits, interval time.Duration, snap SnapshotFunc, onSample func(Snapshot), log zerolog.Logger) *Monitor {
	if snap == nil {
		snap = ReadSnapshot
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Monitor{
		limits:    limits,
		interval:  interval,
		snap:      snap,
		onSample:  onSample,
		log:       log,
		snapshots: make(chan Snapshot, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Snapshots exposes the sample stream. The channel holds only the most
// recent unconsumed sample.
func (m *Monitor) Snapshots() <-chan Snapshot { return m.snapshots }

// Start launches the sampling loop.
func (m *Monitor) Start() {
	if m.started.Swap(true) {
		return
	}
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				snap, err := m.snap()
				if err != nil {
					m.log.Warn().Err(err).Msg("memory sample failed")
					continue
				}
				m.observe(snap)
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *Monitor) observe(snap Snapshot) {
	// Critical first: it is the more severe signal, but both thresholds are
	// independent checks.
	if snap.UsedPercent > m.limits.CriticalMemoryPercent {
		m.log.Error().
			Float64("used_percent", snap.UsedPercent).
			Float64("critical_percent", m.limits.CriticalMemoryPercent).
			Int("available_mb", snap.AvailableMB).
			Msg("memory usage critical")
	}
	if snap.UsedPercent > m.limits.WarnMemoryPercent {
		m.log.Warn().
			Float64("used_percent", snap.UsedPercent).
			Float64("warn_percent", m.limits.WarnMemoryPercent).
			Msg("memory usage high")
	}

	// Keep only the freshest sample in the channel.
	select {
	case m.snapshots <- snap:
	default:
		select {
		case <-m.snapshots:
		default:
		}
		select {
		case m.snapshots <- snap:
		default:
		}
	}

	if m.onSample != nil {
		m.onSample(snap)
	}
}

// Stop halts sampling. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		if m.started.Load() {
			<-m.done
		}
	})
}
