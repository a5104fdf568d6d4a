package resources

import (
	"bufio"
	"errors"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Snapshot is a point-in-time view of system and process memory. Snapshots
// are produced on demand or by the background Monitor and are never mutated
// by consumers.
type Snapshot struct {
	TotalMB        int
	AvailableMB    int
	UsedMB         int
	UsedPercent    float64
	ProcessMB      int
	ProcessPercent float64
}

// SnapshotFunc produces a memory snapshot. The Governor takes one so tests
// can substitute fixed readings.
type SnapshotFunc func() (Snapshot, error)

// ReadSnapshot samples /proc/meminfo and /proc/self/statm. On systems without
// /proc it falls back to the Go runtime's own accounting, which only sees
// this process; the fallback assumes an 8 GB machine the same way we do when
// memory stats are unreliable elsewhere.
func ReadSnapshot() (Snapshot, error) {
	snap, err := readProcMeminfo()
	if err != nil {
		snap = fallbackSnapshot()
	}

	if rssMB, err := readProcessRSS(); err == nil {
		snap.ProcessMB = rssMB
		if snap.TotalMB > 0 {
			snap.ProcessPercent = float64(rssMB) / float64(snap.TotalMB) * 100
		}
	}

	return snap, nil
}

func readProcMeminfo() (Snapshot, error) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()

	var totalKB, availKB int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			totalKB = meminfoKB(line)
		case strings.HasPrefix(line, "MemAvailable:"):
			availKB = meminfoKB(line)
		}
	}
	if err := sc.Err(); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		TotalMB:     totalKB / 1024,
		AvailableMB: availKB / 1024,
	}
	snap.UsedMB = snap.TotalMB - snap.AvailableMB
	if snap.TotalMB > 0 {
		snap.UsedPercent = float64(snap.UsedMB) / float64(snap.TotalMB) * 100
	}
	return snap, nil
}

func meminfoKB(line string) int {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	v, _ := strconv.Atoi(fields[1])
	return v
}

// readProcessRSS returns this process's resident set in MB from statm field 2
// times the page size.
func readProcessRSS() (int, error) {
	b, err := os.ReadFile("/proc/self/statm")
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(b))
	if len(fields) < 2 {
		return 0, errors.New("statm: unexpected format")
	}
	pages, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, err
	}
	return int(pages * uint64(os.Getpagesize()) / (1024 * 1024)), nil
}

func fallbackSnapshot() Snapshot {
	const assumedTotalMB = 8 * 1024

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	usedMB := int(m.Sys / (1024 * 1024))
	if usedMB > assumedTotalMB {
		usedMB = assumedTotalMB
	}
	return Snapshot{
		TotalMB:     assumedTotalMB,
		AvailableMB: assumedTotalMB - usedMB,
		UsedMB:      usedMB,
		UsedPercent: float64(usedMB) / float64(assumedTotalMB) * 100,
		ProcessMB:   int(m.Alloc / (1024 * 1024)),
	}
}
