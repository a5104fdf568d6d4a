// Package interp drives the external frame-interpolation tool. Supported
// flags vary between builds of the tool, so the package probes its help
// output once per run and only emits flags the binary actually understands.
package interp

import (
	"regexp"
	"strings"
)

// CapabilityMap records which optional features a particular interpolation
// binary supports. Built once per executable path and never mutated after
// construction.
type CapabilityMap struct {
	// Version is the dotted version string scraped from the help text,
	// empty when none was found.
	Version string

	// Flags is the raw set of single-character flags recognized in the
	// help output, keyed by flag letter.
	Flags map[string]bool

	Tiling      bool // -t tile size
	UHD         bool // -u UHD mode
	SpatialTTA  bool // -x spatial test-time augmentation
	TemporalTTA bool // -z temporal test-time augmentation
	Threads     bool // -j load:proc:save thread spec
	Batch       bool // -n target frame count (multi-frame output)
	Timestep    bool // -s interpolation timestep
	ModelPath   bool // -m model directory override
	GPU         bool // -g GPU device selection
}

var (
	versionPattern = regexp.MustCompile(`(?i)\bv(?:ersion)?[:\s]*v?([0-9]+(?:\.[0-9]+)+)`)
	flagPattern    = regexp.MustCompile(`(?m)^\s*-([0-9A-Za-z])\b`)
)

// ParseHelpText extracts a CapabilityMap from a tool's help output. It is a
// pure function: the same text always yields the same map, and empty text
// yields a map with every capability false and no version.
func ParseHelpText(text string) CapabilityMap {
	caps := CapabilityMap{Flags: make(map[string]bool)}
	if strings.TrimSpace(text) == "" {
		return caps
	}

	if m := versionPattern.FindStringSubmatch(text); len(m) > 1 {
		caps.Version = m[1]
	}

	for _, m := range flagPattern.FindAllStringSubmatch(text, -1) {
		caps.Flags[m[1]] = true
	}

	lower := strings.ToLower(text)
	has := func(letter, keyword string) bool {
		return caps.Flags[letter] || strings.Contains(lower, keyword)
	}

	caps.Tiling = has("t", "tile")
	caps.UHD = has("u", "uhd")
	caps.SpatialTTA = has("x", "spatial")
	caps.TemporalTTA = has("z", "temporal")
	caps.Threads = has("j", "thread")
	caps.Batch = has("n", "batch")
	caps.Timestep = has("s", "timestep")
	caps.ModelPath = has("m", "model")
	caps.GPU = has("g", "gpu")

	return caps
}
