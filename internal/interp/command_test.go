package interp

import (
	"reflect"
	"testing"
)

func allCapabilities() CapabilityMap {
	return CapabilityMap{
		Flags:       map[string]bool{},
		Tiling:      true,
		UHD:         true,
		SpatialTTA:  true,
		TemporalTTA: true,
		Threads:     true,
		Batch:       true,
		Timestep:    true,
		ModelPath:   true,
		GPU:         true,
	}
}

func allOptions() Options {
	return Options{
		ModelPath:   "models/rife-v4.6",
		Timestep:    0.5,
		NumFrames:   3,
		TileSize:    256,
		UHD:         true,
		SpatialTTA:  true,
		TemporalTTA: true,
		ThreadSpec:  "1:2:2",
		GPU:         0,
	}
}

func TestBuildCommandMandatoryOnly(t *testing.T) {
	tests := []struct {
		name string
		caps CapabilityMap
		opts Options
	}{
		{"nothing supported, everything requested", ParseHelpText(""), allOptions()},
		{"everything supported, nothing requested", allCapabilities(), DefaultOptions()},
		{"nothing supported, nothing requested", ParseHelpText(""), DefaultOptions()},
	}

	want := []string{"rife", "-0", "a.png", "-1", "b.png", "-o", "out.png"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildCommand("rife", "a.png", "b.png", "out.png", tt.caps, tt.opts)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("BuildCommand = %v, want %v", got, want)
			}
		})
	}
}

func TestBuildCommandFullySupported(t *testing.T) {
	got := BuildCommand("rife", "a.png", "b.png", "out.png", allCapabilities(), allOptions())
	want := []string{
		"rife", "-0", "a.png", "-1", "b.png", "-o", "out.png",
		"-m", "models/rife-v4.6",
		"-s", "0.5",
		"-n", "3",
		"-t", "256",
		"-u",
		"-x",
		"-z",
		"-j", "1:2:2",
		"-g", "0",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildCommand = %v, want %v", got, want)
	}
}

func TestBuildCommandNeverEmitsUnsupportedFlags(t *testing.T) {
	opts := allOptions()

	// Flip each capability off in turn and make sure its flag disappears.
	tests := []struct {
		name    string
		mutate  func(*CapabilityMap)
		badFlag string
	}{
		{"no model", func(c *CapabilityMap) { c.ModelPath = false }, "-m"},
		{"no timestep", func(c *CapabilityMap) { c.Timestep = false }, "-s"},
		{"no batch", func(c *CapabilityMap) { c.Batch = false }, "-n"},
		{"no tiling", func(c *CapabilityMap) { c.Tiling = false }, "-t"},
		{"no uhd", func(c *CapabilityMap) { c.UHD = false }, "-u"},
		{"no spatial", func(c *CapabilityMap) { c.SpatialTTA = false }, "-x"},
		{"no temporal", func(c *CapabilityMap) { c.TemporalTTA = false }, "-z"},
		{"no threads", func(c *CapabilityMap) { c.Threads = false }, "-j"},
		{"no gpu", func(c *CapabilityMap) { c.GPU = false }, "-g"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := allCapabilities()
			tt.mutate(&caps)

			args := BuildCommand("rife", "a.png", "b.png", "out.png", caps, opts)
			for _, arg := range args {
				if arg == tt.badFlag {
					t.Errorf("flag %s emitted despite capability being false: %v", tt.badFlag, args)
				}
			}
		})
	}
}

func TestBuildCommandGPUZeroIsValid(t *testing.T) {
	caps := allCapabilities()

	opts := DefaultOptions()
	opts.GPU = 0
	args := BuildCommand("rife", "a.png", "b.png", "out.png", caps, opts)

	found := false
	for i, arg := range args {
		if arg == "-g" && i+1 < len(args) && args[i+1] == "0" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected -g 0 for GPU device 0, got %v", args)
	}

	opts.GPU = -1
	args = BuildCommand("rife", "a.png", "b.png", "out.png", caps, opts)
	for _, arg := range args {
		if arg == "-g" {
			t.Errorf("expected no -g for unset GPU, got %v", args)
		}
	}
}

func TestBuildCommandDeterministicOrder(t *testing.T) {
	caps := allCapabilities()
	opts := allOptions()

	first := BuildCommand("rife", "a.png", "b.png", "out.png", caps, opts)
	for i := 0; i < 10; i++ {
		again := BuildCommand("rife", "a.png", "b.png", "out.png", caps, opts)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("command order not deterministic: %v vs %v", first, again)
		}
	}
}
