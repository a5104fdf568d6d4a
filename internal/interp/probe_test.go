package interp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"framelapse/internal/mocks"
)

// fakeExe creates an empty file so the existence check passes without
// anything actually being executable.
func fakeExe(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rife-ncnn-vulkan")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProbeMissingExecutable(t *testing.T) {
	runner := mocks.NewRunner()
	p := &Prober{Runner: runner}

	missing := filepath.Join(t.TempDir(), "does-not-exist")
	_, err := p.Probe(context.Background(), missing)

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Path != missing {
		t.Errorf("NotFoundError.Path = %q, want %q", nf.Path, missing)
	}
	if len(runner.Calls) != 0 {
		t.Errorf("expected no subprocess spawn for missing executable, got %d calls", len(runner.Calls))
	}
}

func TestProbeFirstAttemptWins(t *testing.T) {
	exe := fakeExe(t)
	runner := mocks.NewRunner()
	runner.Script(exe, []string{"-h"}, []byte(rifeHelp), nil)

	p := &Prober{Runner: runner}
	caps, err := p.Probe(context.Background(), exe)
	if err != nil {
		t.Fatal(err)
	}
	if caps.Version != "4.6" {
		t.Errorf("expected version 4.6, got %q", caps.Version)
	}
	if !caps.UHD || !caps.Tiling {
		t.Errorf("expected capabilities from help text, got %+v", caps)
	}
	if len(runner.Calls) != 1 {
		t.Errorf("expected exactly one attempt, got %d", len(runner.Calls))
	}
}

func TestProbeFallsBackToLongHelp(t *testing.T) {
	exe := fakeExe(t)
	runner := mocks.NewRunner()
	// -h fails silently, --help prints the usage.
	runner.Script(exe, []string{"-h"}, nil, fmt.Errorf("exit status 1"))
	runner.Script(exe, []string{"--help"}, []byte(rifeHelp), nil)

	p := &Prober{Runner: runner}
	caps, err := p.Probe(context.Background(), exe)
	if err != nil {
		t.Fatal(err)
	}
	if caps.Version != "4.6" {
		t.Errorf("expected version 4.6 from --help fallback, got %q", caps.Version)
	}
	if len(runner.Calls) != 2 {
		t.Errorf("expected two attempts, got %d", len(runner.Calls))
	}
}

func TestProbeIgnoresExitStatus(t *testing.T) {
	// rife prints its help to stderr and exits non-zero; the output still
	// counts.
	exe := fakeExe(t)
	runner := mocks.NewRunner()
	runner.Script(exe, []string{"-h"}, []byte(rifeHelp), fmt.Errorf("exit status 255"))

	p := &Prober{Runner: runner}
	caps, err := p.Probe(context.Background(), exe)
	if err != nil {
		t.Fatal(err)
	}
	if caps.Version != "4.6" {
		t.Errorf("expected version despite non-zero exit, got %q", caps.Version)
	}
}

func TestProbeDegradesOnSilence(t *testing.T) {
	exe := fakeExe(t)
	runner := mocks.NewRunner()
	runner.Default = mocks.Response{Err: fmt.Errorf("exit status 1")}

	p := &Prober{Runner: runner}
	caps, err := p.Probe(context.Background(), exe)
	if err != nil {
		t.Fatalf("silence must degrade, not fail: %v", err)
	}

	if caps.Version != "" {
		t.Errorf("expected empty version, got %q", caps.Version)
	}
	if caps.Tiling || caps.UHD || caps.SpatialTTA || caps.TemporalTTA ||
		caps.Threads || caps.Batch || caps.Timestep || caps.ModelPath || caps.GPU {
		t.Errorf("expected all capabilities false, got %+v", caps)
	}
	if len(runner.Calls) != 3 {
		t.Errorf("expected all three attempts, got %d", len(runner.Calls))
	}
}

func TestEngineProbesOnce(t *testing.T) {
	exe := fakeExe(t)
	runner := mocks.NewRunner()
	runner.Script(exe, []string{"-h"}, []byte(rifeHelp), nil)

	eng := NewEngine(exe, runner)
	for i := 0; i < 3; i++ {
		caps, err := eng.Capabilities(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if caps.Version != "4.6" {
			t.Errorf("expected version 4.6, got %q", caps.Version)
		}
	}
	if got := runner.CallCount(exe); got != 1 {
		t.Errorf("expected a single probe invocation, got %d", got)
	}
}
