package interp

import (
	"context"
	"fmt"
	"os"
	"time"

	"framelapse/internal/execx"
)

// DefaultProbeTimeout bounds each individual help-flag invocation. The main
// interpolation calls are deliberately not time-bounded; only probing is.
const DefaultProbeTimeout = 5 * time.Second

// NotFoundError indicates the interpolation executable does not exist on disk.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("interpolation executable not found: %s", e.Path)
}

// Prober detects the capabilities of an interpolation binary by scraping its
// help output.
type Prober struct {
	Runner  execx.Runner
	Timeout time.Duration
}

// NewProber returns a Prober backed by the real system runner.
func NewProber() *Prober {
	return &Prober{Runner: execx.SystemRunner{}, Timeout: DefaultProbeTimeout}
}

// Probe invokes the executable with "-h", falling back to "--help", then to
// no arguments, each attempt bounded by the probe timeout. Help text usually
// goes to stderr with a non-zero exit, so exit status is ignored; the first
// attempt producing non-empty output wins. If every attempt fails or returns
// empty output the result is a CapabilityMap with all capabilities false and
// no version. Only a missing executable is an error.
func (p *Prober) Probe(ctx context.Context, exe string) (CapabilityMap, error) {
	if _, err := os.Stat(exe); err != nil {
		return CapabilityMap{Flags: map[string]bool{}}, &NotFoundError{Path: exe}
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	attempts := [][]string{{"-h"}, {"--help"}, nil}
	for _, args := range attempts {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		out, _ := p.Runner.Run(attemptCtx, "", exe, args...)
		cancel()

		if len(out) > 0 {
			return ParseHelpText(string(out)), nil
		}
	}

	// Degrade: an unhelpful binary still gets the mandatory flags.
	return ParseHelpText(""), nil
}
