package interp

import (
	"context"
	"sync"

	"framelapse/internal/execx"
)

// Engine wraps one interpolation executable for the lifetime of a pipeline
// run. Capabilities are probed on first use and cached; frames are never
// re-probed.
type Engine struct {
	exe    string
	runner execx.Runner
	prober *Prober

	once sync.Once
	caps CapabilityMap
	err  error
}

// NewEngine builds an Engine for the given executable. A nil runner selects
// the real system runner.
func NewEngine(exe string, runner execx.Runner) *Engine {
	if runner == nil {
		runner = execx.SystemRunner{}
	}
	return &Engine{
		exe:    exe,
		runner: runner,
		prober: &Prober{Runner: runner, Timeout: DefaultProbeTimeout},
	}
}

// Capabilities returns the cached capability map, probing the executable on
// the first call.
func (e *Engine) Capabilities(ctx context.Context) (CapabilityMap, error) {
	e.once.Do(func() {
		e.caps, e.err = e.prober.Probe(ctx, e.exe)
	})
	return e.caps, e.err
}

// Interpolate generates intermediate frame(s) between frame1 and frame2 into
// output. A non-zero exit is fatal to the caller's run and is returned as an
// ExternalToolError carrying the tool's output. The call is intentionally
// unbounded in time; only capability probing carries a timeout.
func (e *Engine) Interpolate(ctx context.Context, frame1, frame2, output string, opts Options) error {
	caps, err := e.Capabilities(ctx)
	if err != nil {
		return err
	}

	args := BuildCommand(e.exe, frame1, frame2, output, caps, opts)
	out, err := e.runner.Run(ctx, "", args[0], args[1:]...)
	if err != nil {
		return &execx.ExternalToolError{
			Tool:   "interpolation",
			Args:   args[1:],
			Output: string(out),
			Err:    err,
		}
	}
	return nil
}
