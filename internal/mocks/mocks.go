// Package mocks provides hand-written fakes for the external seams:
// subprocess execution, memory snapshots, and the streaming encoder.
package mocks

import (
	"context"
	"strings"
	"sync"

	"framelapse/internal/resources"
)

// RunnerCall records one invocation of the mock runner.
type RunnerCall struct {
	WorkDir string
	Name    string
	Args    []string
}

// Response scripts the result of a command invocation.
type Response struct {
	Output []byte
	Err    error
}

// Runner is a scriptable execx.Runner. Responses are keyed by "name arg1
// arg2 ..."; unmatched invocations fall back to Default.
type Runner struct {
	mu        sync.Mutex
	Responses map[string]Response
	Default   Response
	Calls     []RunnerCall
	Missing   map[string]bool // names LookPath reports as absent

	// OnRun, when set, observes every invocation before the scripted
	// response is returned. Tests use it to create the files a real tool
	// would have written.
	OnRun func(call RunnerCall)
}

// NewRunner returns an empty mock runner that succeeds with no output by
// default.
func NewRunner() *Runner {
	return &Runner{
		Responses: make(map[string]Response),
		Missing:   make(map[string]bool),
	}
}

// Script registers a response for the exact command line.
func (r *Runner) Script(name string, args []string, out []byte, err error) {
	r.Responses[commandKey(name, args)] = Response{Output: out, Err: err}
}

func (r *Runner) Run(ctx context.Context, workDir, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	r.Calls = append(r.Calls, RunnerCall{WorkDir: workDir, Name: name, Args: args})
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.OnRun != nil {
		r.OnRun(RunnerCall{WorkDir: workDir, Name: name, Args: args})
	}
	if resp, ok := r.Responses[commandKey(name, args)]; ok {
		return resp.Output, resp.Err
	}
	return r.Default.Output, r.Default.Err
}

func (r *Runner) LookPath(name string) bool {
	return !r.Missing[name]
}

// CallCount returns how many times a command with the given name ran.
func (r *Runner) CallCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

func commandKey(name string, args []string) string {
	return name + " " + strings.Join(args, " ")
}

// FixedSnapshot returns a SnapshotFunc that always reports the same reading.
func FixedSnapshot(snap resources.Snapshot) resources.SnapshotFunc {
	return func() (resources.Snapshot, error) {
		return snap, nil
	}
}

// Encoder is a fake pipeline encoder that records the frames written to it.
type Encoder struct {
	mu       sync.Mutex
	Frames   []string
	WriteErr error
	CloseErr error
	Closed   bool
	Aborted  bool
}

func (e *Encoder) WriteFrame(framePath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.WriteErr != nil {
		return e.WriteErr
	}
	e.Frames = append(e.Frames, framePath)
	return nil
}

func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Closed = true
	return e.CloseErr
}

func (e *Encoder) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Aborted = true
}

// WrittenFrames returns a copy of the frames written so far.
func (e *Encoder) WrittenFrames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.Frames))
	copy(out, e.Frames)
	return out
}
