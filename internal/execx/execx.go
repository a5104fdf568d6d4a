// Package execx abstracts external command execution so the tools framelapse
// drives (interpolator, colorizer, encoder) can be faked in tests.
package execx

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its combined output.
type Runner interface {
	// Run executes name with args, optionally in workDir (empty means the
	// current directory), and blocks until the command exits.
	Run(ctx context.Context, workDir, name string, args ...string) ([]byte, error)

	// LookPath reports whether the named command resolves to an executable.
	LookPath(name string) bool
}

// ExternalToolError wraps a non-zero exit (or unreadable output) from one of
// the external tools. Output carries the tool's combined stdout/stderr tail
// so the user-visible message names what actually went wrong.
type ExternalToolError struct {
	Tool   string
	Args   []string
	Output string
	Err    error
}

func (e *ExternalToolError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\noutput: " + tail(out, 512)
	}
	return msg
}

func (e *ExternalToolError) Unwrap() error { return e.Err }

// tail keeps error messages bounded when a tool dumps pages of output.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

// SystemRunner runs commands through os/exec.
type SystemRunner struct{}

func (SystemRunner) Run(ctx context.Context, workDir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = workDir
	return cmd.CombinedOutput()
}

func (SystemRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
