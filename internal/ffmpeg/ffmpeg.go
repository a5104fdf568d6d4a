// Package ffmpeg wraps the encoder subprocess. Frames are streamed over the
// encoder's stdin as an image2pipe sequence; blocking pipe writes are the
// pipeline's backpressure mechanism.
package ffmpeg

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"framelapse/internal/execx"
)

func IsFFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// EncodeArgs returns the fixed, capability-independent flag set used for the
// raw intermediate encode. Unlike the interpolation tool, the encoder's flags
// never depend on probing.
func EncodeArgs(fps int, outputPath string) []string {
	return []string{
		"-y",
		"-f", "image2pipe",
		"-framerate", strconv.Itoa(fps),
		"-i", "-",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		outputPath,
	}
}

// StreamEncoder is a running encoder subprocess accepting frames on stdin.
// Frames must be written in presentation order; the caller owns ordering.
type StreamEncoder struct {
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     bytes.Buffer
	outputPath string
	finished   bool
}

// StartStreamEncoder launches the encoder writing to outputPath. The
// subprocess is deliberately not time-bounded.
func StartStreamEncoder(fps int, outputPath string) (*StreamEncoder, error) {
	cmd := exec.Command("ffmpeg", EncodeArgs(fps, outputPath)...)

	enc := &StreamEncoder{cmd: cmd, outputPath: outputPath}
	cmd.Stderr = &enc.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("cannot open encoder input pipe: %w", err)
	}
	enc.stdin = stdin

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("cannot start encoder: %w", err)
	}
	return enc, nil
}

// WriteFrame streams one frame file into the encoder. The write blocks while
// the encoder is busy, throttling frame production naturally.
func (e *StreamEncoder) WriteFrame(framePath string) error {
	f, err := os.Open(framePath)
	if err != nil {
		return fmt.Errorf("cannot open frame %s: %w", framePath, err)
	}
	defer f.Close()

	if _, err := io.Copy(e.stdin, f); err != nil {
		return &execx.ExternalToolError{
			Tool:   "encoder",
			Output: e.stderr.String(),
			Err:    fmt.Errorf("pipe write failed: %w", err),
		}
	}
	return nil
}

// Close flushes and closes the input stream, waits for the encoder to exit,
// and verifies the output file exists. Required on the success path; a no-op
// after Abort.
func (e *StreamEncoder) Close() error {
	if e.finished {
		return nil
	}
	e.finished = true

	e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		return &execx.ExternalToolError{
			Tool:   "encoder",
			Output: e.stderr.String(),
			Err:    err,
		}
	}
	if _, err := os.Stat(e.outputPath); err != nil {
		return fmt.Errorf("encoder exited cleanly but produced no output at %s", e.outputPath)
	}
	return nil
}

// Abort closes the input stream and tears the encoder down without treating
// its exit status as meaningful, then removes any partial output. Used on
// pipeline failure so the encoder is never left with a half-written stream
// and no corrupt file survives claiming success.
func (e *StreamEncoder) Abort() {
	if e.finished {
		return
	}
	e.finished = true

	e.stdin.Close()
	if e.cmd.Process != nil {
		e.cmd.Process.Kill()
	}
	e.cmd.Wait()
	os.Remove(e.outputPath)
}
