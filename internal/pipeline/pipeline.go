// Package pipeline sequences a full run: validate the job, enumerate frames,
// preprocess them across a governed worker pool, interpolate each adjacent
// pair, and stream the result into the encoder in strict frame order.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"framelapse/internal/ffmpeg"
	"framelapse/internal/interp"
	"framelapse/internal/preprocess"
	"framelapse/internal/resources"
	"framelapse/internal/validation"
)

// Job is the validated description of one run, supplied by the CLI layer.
type Job struct {
	InputFolder        string
	OutputDir          string
	FPS                int
	IntermediateFrames int
	SkipModel          bool
	Crop               *preprocess.Rect
	Colorize           bool
	ResolutionKM       int
}

// Encoder abstracts the streaming encoder subprocess so runs can be tested
// without ffmpeg installed.
type Encoder interface {
	WriteFrame(framePath string) error
	Close() error
	Abort()
}

// EncoderFactory opens an encoder for the given frame rate and output path.
type EncoderFactory func(fps int, outputPath string) (Encoder, error)

func defaultEncoderFactory(fps int, outputPath string) (Encoder, error) {
	return ffmpeg.StartStreamEncoder(fps, outputPath)
}

// Orchestrator drives one pipeline run through its state machine.
type Orchestrator struct {
	job      Job
	governor *resources.Governor
	engine   *interp.Engine
	pre      *preprocess.Preprocessor
	opts     interp.Options
	log      zerolog.Logger

	newEncoder EncoderFactory
	tempDir    string

	state atomic.Int32
}

// New wires an orchestrator for one job. The governor, engine, and
// preprocessor are constructed by the caller and passed in by reference;
// nothing here is process-global.
func New(job Job, governor *resources.Governor, engine *interp.Engine, pre *preprocess.Preprocessor, opts interp.Options, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		job:        job,
		governor:   governor,
		engine:     engine,
		pre:        pre,
		opts:       opts,
		log:        log,
		newEncoder: defaultEncoderFactory,
		tempDir:    os.TempDir(),
	}
}

// SetEncoderFactory substitutes the encoder subprocess, for tests.
func (o *Orchestrator) SetEncoderFactory(f EncoderFactory) { o.newEncoder = f }

// SetTempDir overrides where session scratch directories are created.
func (o *Orchestrator) SetTempDir(dir string) { o.tempDir = dir }

// State returns the current pipeline state.
func (o *Orchestrator) State() State { return State(o.state.Load()) }

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
	o.log.Debug().Stringer("state", s).Msg("pipeline state")
}

// Run starts the pipeline and returns its progress stream. The stream is
// finite and not restartable: it ends with exactly one Completed or Failed
// event. Cancellation via Stream.Cancel is cooperative and takes effect
// between stages; in-flight subprocess calls run to completion.
func (o *Orchestrator) Run(parent context.Context) *Stream {
	ctx, cancel := context.WithCancel(parent)
	stream := &Stream{events: make(chan Event, 16), cancel: cancel}
	go o.run(ctx, stream)
	return stream
}

func (o *Orchestrator) run(ctx context.Context, stream *Stream) {
	defer close(stream.events)
	defer stream.cancel()

	emit := func(ev Event) {
		select {
		case stream.events <- ev:
		case <-ctx.Done():
		}
	}
	fail := func(err error) {
		o.setState(StateAborted)
		o.log.Error().Err(err).Msg("pipeline aborted")
		// Deliver the terminal event even when the context is already gone.
		ev := Event{Kind: EventFailed, Err: err}
		select {
		case stream.events <- ev:
		case <-ctx.Done():
			select {
			case stream.events <- ev:
			default:
			}
		}
	}

	// Validating
	o.setState(StateValidating)
	if err := validation.ValidateParams(o.job.FPS, o.job.IntermediateFrames); err != nil {
		fail(err)
		return
	}
	if err := validation.ValidateConfiguration(o.job.IntermediateFrames, o.job.SkipModel); err != nil {
		fail(err)
		return
	}
	if err := validation.ValidateFolder(o.job.InputFolder); err != nil {
		fail(err)
		return
	}

	// Enumerating
	o.setState(StateEnumerating)
	frames, err := validation.DiscoverFrames(o.job.InputFolder, o.job.SkipModel)
	if err != nil {
		fail(err)
		return
	}

	pairs := 0
	if !o.job.SkipModel {
		pairs = len(frames) - 1
	}
	outputFrames := len(frames) + pairs*o.job.IntermediateFrames
	totalUnits := len(frames) + pairs + outputFrames

	session, err := NewSession(o.tempDir)
	if err != nil {
		fail(err)
		return
	}
	defer func() {
		if err := session.Cleanup(); err != nil {
			o.log.Warn().Err(err).Msg("session cleanup failed")
		}
	}()

	var done atomic.Int64
	progress := func() {
		emit(Event{Kind: EventProgress, Current: int(done.Add(1)), Total: totalUnits})
	}

	if err := ctx.Err(); err != nil {
		fail(fmt.Errorf("pipeline canceled: %w", err))
		return
	}

	// Preprocessing: parallel, but results land in frame order.
	o.setState(StatePreprocessing)
	processed := make([]string, len(frames))
	err = o.governor.WithPool(ctx, "preprocess", 0, func(pool *resources.WorkerPool) error {
		for i, frame := range frames {
			i, frame := i, frame
			pool.Go(func(taskCtx context.Context) error {
				out, err := o.pre.ProcessImage(taskCtx, preprocess.FrameJob{
					InputPath:    frame,
					Crop:         o.job.Crop,
					Colorize:     o.job.Colorize,
					ResolutionKM: o.job.ResolutionKM,
					ScratchDir:   session.ScratchDir(),
					OutputDir:    session.ProcessedDir(),
				})
				if err != nil {
					return err
				}
				processed[i] = out
				progress()
				return nil
			})
		}
		return pool.Wait()
	})
	if err != nil {
		fail(fmt.Errorf("preprocessing failed: %w", err))
		return
	}

	if err := ctx.Err(); err != nil {
		fail(fmt.Errorf("pipeline canceled: %w", err))
		return
	}

	// Interpolating: strictly sequential per adjacent pair. Concurrent
	// invocations are not known to be safe (shared model state, GPU
	// contention), so pairs run one at a time.
	ordered := make([]string, 0, outputFrames)
	if o.job.SkipModel {
		ordered = append(ordered, processed...)
	} else {
		o.setState(StateInterpolating)
		for i := 0; i < len(processed)-1; i++ {
			if err := ctx.Err(); err != nil {
				fail(fmt.Errorf("pipeline canceled: %w", err))
				return
			}
			out := filepath.Join(session.InterpolatedDir(), fmt.Sprintf("pair_%06d.png", i))
			if err := o.engine.Interpolate(ctx, processed[i], processed[i+1], out, o.opts); err != nil {
				fail(fmt.Errorf("interpolation of pair %d failed: %w", i, err))
				return
			}
			ordered = append(ordered, processed[i], out)
			progress()
		}
		ordered = append(ordered, processed[len(processed)-1])
	}

	if err := ctx.Err(); err != nil {
		fail(fmt.Errorf("pipeline canceled: %w", err))
		return
	}

	// Encoding: frames stream into the encoder in strict index order.
	o.setState(StateEncoding)
	outputPath := filepath.Join(o.job.OutputDir,
		fmt.Sprintf("framelapse_%s_raw.mp4", time.Now().Format("20060102_150405")))

	enc, err := o.newEncoder(o.job.FPS, outputPath)
	if err != nil {
		fail(fmt.Errorf("cannot start encoder: %w", err))
		return
	}
	for _, frame := range ordered {
		if err := ctx.Err(); err != nil {
			enc.Abort()
			fail(fmt.Errorf("pipeline canceled: %w", err))
			return
		}
		if err := enc.WriteFrame(frame); err != nil {
			enc.Abort()
			fail(fmt.Errorf("encoding failed: %w", err))
			return
		}
		progress()
	}
	if err := enc.Close(); err != nil {
		os.Remove(outputPath)
		fail(fmt.Errorf("encoder did not finish cleanly: %w", err))
		return
	}

	o.setState(StateFinalized)
	emit(Event{Kind: EventCompleted, Current: totalUnits, Total: totalUnits, OutputPath: outputPath})
}
