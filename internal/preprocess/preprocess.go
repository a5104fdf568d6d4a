// Package preprocess prepares individual frames for interpolation: optional
// false-color remapping through an external tool, crop validation and
// application, and persistence of the processed frame.
package preprocess

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"framelapse/internal/execx"
)

// FrameJob describes one frame to preprocess. Created per input frame at
// dispatch time and discarded once its output path is produced.
type FrameJob struct {
	InputPath    string
	Crop         *Rect
	Colorize     bool
	ResolutionKM int
	ScratchDir   string
	OutputDir    string
}

// Preprocessor validates and applies crops and drives the external
// colorization tool. Colorization failures are recovered locally by keeping
// the original frame; crop geometry failures are fatal.
type Preprocessor struct {
	colorizerExe string
	runner       execx.Runner
	log          zerolog.Logger
}

// New builds a Preprocessor. colorizerExe may be empty when no colorization
// tool is installed; colorize requests then fall back to the original frame.
// A nil runner selects the real system runner.
func New(colorizerExe string, runner execx.Runner, log zerolog.Logger) *Preprocessor {
	if runner == nil {
		runner = execx.SystemRunner{}
	}
	return &Preprocessor{colorizerExe: colorizerExe, runner: runner, log: log}
}

// ProcessImage runs one frame through colorize -> crop -> persist and returns
// the path of the processed frame in job.OutputDir.
func (p *Preprocessor) ProcessImage(ctx context.Context, job FrameJob) (string, error) {
	img, err := imaging.Open(job.InputPath)
	if err != nil {
		return "", fmt.Errorf("cannot load frame %s: %w", job.InputPath, err)
	}

	if job.Colorize {
		img = p.colorize(ctx, img, job)
	}

	if job.Crop != nil {
		bounds := img.Bounds()
		if err := job.Crop.ValidateAgainst(bounds.Dx(), bounds.Dy()); err != nil {
			return "", err
		}
		cropped := imaging.Crop(img, image.Rect(job.Crop.Left, job.Crop.Upper, job.Crop.Right, job.Crop.Bottom))
		if cropped.Bounds().Empty() {
			return "", fmt.Errorf("crop %s of %s produced an empty image", job.Crop, job.InputPath)
		}
		img = cropped
	}

	outPath := filepath.Join(job.OutputDir, fmt.Sprintf("frame_%s.png", uuid.NewString()))
	if err := imaging.Save(img, outPath); err != nil {
		return "", fmt.Errorf("cannot persist processed frame: %w", err)
	}
	return outPath, nil
}

// colorize runs the external remapper over a temporary copy of the frame.
// On success the remapped image replaces the original; on any failure the
// original is kept and the failure is logged. Temporary files are removed on
// every path.
func (p *Preprocessor) colorize(ctx context.Context, img image.Image, job FrameJob) image.Image {
	if p.colorizerExe == "" {
		p.log.Warn().Str("frame", job.InputPath).Msg("colorization requested but no tool configured, keeping original")
		return img
	}

	id := uuid.NewString()
	tmpIn := filepath.Join(job.ScratchDir, "colorize_in_"+id+".png")
	tmpOut := filepath.Join(job.ScratchDir, "colorize_out_"+id+".png")
	defer func() {
		os.Remove(tmpIn)
		os.Remove(tmpOut)
	}()

	if err := imaging.Save(img, tmpIn); err != nil {
		p.log.Warn().Err(err).Str("frame", job.InputPath).Msg("colorization skipped, keeping original")
		return img
	}

	// The tool resolves its palettes relative to its own directory.
	args := []string{"-s", tmpIn, "-o", tmpOut, "-r", strconv.Itoa(job.ResolutionKM)}
	out, err := p.runner.Run(ctx, filepath.Dir(p.colorizerExe), p.colorizerExe, args...)
	if err != nil {
		toolErr := &execx.ExternalToolError{Tool: "colorizer", Args: args, Output: string(out), Err: err}
		p.log.Warn().Err(toolErr).Str("frame", job.InputPath).Msg("colorization failed, keeping original")
		return img
	}

	colorized, err := imaging.Open(tmpOut)
	if err != nil {
		p.log.Warn().Err(err).Str("frame", job.InputPath).Msg("cannot read colorized output, keeping original")
		return img
	}
	return colorized
}
