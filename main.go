// Command framelapse turns a folder of still images into an interpolated
// video by driving an external frame-interpolation tool, an optional
// false-color remapper, and ffmpeg under explicit resource limits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"framelapse/internal/ffmpeg"
	"framelapse/internal/interp"
	"framelapse/internal/pipeline"
	"framelapse/internal/preprocess"
	"framelapse/internal/resources"
	"framelapse/internal/sequence"
	"framelapse/internal/ui"
	"framelapse/internal/validation"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)
)

type cliFlags struct {
	inputFolder  string
	outputDir    string
	fps          int
	intermediate int
	skipModel    bool
	crop         string
	colorize     bool
	resolutionKM int

	interpExe    string
	colorizerExe string
	modelPath    string
	timestep     float64
	tileSize     int
	uhd          bool
	spatialTTA   bool
	temporalTTA  bool
	threadSpec   string
	gpu          int

	maxWorkers  int
	maxMemoryMB int
	chunkSizeMB int
	warnPct     float64
	criticalPct float64

	verbose bool
}

func main() {
	flags := &cliFlags{}

	rootCmd := &cobra.Command{
		Use:   "framelapse",
		Short: "Build an interpolated timelapse video from a folder of still images",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(flags)
		},
	}

	f := rootCmd.Flags()
	f.StringVarP(&flags.inputFolder, "input", "i", "", "folder containing the input frames (prompted when omitted)")
	f.StringVarP(&flags.outputDir, "output-dir", "o", ".", "directory for the output video")
	f.IntVar(&flags.fps, "fps", 30, "output frames per second")
	f.IntVar(&flags.intermediate, "intermediate", 1, "intermediate frames to generate per adjacent pair")
	f.BoolVar(&flags.skipModel, "skip-model", false, "encode the input frames directly without interpolation")
	f.StringVar(&flags.crop, "crop", "", "crop rectangle as x,y,w,h (malformed values disable cropping)")
	f.BoolVar(&flags.colorize, "colorize", false, "run each frame through the false-color remapper")
	f.IntVar(&flags.resolutionKM, "resolution-km", 4, "source resolution in km/pixel, passed to the colorizer")

	f.StringVar(&flags.interpExe, "interpolator", "rife-ncnn-vulkan", "path to the frame-interpolation executable")
	f.StringVar(&flags.colorizerExe, "colorizer", "", "path to the false-color remapper executable")
	f.StringVar(&flags.modelPath, "model", "", "model directory passed to the interpolator when supported")
	f.Float64Var(&flags.timestep, "timestep", 0, "interpolation timestep when supported (0 = tool default)")
	f.IntVar(&flags.tileSize, "tile-size", 0, "tile size when supported (0 = disabled)")
	f.BoolVar(&flags.uhd, "uhd", false, "enable UHD mode when supported")
	f.BoolVar(&flags.spatialTTA, "tta-spatial", false, "enable spatial test-time augmentation when supported")
	f.BoolVar(&flags.temporalTTA, "tta-temporal", false, "enable temporal test-time augmentation when supported")
	f.StringVar(&flags.threadSpec, "threads", "", "load:proc:save thread spec when supported")
	f.IntVar(&flags.gpu, "gpu", -1, "GPU device id when supported (-1 = tool default)")

	f.IntVar(&flags.maxWorkers, "max-workers", 4, "maximum preprocessing workers")
	f.IntVar(&flags.maxMemoryMB, "max-memory-mb", 4096, "memory budget in MB")
	f.IntVar(&flags.chunkSizeMB, "chunk-size-mb", 100, "preferred chunk size in MB")
	f.Float64Var(&flags.warnPct, "warn-memory-percent", 75, "memory usage warning threshold")
	f.Float64Var(&flags.criticalPct, "critical-memory-percent", 90, "memory usage critical threshold")

	f.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(errorStyle.Render("❌ " + err.Error()))
		os.Exit(1)
	}
}

func run(flags *cliFlags) error {
	logger := newLogger(flags.verbose)

	fmt.Println(titleStyle.Render("🎞️  Framelapse"))

	if !ffmpeg.IsFFmpegAvailable() {
		return fmt.Errorf("ffmpeg is not installed or not in PATH")
	}

	// Stale scratch trees from crashed runs are fair game after a day.
	if err := pipeline.CleanupOldSessions(os.TempDir(), 24*time.Hour); err != nil {
		logger.Debug().Err(err).Msg("stale session cleanup skipped")
	}

	input := flags.inputFolder
	if input == "" {
		prompt := promptui.Prompt{
			Label:    "Input frame folder",
			Validate: validation.ValidateFolder,
		}
		var err error
		if input, err = prompt.Run(); err != nil {
			return err
		}
	}

	crop, err := parseCrop(flags.crop, logger)
	if err != nil {
		return err
	}

	limits := resources.Limits{
		MaxWorkers:            flags.maxWorkers,
		MaxMemoryMB:           flags.maxMemoryMB,
		MaxCPUPercent:         75,
		ChunkSizeMB:           flags.chunkSizeMB,
		WarnMemoryPercent:     flags.warnPct,
		CriticalMemoryPercent: flags.criticalPct,
	}
	governor, err := resources.NewGovernor(limits, logger)
	if err != nil {
		return err
	}
	defer governor.ShutdownAll()

	// Show what we are about to process.
	if frames, err := validation.DiscoverFrames(input, flags.skipModel); err == nil {
		if info, err := sequence.Inspect(frames); err == nil {
			ui.DisplaySequenceInfo(info, flags.fps, flags.intermediate, flags.skipModel)
		}
	}

	job := pipeline.Job{
		InputFolder:        input,
		OutputDir:          flags.outputDir,
		FPS:                flags.fps,
		IntermediateFrames: flags.intermediate,
		SkipModel:          flags.skipModel,
		Crop:               crop,
		Colorize:           flags.colorize,
		ResolutionKM:       flags.resolutionKM,
	}
	opts := interp.Options{
		ModelPath:   flags.modelPath,
		Timestep:    flags.timestep,
		TileSize:    flags.tileSize,
		UHD:         flags.uhd,
		SpatialTTA:  flags.spatialTTA,
		TemporalTTA: flags.temporalTTA,
		ThreadSpec:  flags.threadSpec,
		GPU:         flags.gpu,
	}

	engine := interp.NewEngine(flags.interpExe, nil)
	pre := preprocess.New(flags.colorizerExe, nil, logger)
	orch := pipeline.New(job, governor, engine, pre, opts, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stream := orch.Run(ctx)
	go func() {
		<-ctx.Done()
		stream.Cancel()
	}()

	return renderProgress(stream)
}

// renderProgress consumes the event stream and drives the progress bar.
func renderProgress(stream *pipeline.Stream) error {
	var bar *progressbar.ProgressBar

	for ev := range stream.Events() {
		switch ev.Kind {
		case pipeline.EventProgress:
			if bar == nil {
				bar = progressbar.NewOptions(ev.Total,
					progressbar.OptionSetDescription("Processing"),
					progressbar.OptionSetTheme(progressbar.Theme{
						Saucer:        "█",
						SaucerHead:    "█",
						SaucerPadding: "░",
						BarStart:      "▐",
						BarEnd:        "▌",
					}),
					progressbar.OptionShowCount(),
					progressbar.OptionSetWidth(50),
					progressbar.OptionSetRenderBlankState(true),
				)
			}
			bar.Set(ev.Current)
		case pipeline.EventCompleted:
			if bar != nil {
				bar.Finish()
			}
			fmt.Println()
			fmt.Println(successStyle.Render("✅ Video created successfully!"))
			fmt.Printf("Output saved to: %s\n", ev.OutputPath)
		case pipeline.EventFailed:
			fmt.Println()
			return ev.Err
		}
	}
	return nil
}

// parseCrop converts the x,y,w,h flag into a crop rectangle. Values that
// parse but describe a degenerate rectangle disable cropping rather than
// failing the run.
func parseCrop(spec string, log zerolog.Logger) (*preprocess.Rect, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	parts := strings.Split(spec, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("crop must be x,y,w,h, got %q", spec)
	}

	vals := make([]int, 4)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("crop must be four integers, got %q", spec)
		}
		vals[i] = v
	}

	rect, ok := preprocess.FromXYWH(vals[0], vals[1], vals[2], vals[3])
	if !ok {
		log.Warn().Str("crop", spec).Msg("crop rectangle is degenerate, cropping disabled")
		return nil, nil
	}
	return &rect, nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
