package interp

import "strconv"

// Options holds the caller's requested interpolation settings. Zero values
// mean "not requested"; GPU uses -1 as the unset sentinel because device 0 is
// a valid GPU id.
type Options struct {
	ModelPath   string
	Timestep    float64
	NumFrames   int
	TileSize    int
	UHD         bool
	SpatialTTA  bool
	TemporalTTA bool
	ThreadSpec  string
	GPU         int
}

// DefaultOptions returns Options with every optional feature unset.
func DefaultOptions() Options {
	return Options{GPU: -1}
}

// BuildCommand constructs the interpolation invocation as a token list
// suitable for exec. The executable path and the frame1/frame2/output flags
// are always emitted. Every optional flag is appended iff the capability map
// reports it supported AND the options request it; unsupported-but-requested
// options are silently dropped. Flag order is fixed so invocations are
// reproducible regardless of how the options were assembled.
func BuildCommand(exe, frame1, frame2, output string, caps CapabilityMap, opts Options) []string {
	args := []string{exe, "-0", frame1, "-1", frame2, "-o", output}

	if caps.ModelPath && opts.ModelPath != "" {
		args = append(args, "-m", opts.ModelPath)
	}
	if caps.Timestep && opts.Timestep > 0 {
		args = append(args, "-s", strconv.FormatFloat(opts.Timestep, 'f', -1, 64))
	}
	if caps.Batch && opts.NumFrames > 0 {
		args = append(args, "-n", strconv.Itoa(opts.NumFrames))
	}
	if caps.Tiling && opts.TileSize > 0 {
		args = append(args, "-t", strconv.Itoa(opts.TileSize))
	}
	if caps.UHD && opts.UHD {
		args = append(args, "-u")
	}
	if caps.SpatialTTA && opts.SpatialTTA {
		args = append(args, "-x")
	}
	if caps.TemporalTTA && opts.TemporalTTA {
		args = append(args, "-z")
	}
	if caps.Threads && opts.ThreadSpec != "" {
		args = append(args, "-j", opts.ThreadSpec)
	}
	if caps.GPU && opts.GPU >= 0 {
		args = append(args, "-g", strconv.Itoa(opts.GPU))
	}

	return args
}
