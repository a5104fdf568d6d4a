// Package sequence inspects an input image sequence before a run.
package sequence

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Info summarizes an image sequence: how many frames, their dimensions
// (taken from the first frame), and total size on disk.
type Info struct {
	Folder     string
	FrameCount int
	Width      int
	Height     int
	TotalBytes int64
}

// Inspect builds an Info from an already-discovered, ordered frame list.
func Inspect(frames []string) (*Info, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames to inspect")
	}

	info := &Info{
		Folder:     filepath.Dir(frames[0]),
		FrameCount: len(frames),
	}

	f, err := os.Open(frames[0])
	if err != nil {
		return nil, fmt.Errorf("cannot open first frame: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode first frame %s: %w", frames[0], err)
	}
	info.Width = cfg.Width
	info.Height = cfg.Height

	for _, frame := range frames {
		if stat, err := os.Stat(frame); err == nil {
			info.TotalBytes += stat.Size()
		}
	}
	return info, nil
}

// OutputDuration estimates the final video length in seconds.
func (i *Info) OutputDuration(fps, intermediateFrames int, skipModel bool) float64 {
	if fps <= 0 {
		return 0
	}
	frames := i.FrameCount
	if !skipModel && i.FrameCount > 1 {
		frames += (i.FrameCount - 1) * intermediateFrames
	}
	return float64(frames) / float64(fps)
}
