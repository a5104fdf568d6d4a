// Package validation holds the pre-flight checks a job description must pass
// before the pipeline spends any work on it.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SupportedFrameFormats lists the still-image extensions picked up by frame
// discovery.
var SupportedFrameFormats = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff"}

// ValidationError names the parameter that failed validation.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// ErrNotImplemented marks a parameter combination the pipeline deliberately
// does not support yet.
type ErrNotImplemented struct {
	Msg string
}

func (e *ErrNotImplemented) Error() string {
	return "not implemented: " + e.Msg
}

// ValidateParams checks the numeric job parameters.
func ValidateParams(fps, intermediateFrames int) error {
	if fps <= 0 {
		return &ValidationError{Field: "fps", Msg: fmt.Sprintf("must be a positive integer, got %d", fps)}
	}
	if intermediateFrames <= 0 {
		return &ValidationError{Field: "intermediate frames", Msg: fmt.Sprintf("must be a positive integer, got %d", intermediateFrames)}
	}
	return nil
}

// ValidateFolder checks that the input folder exists and is a directory.
func ValidateFolder(folder string) error {
	info, err := os.Stat(folder)
	if os.IsNotExist(err) {
		return &ValidationError{Field: "input folder", Msg: fmt.Sprintf("does not exist: %s", folder)}
	}
	if err != nil {
		return &ValidationError{Field: "input folder", Msg: fmt.Sprintf("cannot access %s: %v", folder, err)}
	}
	if !info.IsDir() {
		return &ValidationError{Field: "input folder", Msg: fmt.Sprintf("not a directory: %s", folder)}
	}
	return nil
}

// ValidateConfiguration rejects parameter combinations the interpolation
// stage cannot honor. Only a single intermediate frame per pair is supported
// unless the model is skipped entirely; this is a documented limitation, not
// a bug.
func ValidateConfiguration(intermediateFrames int, skipModel bool) error {
	if skipModel {
		return nil
	}
	if intermediateFrames != 1 {
		return &ErrNotImplemented{
			Msg: fmt.Sprintf("only 1 intermediate frame per pair is supported, got %d", intermediateFrames),
		}
	}
	return nil
}

// DiscoverFrames enumerates the image files in folder in sorted order. The
// minimum frame count is 1 when the interpolation model is skipped and 2
// otherwise.
func DiscoverFrames(folder string, skipModel bool) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("cannot read input folder %s: %w", folder, err)
	}

	var frames []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isFrameFile(entry.Name()) {
			frames = append(frames, filepath.Join(folder, entry.Name()))
		}
	}
	sort.Strings(frames)

	required := 2
	if skipModel {
		required = 1
	}
	if len(frames) < required {
		return nil, &ValidationError{
			Field: "input folder",
			Msg:   fmt.Sprintf("found %d frame(s), need at least %d", len(frames), required),
		}
	}
	return frames, nil
}

func isFrameFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range SupportedFrameFormats {
		if ext == supported {
			return true
		}
	}
	return false
}
