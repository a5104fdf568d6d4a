package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Session owns the scratch tree for one pipeline run. Each run gets its own
// directory so concurrent runs never share frame files.
type Session struct {
	root string
}

var sessionSubdirs = []string{"scratch", "processed", "interpolated"}

// NewSession creates a session directory under baseDir with the per-stage
// subdirectories already in place.
func NewSession(baseDir string) (*Session, error) {
	root := filepath.Join(baseDir, fmt.Sprintf("framelapse_%d", time.Now().UnixNano()))
	for _, sub := range sessionSubdirs {
		if err := os.MkdirAll(filepath.Join(root, sub), 0755); err != nil {
			return nil, fmt.Errorf("cannot create session directory %s: %w", sub, err)
		}
	}
	return &Session{root: root}, nil
}

func (s *Session) Root() string            { return s.root }
func (s *Session) ScratchDir() string      { return filepath.Join(s.root, "scratch") }
func (s *Session) ProcessedDir() string    { return filepath.Join(s.root, "processed") }
func (s *Session) InterpolatedDir() string { return filepath.Join(s.root, "interpolated") }

// Cleanup removes the whole session tree.
func (s *Session) Cleanup() error {
	if err := os.RemoveAll(s.root); err != nil {
		return fmt.Errorf("cannot clean up session %s: %w", s.root, err)
	}
	return nil
}

// ListOldSessions finds session directories under baseDir older than the
// given age, sorted by path. Crashed runs leave these behind.
func ListOldSessions(baseDir string, olderThan time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-olderThan)

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read base directory: %w", err)
	}

	var old []string
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "framelapse_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			old = append(old, filepath.Join(baseDir, entry.Name()))
		}
	}
	sort.Strings(old)
	return old, nil
}

// CleanupOldSessions removes stale session directories left by crashed runs.
func CleanupOldSessions(baseDir string, olderThan time.Duration) error {
	old, err := ListOldSessions(baseDir, olderThan)
	if err != nil {
		return err
	}
	for _, dir := range old {
		os.RemoveAll(dir)
	}
	return nil
}
