package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewSessionCreatesStageDirs(t *testing.T) {
	base := t.TempDir()
	s, err := NewSession(base)
	if err != nil {
		t.Fatal(err)
	}

	for _, dir := range []string{s.ScratchDir(), s.ProcessedDir(), s.InterpolatedDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("stage dir missing: %v", err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
		if filepath.Dir(dir) != s.Root() {
			t.Errorf("%s not under session root %s", dir, s.Root())
		}
	}
}

func TestSessionsAreDistinct(t *testing.T) {
	base := t.TempDir()
	a, err := NewSession(base)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSession(base)
	if err != nil {
		t.Fatal(err)
	}
	if a.Root() == b.Root() {
		t.Errorf("two sessions share root %s", a.Root())
	}
}

func TestSessionCleanup(t *testing.T) {
	s, err := NewSession(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.ScratchDir(), "leftover.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Cleanup(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.Root()); !os.IsNotExist(err) {
		t.Errorf("session root survived cleanup: %v", err)
	}
}

func TestListOldSessions(t *testing.T) {
	base := t.TempDir()

	stale := filepath.Join(base, "framelapse_1")
	fresh := filepath.Join(base, "framelapse_2")
	unrelated := filepath.Join(base, "other_dir")
	for _, dir := range []string{stale, fresh, unrelated} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatal(err)
	}

	old, err := ListOldSessions(base, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if len(old) != 1 || old[0] != stale {
		t.Errorf("ListOldSessions = %v, want [%s]", old, stale)
	}
}

func TestCleanupOldSessions(t *testing.T) {
	base := t.TempDir()

	stale := filepath.Join(base, "framelapse_1")
	if err := os.Mkdir(stale, 0o755); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatal(err)
	}

	if err := CleanupOldSessions(base, time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale session not removed: %v", err)
	}
}
