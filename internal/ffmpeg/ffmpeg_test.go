package ffmpeg

import (
	"reflect"
	"testing"
)

func TestEncodeArgs(t *testing.T) {
	got := EncodeArgs(30, "/tmp/out.mp4")
	want := []string{
		"-y",
		"-f", "image2pipe",
		"-framerate", "30",
		"-i", "-",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		"/tmp/out.mp4",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EncodeArgs = %v, want %v", got, want)
	}
}

func TestEncodeArgsFramerate(t *testing.T) {
	args := EncodeArgs(60, "out.mp4")
	for i, arg := range args {
		if arg == "-framerate" {
			if args[i+1] != "60" {
				t.Errorf("framerate = %q, want 60", args[i+1])
			}
			return
		}
	}
	t.Fatal("no -framerate flag emitted")
}
