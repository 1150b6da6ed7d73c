package compressor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDeriveOutput(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	input := filepath.Join(dir, "clip.mp4")

	cases := []struct {
		name string
		out  string
		want string
	}{
		{"next to input", "", filepath.Join(dir, "clip_compressed.mp4")},
		{"existing dir", outDir, filepath.Join(outDir, "clip.mp4")},
		{"trailing separator", filepath.Join(dir, "new") + "/", filepath.Join(dir, "new", "clip.mp4")},
		{"explicit file", filepath.Join(dir, "small.mkv"), filepath.Join(dir, "small.mkv")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveOutput(input, tc.out); got != tc.want {
				t.Fatalf("DeriveOutput(%q) = %q, want %q", tc.out, got, tc.want)
			}
		})
	}
}

// TestDeriveOutputAvoidsExistingFiles checks the numbered suffix.
func TestDeriveOutputAvoidsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.mov")
	for _, name := range []string{"clip_compressed.mov", "clip_compressed-1.mov"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	want := filepath.Join(dir, "clip_compressed-2.mov")
	if got := DeriveOutput(input, ""); got != want {
		t.Fatalf("DeriveOutput = %q, want %q", got, want)
	}
}
