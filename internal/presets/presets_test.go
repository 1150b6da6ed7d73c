package presets

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"default":      "Default",
		"high-quality": "High Quality",
		"web-h264":     "Web H264",
		"already-HD":   "Already HD",
	}
	for in, want := range cases {
		if got := Label(in); got != want {
			t.Errorf("Label(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestBuildFFArgs checks the codec argument layout passed to ffmpeg.
func TestBuildFFArgs(t *testing.T) {
	args := BuildFFArgs(Preset{VideoCodec: "libx264", CRF: 23, Preset: "medium"})
	want := []string{"-c:v", "libx264", "-preset", "medium", "-crf", "23"}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestListNamesSorted(t *testing.T) {
	got := ListNames(map[string]Preset{"z": {}, "a": {}, "m": {}})
	if diff := cmp.Diff([]string{"a", "m", "z"}, got); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

// TestOptionTrimsLabelAndDescription checks display metadata normalization.
func TestOptionTrimsLabelAndDescription(t *testing.T) {
	opt := Preset{Name: "fast", Label: "  ", Description: " Quick \n"}.Option()
	if opt.Label != "Fast" {
		t.Fatalf("label = %q, want Fast", opt.Label)
	}
	if opt.Description != "Quick" {
		t.Fatalf("description = %q, want Quick", opt.Description)
	}
}
