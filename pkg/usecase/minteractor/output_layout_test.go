// 指示: miu200521358
package minteractor

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBuildDefaultOutputPathAt(t *testing.T) {
	now := time.Date(2026, 4, 5, 6, 7, 8, 0, time.Local)
	dir := filepath.Join("clips", "dance")
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "json clip",
			input: filepath.Join(dir, "walk.json"),
			want:  filepath.Join(dir, "walk_20260405060708", "walk_track.json"),
		},
		{
			name:  "multi dot",
			input: filepath.Join(dir, "run.loop.json"),
			want:  filepath.Join(dir, "run.loop_20260405060708", "run.loop_track.json"),
		},
		{name: "empty base", input: filepath.Join(dir, ".json"), want: ""},
		{name: "empty path", input: "", want: ""},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := buildDefaultOutputPathAt(tc.input, now); got != tc.want {
				t.Fatalf("output path mismatch: got=%s want=%s", got, tc.want)
			}
		})
	}
}

func TestBuildDefaultOutputPathUsesNowFunc(t *testing.T) {
	original := nowFunc
	t.Cleanup(func() { nowFunc = original })
	nowFunc = func() time.Time {
		return time.Date(2025, 12, 31, 23, 59, 59, 0, time.Local)
	}

	got := BuildDefaultOutputPath(filepath.Join("in", "jump.json"))
	want := filepath.Join("in", "jump_20251231235959", "jump_track.json")
	if got != want {
		t.Fatalf("output path mismatch: got=%s want=%s", got, want)
	}
}

func TestResolveTrackOutputPath(t *testing.T) {
	original := nowFunc
	t.Cleanup(func() { nowFunc = original })
	nowFunc = func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)
	}

	got, err := resolveTrackOutputPath("walk.json", "")
	if err != nil {
		t.Fatalf("default path should resolve: %v", err)
	}
	if want := filepath.Join("walk_20260102030405", "walk_track.json"); got != want {
		t.Fatalf("default path mismatch: got=%s want=%s", got, want)
	}
	if got, err := resolveTrackOutputPath("walk.json", " out.JSON "); err != nil || got != "out.JSON" {
		t.Fatalf("explicit path mismatch: got=%s err=%v", got, err)
	}
	if _, err := resolveTrackOutputPath("walk.json", "out.vmd"); err == nil {
		t.Fatalf("non json extension should be rejected")
	}
}

func TestCreateOutputDirCreatesNestedDirectory(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "a", "b", "track.json")
	if err := createOutputDir(outputPath); err != nil {
		t.Fatalf("create output dir failed: %v", err)
	}
	info, err := os.Stat(filepath.Dir(outputPath))
	if err != nil {
		t.Fatalf("output dir not found: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("output dir should be directory")
	}
}
