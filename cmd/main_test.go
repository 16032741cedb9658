// 指示: miu200521358
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miu200521358/mu_fkrig/pkg/adapter/io_motion/clipjson"
	"github.com/miu200521358/mu_fkrig/pkg/domain/channel"
	"github.com/miu200521358/mu_fkrig/pkg/domain/fkrig"
	"github.com/miu200521358/mu_fkrig/pkg/shared/base/logging"
)

func TestParseOptionsWithFlags(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	opts, err := parseOptions([]string{
		"-rig", "avatar.glb", "-clip", "walk.json", "-out", "walk_track.json",
		"-start", "10", "-interval", "2", "-interp", "linear", "-mode", "additive",
		"-reduce", "-tolerance", "0.01", "-reset", "-lang", "en", "-v",
	}, errBuf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if opts.rigPath != "avatar.glb" || opts.clipPath != "walk.json" || opts.outputPath != "walk_track.json" {
		t.Fatalf("paths mismatch: %+v", opts)
	}
	if opts.start != 10 || opts.interval != 2 {
		t.Fatalf("range mismatch: start=%d interval=%d", opts.start, opts.interval)
	}
	if opts.interpolation != channel.INTERPOLATION_LINEAR || opts.applyMode != fkrig.APPLY_MODE_ADDITIVE {
		t.Fatalf("mode mismatch: interp=%v mode=%v", opts.interpolation, opts.applyMode)
	}
	if !opts.reduce || opts.tolerance != 0.01 || !opts.resetPose || opts.lang != "en" || !opts.verbose {
		t.Fatalf("switches mismatch: %+v", opts)
	}
}

func TestParseOptionsWithPositionals(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	opts, err := parseOptions([]string{"avatar.vrm", "walk.json", "result.json"}, errBuf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if opts.rigPath != "avatar.vrm" {
		t.Fatalf("rigPath mismatch: %s", opts.rigPath)
	}
	if opts.clipPath != "walk.json" {
		t.Fatalf("clipPath mismatch: %s", opts.clipPath)
	}
	if opts.outputPath != "result.json" {
		t.Fatalf("outputPath mismatch: %s", opts.outputPath)
	}
	if opts.interpolation != channel.INTERPOLATION_CUBIC || opts.applyMode != fkrig.APPLY_MODE_REPLACE || opts.interval != 1 {
		t.Fatalf("defaults mismatch: %+v", opts)
	}
}

func TestParseOptionsRequireClip(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	_, err := parseOptions([]string{"-rig", "avatar.glb", "-lang", "en"}, errBuf)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "clip file") || !strings.Contains(err.Error(), "Usage") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseOptionsRejectsUnknownInterpolationAndMode(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	if _, err := parseOptions([]string{"-interp", "bezier", "a.glb", "b.json"}, errBuf); err == nil || !strings.Contains(err.Error(), "bezier") {
		t.Fatalf("unexpected interpolation error: %v", err)
	}
	if _, err := parseOptions([]string{"-mode", "blend", "a.glb", "b.json"}, errBuf); err == nil || !strings.Contains(err.Error(), "blend") {
		t.Fatalf("unexpected mode error: %v", err)
	}
	if _, err := parseOptions([]string{"-interval", "0", "a.glb", "b.json"}, errBuf); err == nil {
		t.Fatalf("zero interval should be rejected")
	}
}

func TestRunBakesClipToTrack(t *testing.T) {
	previous := logging.DefaultLogger()
	t.Cleanup(func() { logging.SetDefaultLogger(previous) })

	tempDir := t.TempDir()
	rigPath := filepath.Join(tempDir, "chain.gltf")
	clipPath := filepath.Join(tempDir, "slide.json")
	outPath := filepath.Join(tempDir, "slide_track.json")
	writeTestJSON(t, rigPath, map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"nodes": []any{
			map[string]any{"name": "Root", "children": []int{1}},
			map[string]any{"name": "Tip", "translation": []float64{0, 0, 1}},
		},
	})
	frames := make([]any, 0, 3)
	for i := 0; i < 3; i++ {
		frames = append(frames, map[string]any{
			"bones": map[string]any{
				"Root": map[string]any{},
				"Tip":  map[string]any{"translation": []float64{float64(i), 0, 1}},
			},
		})
	}
	writeTestJSON(t, clipPath, map[string]any{"frames": frames})

	outBuf := bytes.NewBuffer(nil)
	errBuf := bytes.NewBuffer(nil)
	err := run(context.Background(), []string{"-rig", rigPath, "-clip", clipPath, "-out", outPath, "-interp", "linear", "-lang", "en"}, outBuf, errBuf)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, errBuf.String())
	}
	if !strings.Contains(outBuf.String(), "Bake completed: 3 frames") {
		t.Fatalf("progress output mismatch: %s", outBuf.String())
	}
	if !strings.Contains(outBuf.String(), "Track saved: "+outPath) {
		t.Fatalf("saved output mismatch: %s", outBuf.String())
	}

	track, err := clipjson.NewTrackJsonRepository().ReadTrack(outPath)
	if err != nil {
		t.Fatalf("read track failed: %v", err)
	}
	if len(track.Sections) != 1 {
		t.Fatalf("section count mismatch: got=%d want=1", len(track.Sections))
	}
	tip := track.Sections[0].FindTransformParameter("Tip_CONTROL")
	if tip == nil {
		t.Fatalf("Tip control parameter missing")
	}
	if value, _ := tip.Translation[0].Evaluate(2); value < 2-1e-6 || value > 2+1e-6 {
		t.Fatalf("tip translation mismatch: got=%v want=2", value)
	}
}

func TestRunCancelledContextReportsPartialBake(t *testing.T) {
	previous := logging.DefaultLogger()
	t.Cleanup(func() { logging.SetDefaultLogger(previous) })

	tempDir := t.TempDir()
	rigPath := filepath.Join(tempDir, "single.gltf")
	clipPath := filepath.Join(tempDir, "still.json")
	writeTestJSON(t, rigPath, map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"nodes": []any{map[string]any{"name": "Root"}},
	})
	writeTestJSON(t, clipPath, map[string]any{
		"frames": []any{map[string]any{"bones": map[string]any{"Root": map[string]any{}}}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outPath := filepath.Join(tempDir, "still_track.json")
	err := run(ctx, []string{"-lang", "en", rigPath, clipPath, outPath}, bytes.NewBuffer(nil), bytes.NewBuffer(nil))
	if err == nil || !strings.Contains(err.Error(), "Bake cancelled: 0 frames") {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Fatalf("cancelled bake should not write output: %v", statErr)
	}
}

// writeTestJSON はテスト用の値をJSONとして保存する。
func writeTestJSON(t *testing.T, path string, value any) {
	t.Helper()
	b, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write file failed: %v", err)
	}
}
