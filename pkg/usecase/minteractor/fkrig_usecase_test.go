// 指示: miu200521358
package minteractor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/miu200521358/mu_fkrig/pkg/domain/channel"
	"github.com/miu200521358/mu_fkrig/pkg/domain/fkrig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
	"github.com/miu200521358/mu_fkrig/pkg/domain/model"
	"github.com/miu200521358/mu_fkrig/pkg/domain/rig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/section"
	"github.com/miu200521358/mu_fkrig/pkg/usecase/port/moutput"
)

const tipControlNameForTest = "Tip" + rig.ControlSuffix

// newChainSkeletonForUsecaseTest は Root→Mid→Tip のスケルトンを生成する。
func newChainSkeletonForUsecaseTest() *fkrig.Skeleton {
	up := mmath.NewTransformFromTranslation(mmath.NewVec3ByValues(0, 0, 1))
	return &fkrig.Skeleton{
		Name: "chain",
		Bones: []fkrig.BoneDefinition{
			{Name: "Root", ParentIndex: -1, RestLocal: mmath.NewTransform()},
			{Name: "Mid", ParentIndex: 0, RestLocal: up},
			{Name: "Tip", ParentIndex: 1, RestLocal: up},
		},
	}
}

// newBakeFixtureForTest はコントロール生成済みのリグと空のセクションを用意する。
func newBakeFixtureForTest(t *testing.T) (*fkrig.FKControlRig, *section.Section) {
	t.Helper()
	r := fkrig.NewFKControlRig()
	if err := r.ImportSkeleton(newChainSkeletonForUsecaseTest()); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	s := section.NewSection("bake", section.BLEND_TYPE_ABSOLUTE)
	s.RecreateWithHierarchy(r.Hierarchy(), true)
	return r, s
}

// rampPoseSourceForTest は指定ボーンをサンプルごとにX方向へ1ずつ動かす姿勢元。
type rampPoseSourceForTest struct {
	samples int
	index   int
	moving  string
	rest    map[string]mmath.Transform
}

func newRampPoseSourceForTest(samples int) *rampPoseSourceForTest {
	skeleton := newChainSkeletonForUsecaseTest()
	rest := map[string]mmath.Transform{}
	for _, bone := range skeleton.Bones {
		rest[bone.Name] = bone.RestLocal
	}
	return &rampPoseSourceForTest{samples: samples, moving: "Tip", rest: rest}
}

func (s *rampPoseSourceForTest) NumSamples() int {
	return s.samples
}

func (s *rampPoseSourceForTest) SetSampleIndex(index int) error {
	if index < 0 || index >= s.samples {
		return fmt.Errorf("index out of range: %d", index)
	}
	s.index = index
	return nil
}

func (s *rampPoseSourceForTest) BoneLocalTransform(boneName string) (mmath.Transform, bool) {
	local, ok := s.rest[boneName]
	if !ok {
		return mmath.NewTransform(), false
	}
	if boneName == s.moving {
		local.Translation = local.Translation.Added(mmath.NewVec3ByValues(float64(s.index), 0, 0))
	}
	return local, true
}

func (s *rampPoseSourceForTest) CurveValue(curveName string) (float64, bool) {
	return 0, false
}

// cancelReporterForTest は指定位置のキー記録後に中断する。
type cancelReporterForTest struct {
	cancel   context.CancelFunc
	cancelAt int
	events   []BakeProgressEvent
}

func (r *cancelReporterForTest) ReportBakeProgress(event BakeProgressEvent) {
	r.events = append(r.events, event)
	if event.Type == BakeProgressEventTypeFrameRecorded && event.Index == r.cancelAt {
		r.cancel()
	}
}

func tipTranslationXForTest(t *testing.T, s *section.Section) *channel.FloatChannel {
	t.Helper()
	p := s.FindTransformParameter(tipControlNameForTest)
	if p == nil {
		t.Fatalf("transform parameter not found: %s", tipControlNameForTest)
	}
	return p.Translation[0]
}

func TestLoadAnimSequenceBakesRampIntoTipChannel(t *testing.T) {
	r, s := newBakeFixtureForTest(t)
	uc := NewFkRigUsecase(FkRigUsecaseDeps{})

	result, err := uc.LoadAnimSequence(context.Background(), BakeRequest{
		Rig:      r,
		Section:  s,
		Source:   newRampPoseSourceForTest(10),
		Settings: BakeSettings{Interpolation: channel.INTERPOLATION_LINEAR},
	})
	if err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	if !result.Completed || result.Frames != 10 {
		t.Fatalf("result mismatch: completed=%v frames=%d", result.Completed, result.Frames)
	}

	x := tipTranslationXForTest(t, s)
	if x.NumKeys() != 10 {
		t.Fatalf("key count mismatch: got=%d want=10", x.NumKeys())
	}
	for i, key := range x.Keys {
		if key.Frame != channel.Frame(i) || math.Abs(key.Value-float64(i)) > 1e-6 {
			t.Fatalf("key mismatch: index=%d got=(%d,%f) want=(%d,%d)", i, key.Frame, key.Value, i, i)
		}
	}
	if value, ok := x.DefaultValue(); !ok || math.Abs(value) > 1e-6 {
		t.Fatalf("default mismatch: got=%f ok=%v want=0", value, ok)
	}
}

func TestLoadAnimSequenceReducesKeys(t *testing.T) {
	r, s := newBakeFixtureForTest(t)
	uc := NewFkRigUsecase(FkRigUsecaseDeps{})

	result, err := uc.LoadAnimSequence(context.Background(), BakeRequest{
		Rig:      r,
		Section:  s,
		Source:   newRampPoseSourceForTest(10),
		Settings: BakeSettings{Reduce: true, Tolerance: 1},
	})
	if err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	if result.ReducedKeys == 0 {
		t.Fatalf("reduced keys should be counted")
	}
	if got := tipTranslationXForTest(t, s).NumKeys(); got > 3 {
		t.Fatalf("reduced key count mismatch: got=%d want<=3", got)
	}
}

func TestLoadAnimSequenceUsesStartAndInterval(t *testing.T) {
	r, s := newBakeFixtureForTest(t)
	uc := NewFkRigUsecase(FkRigUsecaseDeps{})

	if _, err := uc.LoadAnimSequence(context.Background(), BakeRequest{
		Rig:      r,
		Section:  s,
		Source:   newRampPoseSourceForTest(3),
		Settings: BakeSettings{Start: 10, Interval: 5},
	}); err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	frames := make([]channel.Frame, 0)
	for _, key := range tipTranslationXForTest(t, s).Keys {
		frames = append(frames, key.Frame)
	}
	if !slices.Equal(frames, []channel.Frame{10, 15, 20}) {
		t.Fatalf("frames mismatch: got=%v want=[10 15 20]", frames)
	}
}

func TestLoadAnimSequenceCancelKeepsPartialKeys(t *testing.T) {
	r, s := newBakeFixtureForTest(t)
	uc := NewFkRigUsecase(FkRigUsecaseDeps{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reporter := &cancelReporterForTest{cancel: cancel, cancelAt: 3}

	result, err := uc.LoadAnimSequence(ctx, BakeRequest{
		Rig:              r,
		Section:          s,
		Source:           newRampPoseSourceForTest(10),
		ProgressReporter: reporter,
	})
	if !errors.Is(err, ErrBakeCancelled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("error mismatch: got=%v", err)
	}
	if result == nil || result.Completed {
		t.Fatalf("cancelled bake should not be completed: %+v", result)
	}
	if result.Frames != 4 {
		t.Fatalf("frame count mismatch: got=%d want=4", result.Frames)
	}
	if got := tipTranslationXForTest(t, s).NumKeys(); got != 4 {
		t.Fatalf("partial keys should remain: got=%d want=4", got)
	}
	if !slices.Contains(result.Warnings, model.FkRigWarningBakeCancelled) {
		t.Fatalf("warnings mismatch: got=%v", result.Warnings)
	}
	if last := reporter.events[len(reporter.events)-1]; last.Type != BakeProgressEventTypeCancelled {
		t.Fatalf("last event mismatch: got=%s want=%s", last.Type, BakeProgressEventTypeCancelled)
	}
}

func TestLoadAnimSequenceReportsMissingBone(t *testing.T) {
	r, s := newBakeFixtureForTest(t)
	uc := NewFkRigUsecase(FkRigUsecaseDeps{})
	source := newRampPoseSourceForTest(2)
	delete(source.rest, "Root")

	result, err := uc.LoadAnimSequence(context.Background(), BakeRequest{Rig: r, Section: s, Source: source})
	if err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	if !slices.Equal(result.Warnings, []string{model.FkRigWarningPoseBoneMissing}) {
		t.Fatalf("warnings mismatch: got=%v", result.Warnings)
	}
}

func TestLoadAnimSequenceRequiresSource(t *testing.T) {
	r, s := newBakeFixtureForTest(t)
	uc := NewFkRigUsecase(FkRigUsecaseDeps{})
	if _, err := uc.LoadAnimSequence(context.Background(), BakeRequest{Rig: r, Section: s}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRecordControlRigKeyUnwindsRotation(t *testing.T) {
	r, s := newBakeFixtureForTest(t)
	tipKey := rig.NewControlKey(tipControlNameForTest)

	for frame, yaw := range []float64{170, -170} {
		value := mmath.NewEulerTransform()
		value.Rotation = mmath.NewRotatorByValues(0, 0, yaw)
		if err := r.SetControlValue(tipKey, rig.EulerTransformValue(value), fkrig.SET_KEY_NEVER); err != nil {
			t.Fatalf("set control value failed: %v", err)
		}
		RecordControlRigKey(s, r, channel.Frame(frame), frame == 0, channel.INTERPOLATION_LINEAR)
	}

	yaw := s.FindTransformParameter(tipControlNameForTest).Rotation[2]
	key, ok := yaw.KeyAt(1)
	if !ok || math.Abs(key.Value-190) > 1e-6 {
		t.Fatalf("unwound yaw mismatch: got=%f want=190", key.Value)
	}
}

func TestRecordControlRigKeySkipsMaskedControl(t *testing.T) {
	r, s := newBakeFixtureForTest(t)
	s.SetControlNameMask(tipControlNameForTest, false)

	keys := RecordControlRigKey(s, r, 0, false, channel.INTERPOLATION_LINEAR)
	if keys != 18 {
		t.Fatalf("key count mismatch: got=%d want=18", keys)
	}
	if got := tipTranslationXForTest(t, s).NumKeys(); got != 0 {
		t.Fatalf("masked control should not be keyed: got=%d", got)
	}
}

func TestAutoKeyRecorderIgnoresNeverSetKey(t *testing.T) {
	r, s := newBakeFixtureForTest(t)
	recorder := NewAutoKeyRecorder(r, s, channel.INTERPOLATION_LINEAR)
	recorder.SetFrame(5)

	r.SetApplyMode(fkrig.APPLY_MODE_ADDITIVE)
	if recorder.Keys() != 0 {
		t.Fatalf("apply mode reset should not be keyed: got=%d", recorder.Keys())
	}

	value := mmath.NewEulerTransform()
	value.Location = mmath.NewVec3ByValues(3, 0, 0)
	if err := r.SetControlValue(rig.NewControlKey(tipControlNameForTest), rig.EulerTransformValue(value), fkrig.SET_KEY_ALWAYS); err != nil {
		t.Fatalf("set control value failed: %v", err)
	}
	if recorder.Keys() != 9 {
		t.Fatalf("key count mismatch: got=%d want=9", recorder.Keys())
	}
	key, ok := tipTranslationXForTest(t, s).KeyAt(5)
	if !ok || math.Abs(key.Value-3) > 1e-6 {
		t.Fatalf("auto key mismatch: got=%f ok=%v want=3", key.Value, ok)
	}
}

func TestFixRotationWinding(t *testing.T) {
	r, s := newBakeFixtureForTest(t)
	yaw := s.FindTransformParameter(tipControlNameForTest).Rotation[2]
	yaw.AddKey(0, 170, channel.INTERPOLATION_LINEAR)
	yaw.AddKey(1, -170, channel.INTERPOLATION_LINEAR)
	yaw.AddKey(2, -150, channel.INTERPOLATION_LINEAR)

	if changed := FixRotationWinding(r, s, tipControlNameForTest, 0, 2); changed != 2 {
		t.Fatalf("changed mismatch: got=%d want=2", changed)
	}
	want := []float64{170, 190, 210}
	for i, key := range yaw.Keys {
		if math.Abs(key.Value-want[i]) > 1e-6 {
			t.Fatalf("yaw mismatch: index=%d got=%f want=%f", i, key.Value, want[i])
		}
	}
}

func TestOptimizeSectionOnlyTouchesListedControls(t *testing.T) {
	r, s := newBakeFixtureForTest(t)
	rootName := "Root" + rig.ControlSuffix
	rootX := s.FindTransformParameter(rootName).Translation[0]
	tipX := tipTranslationXForTest(t, s)
	for frame := 0; frame < 10; frame++ {
		rootX.AddKey(channel.Frame(frame), float64(frame), channel.INTERPOLATION_LINEAR)
		tipX.AddKey(channel.Frame(frame), float64(frame), channel.INTERPOLATION_LINEAR)
	}

	removed := OptimizeSection(r, s, []string{rootName}, OptimizeSettings{Tolerance: 0.01})
	if removed != 8 || rootX.NumKeys() != 2 {
		t.Fatalf("root optimize mismatch: removed=%d keys=%d", removed, rootX.NumKeys())
	}
	if tipX.NumKeys() != 10 {
		t.Fatalf("tip keys should remain: got=%d want=10", tipX.NumKeys())
	}
}

// newCollapseTrackForTest は Tip のX移動を絶対値5・加算2で持つ2レイヤーのトラックを生成する。
func newCollapseTrackForTest(t *testing.T) (*fkrig.FKControlRig, *section.Track) {
	t.Helper()
	r, layerA := newBakeFixtureForTest(t)
	layerB := section.NewSection("additive", section.BLEND_TYPE_ADDITIVE)
	layerB.RecreateWithHierarchy(r.Hierarchy(), true)
	tipTranslationXForTest(t, layerA).AddKey(0, 5, channel.INTERPOLATION_CONSTANT)
	tipTranslationXForTest(t, layerB).AddKey(2, 2, channel.INTERPOLATION_CONSTANT)

	track := section.NewTrack("collapse")
	track.AddSection(layerA)
	track.AddSection(layerB)
	return r, track
}

func TestCollapseAllLayersBakesComposedValue(t *testing.T) {
	r, track := newCollapseTrackForTest(t)
	base := track.Sections[0]
	uc := NewFkRigUsecase(FkRigUsecaseDeps{})

	result, err := uc.CollapseAllLayers(context.Background(), CollapseRequest{
		Rig:   r,
		Track: track,
		Settings: CollapseSettings{
			Start: 0, End: 4, FrameIncrement: 1, Interpolation: channel.INTERPOLATION_LINEAR,
		},
	})
	if err != nil {
		t.Fatalf("collapse failed: %v", err)
	}
	if !result.Completed || result.Frames != 5 || result.RemovedSections != 1 {
		t.Fatalf("result mismatch: %+v", result)
	}
	if len(track.Sections) != 1 || track.Sections[0] != base {
		t.Fatalf("only base section should remain: got=%d", len(track.Sections))
	}
	value, ok := tipTranslationXForTest(t, base).Evaluate(2)
	if !ok || math.Abs(value-7) > 1e-6 {
		t.Fatalf("collapsed value mismatch: got=%f want=7", value)
	}
	if got := tipTranslationXForTest(t, base).NumKeys(); got != 5 {
		t.Fatalf("key count mismatch: got=%d want=5", got)
	}
}

func TestCollapseAllLayersCancelRestoresTrack(t *testing.T) {
	r, track := newCollapseTrackForTest(t)
	uc := NewFkRigUsecase(FkRigUsecaseDeps{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result, err := uc.CollapseAllLayers(ctx, CollapseRequest{
		Rig:              r,
		Track:            track,
		Settings:         CollapseSettings{Start: 0, End: 4},
		ProgressReporter: &cancelReporterForTest{cancel: cancel, cancelAt: 0},
	})
	if !errors.Is(err, ErrBakeCancelled) {
		t.Fatalf("error mismatch: got=%v", err)
	}
	if result.Completed || !slices.Contains(result.Warnings, model.FkRigWarningCollapseRolledBack) {
		t.Fatalf("result mismatch: %+v", result)
	}
	if len(track.Sections) != 2 {
		t.Fatalf("sections should be restored: got=%d want=2", len(track.Sections))
	}
	x := tipTranslationXForTest(t, track.Sections[0])
	if x.NumKeys() != 1 {
		t.Fatalf("base keys should be restored: got=%d want=1", x.NumKeys())
	}
	if value, _ := x.Evaluate(0); math.Abs(value-5) > 1e-6 {
		t.Fatalf("restored value mismatch: got=%f want=5", value)
	}
}

func TestCollapseAllLayersRequiresAbsoluteBase(t *testing.T) {
	r, _ := newBakeFixtureForTest(t)
	uc := NewFkRigUsecase(FkRigUsecaseDeps{})

	if _, err := uc.CollapseAllLayers(context.Background(), CollapseRequest{Rig: r, Track: section.NewTrack("empty")}); !errors.Is(err, section.ErrNoSections) {
		t.Fatalf("error mismatch: got=%v want=%v", err, section.ErrNoSections)
	}
	track := section.NewTrack("additive")
	track.AddSection(section.NewSection("additive", section.BLEND_TYPE_ADDITIVE))
	if _, err := uc.CollapseAllLayers(context.Background(), CollapseRequest{Rig: r, Track: track}); !errors.Is(err, section.ErrFirstSectionNotAbsolute) {
		t.Fatalf("error mismatch: got=%v want=%v", err, section.ErrFirstSectionNotAbsolute)
	}
}

// memorySkeletonReaderForTest はメモリ上のスケルトンを返す。
type memorySkeletonReaderForTest struct{}

func (memorySkeletonReaderForTest) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".glb")
}

func (memorySkeletonReaderForTest) ReadSkeleton(path string) (*fkrig.Skeleton, error) {
	return newChainSkeletonForUsecaseTest(), nil
}

// memoryClipReaderForTest はランプ移動の姿勢元を返す。
type memoryClipReaderForTest struct{}

func (memoryClipReaderForTest) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func (memoryClipReaderForTest) ReadClip(path string) (moutput.ISampledPoseSource, error) {
	return newRampPoseSourceForTest(5), nil
}

// memoryTrackWriterForTest は保存要求を記録する。
type memoryTrackWriterForTest struct {
	path  string
	track *section.Track
}

func (w *memoryTrackWriterForTest) WriteTrack(path string, track *section.Track) error {
	w.path = path
	w.track = track
	return nil
}

func TestFkRigUsecaseBakeClip(t *testing.T) {
	tempDir := t.TempDir()
	writer := &memoryTrackWriterForTest{}
	uc := NewFkRigUsecase(FkRigUsecaseDeps{
		SkeletonReader: memorySkeletonReaderForTest{},
		ClipReader:     memoryClipReaderForTest{},
		TrackWriter:    writer,
	})
	outPath := filepath.Join(tempDir, "out", "walk_track.json")

	result, err := uc.BakeClip(context.Background(), BakeClipRequest{
		SkeletonPath: filepath.Join(tempDir, "chain.glb"),
		ClipPath:     filepath.Join(tempDir, "walk.json"),
		OutputPath:   outPath,
	})
	if err != nil {
		t.Fatalf("bake clip failed: %v", err)
	}
	if result.OutputPath != outPath || writer.path != outPath {
		t.Fatalf("output path mismatch: got=%s written=%s want=%s", result.OutputPath, writer.path, outPath)
	}
	if writer.track != result.Track || len(result.Track.Sections) != 1 {
		t.Fatalf("written track mismatch")
	}
	if result.Track.Sections[0].Name != "walk" {
		t.Fatalf("section name mismatch: got=%s want=walk", result.Track.Sections[0].Name)
	}
	if !result.Bake.Completed || result.Bake.Frames != 5 {
		t.Fatalf("bake result mismatch: %+v", result.Bake)
	}
}

func TestFkRigUsecaseBakeClipRequiresJsonExt(t *testing.T) {
	uc := NewFkRigUsecase(FkRigUsecaseDeps{})
	_, err := uc.BakeClip(context.Background(), BakeClipRequest{
		SkeletonPath: "chain.glb",
		ClipPath:     "walk.json",
		OutputPath:   "walk.vmd",
	})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestFkRigUsecaseLoadSkeletonRejectsUnknownExt(t *testing.T) {
	uc := NewFkRigUsecase(FkRigUsecaseDeps{SkeletonReader: memorySkeletonReaderForTest{}})
	if _, err := uc.LoadSkeleton(nil, "chain.fbx"); err == nil {
		t.Fatalf("expected error")
	}
}
