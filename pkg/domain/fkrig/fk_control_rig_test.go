// 指示: miu200521358
package fkrig

import (
	"errors"
	"math"
	"testing"

	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
	"github.com/miu200521358/mu_fkrig/pkg/domain/rig"
	"gonum.org/v1/gonum/spatial/r3"
)

// newChainSkeletonForTest は Root→Mid→Tip とカーブ1本のスケルトンを返す。
func newChainSkeletonForTest() *Skeleton {
	return &Skeleton{
		Name: "chain",
		Bones: []BoneDefinition{
			{Name: "Root", ParentIndex: -1, RestLocal: mmath.NewTransform()},
			{Name: "Mid", ParentIndex: 0, RestLocal: mmath.NewTransformFromTranslation(mmath.NewVec3ByValues(0, 0, 1))},
			{Name: "Tip", ParentIndex: 1, RestLocal: mmath.NewTransformFromTranslation(mmath.NewVec3ByValues(0, 0, 2))},
		},
		Curves: []CurveDefinition{{Name: "blink", DefaultValue: 0.5}},
	}
}

// newImportedRigForTest はチェーンスケルトンを取り込んだリグを返す。
func newImportedRigForTest(t *testing.T, opts ...Option) *FKControlRig {
	t.Helper()
	r := NewFKControlRig(opts...)
	if err := r.ImportSkeleton(newChainSkeletonForTest()); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	return r
}

// newIdentityOffsetRigForTest は恒等オフセットの Transform コントロールを持つチェーンを返す。
func newIdentityOffsetRigForTest(t *testing.T) *FKControlRig {
	t.Helper()
	h := rig.NewHierarchy()
	r := NewFKControlRig(WithHierarchy(h))
	parent := rig.ElementKey{}
	for _, def := range newChainSkeletonForTest().Bones {
		key, err := h.AddBone(def.Name, parent, def.RestLocal)
		if err != nil {
			t.Fatalf("add bone failed: %v", err)
		}
		controlName := r.NameCache().ControlNameFor(def.Name, rig.ELEMENT_TYPE_BONE)
		if _, err := h.AddControl(controlName, parent, rig.NewControlSettings(rig.CONTROL_TYPE_TRANSFORM), mmath.NewTransform(), nil); err != nil {
			t.Fatalf("add control failed: %v", err)
		}
		parent = key
	}
	return r
}

func TestImportSkeletonCreatesControls(t *testing.T) {
	r := newImportedRigForTest(t)
	h := r.Hierarchy()
	if h.Num() != 8 {
		t.Fatalf("element count mismatch: got=%d want=8", h.Num())
	}

	settings, ok := h.ControlSettings(rig.NewControlKey("Mid_CONTROL"))
	if !ok || settings.ControlType != rig.CONTROL_TYPE_EULER_TRANSFORM {
		t.Fatalf("bone control should be euler transform: got=%v ok=%v", settings.ControlType, ok)
	}
	parent, ok := h.Parent(rig.NewControlKey("Mid_CONTROL"))
	if !ok || parent != rig.NewBoneKey("Root") {
		t.Fatalf("bone control parent mismatch: got=%v", parent)
	}
	offset, _ := h.ControlOffset(rig.NewControlKey("Tip_CONTROL"))
	if math.Abs(offset.Translation.Z-2) > 1e-9 {
		t.Fatalf("offset should be bone initial: got=%v want=2", offset.Translation.Z)
	}

	curveKey := rig.NewControlKey("blink_CURVE_CONTROL")
	value, _ := h.ControlValue(curveKey)
	if value != rig.FloatValue(0.5) {
		t.Fatalf("curve control value mismatch: got=%v want=0.5", value)
	}
	if got := h.DisplayNameForUI(curveKey); got != "blink Curve" {
		t.Fatalf("curve display name mismatch: got=%s", got)
	}
}

func TestImportSkeletonRejectsForwardParent(t *testing.T) {
	r := NewFKControlRig()
	skeleton := &Skeleton{Bones: []BoneDefinition{
		{Name: "A", ParentIndex: 1, RestLocal: mmath.NewTransform()},
		{Name: "B", ParentIndex: -1, RestLocal: mmath.NewTransform()},
	}}
	if err := r.ImportSkeleton(skeleton); !errors.Is(err, rig.ErrCycle) {
		t.Fatalf("expected ErrCycle: %v", err)
	}
	if r.Hierarchy().Num() != 0 {
		t.Fatalf("failed import should leave empty hierarchy: got=%d", r.Hierarchy().Num())
	}
}

func TestForwardReplaceComposesOffset(t *testing.T) {
	r := newImportedRigForTest(t)
	controlKey := rig.NewControlKey("Tip_CONTROL")
	rotation := mmath.NewRotatorByValues(0, 0, 90)
	value := mmath.NewEulerTransform()
	value.Location = mmath.NewVec3ByValues(1, 0, 0)
	value.Rotation = rotation
	if err := r.SetControlValue(controlKey, rig.EulerTransformValue(value), SET_KEY_DEVELOPER); err != nil {
		t.Fatalf("set control failed: %v", err)
	}

	r.Execute(EVENT_FORWARD)

	offset, _ := r.Hierarchy().ControlOffset(controlKey)
	want := value.ToTransform().Muled(offset).Normalized()
	got, _ := r.Hierarchy().LocalTransform(rig.NewBoneKey("Tip"))
	if !got.NearEquals(want, 1e-9) {
		t.Fatalf("replace local mismatch: got=%+v want=%+v", got, want)
	}
}

func TestForwardDirectIgnoresOffset(t *testing.T) {
	r := newImportedRigForTest(t, WithApplyMode(APPLY_MODE_DIRECT))
	controlKey := rig.NewControlKey("Mid_CONTROL")
	r.Hierarchy().SetControlOffset(controlKey, mmath.NewTransformByValues(
		mmath.NewVec3ByValues(5, 6, 7),
		mmath.NewRotatorByValues(10, 20, 30).Quaternion(),
		mmath.NewVec3ByValues(2, 2, 2),
	))
	value := mmath.NewEulerTransform()
	value.Location = mmath.NewVec3ByValues(0, 3, 0)
	if err := r.SetControlValue(controlKey, rig.EulerTransformValue(value), SET_KEY_DEVELOPER); err != nil {
		t.Fatalf("set control failed: %v", err)
	}

	r.Execute(EVENT_FORWARD)

	got, _ := r.Hierarchy().LocalTransform(rig.NewBoneKey("Mid"))
	if !got.NearEquals(value.ToTransform(), 1e-12) {
		t.Fatalf("direct local should equal control value: got=%+v", got)
	}
}

func TestForwardSkipsInactiveControl(t *testing.T) {
	r := newImportedRigForTest(t)
	controlKey := rig.NewControlKey("Mid_CONTROL")
	value := mmath.NewEulerTransform()
	value.Location = mmath.NewVec3ByValues(0, 0, 50)
	_ = r.SetControlValue(controlKey, rig.EulerTransformValue(value), SET_KEY_DEVELOPER)
	r.SetControlActive(controlKey, false)

	r.Execute(EVENT_FORWARD)

	got, _ := r.Hierarchy().LocalTransform(rig.NewBoneKey("Mid"))
	if math.Abs(got.Translation.Z-1) > 1e-9 {
		t.Fatalf("inactive control should not move bone: got=%v want=1", got.Translation.Z)
	}
}

func TestForwardCurveModes(t *testing.T) {
	r := newImportedRigForTest(t)
	curveKey := rig.NewCurveKey("blink")
	controlKey := rig.NewControlKey("blink_CURVE_CONTROL")

	_ = r.SetControlValue(controlKey, rig.FloatValue(0.25), SET_KEY_DEVELOPER)
	r.Execute(EVENT_FORWARD)
	if got, _ := r.Hierarchy().CurveValue(curveKey); math.Abs(got-0.25) > 1e-12 {
		t.Fatalf("replace curve mismatch: got=%v want=0.25", got)
	}

	r.SetApplyMode(APPLY_MODE_ADDITIVE)
	r.Hierarchy().SetCurveValue(curveKey, 0.5)
	_ = r.SetControlValue(controlKey, rig.FloatValue(0.25), SET_KEY_DEVELOPER)
	r.Execute(EVENT_FORWARD)
	if got, _ := r.Hierarchy().CurveValue(curveKey); math.Abs(got-0.75) > 1e-12 {
		t.Fatalf("additive curve mismatch: got=%v want=0.75", got)
	}
}

func TestForwardAdditiveLayersOnCurrentBone(t *testing.T) {
	r := newImportedRigForTest(t, WithApplyMode(APPLY_MODE_ADDITIVE))
	controlKey := rig.NewControlKey("Mid_CONTROL")
	value := mmath.NewEulerTransform()
	value.Location = mmath.NewVec3ByValues(0, 0, 2)
	_ = r.SetControlValue(controlKey, rig.EulerTransformValue(value), SET_KEY_DEVELOPER)

	r.Execute(EVENT_FORWARD)
	r.Execute(EVENT_FORWARD)

	got, _ := r.Hierarchy().LocalTransform(rig.NewBoneKey("Mid"))
	if math.Abs(got.Translation.Z-5) > 1e-9 {
		t.Fatalf("additive should accumulate per tick: got=%v want=5", got.Translation.Z)
	}
}

func TestForwardWorldSpaceControl(t *testing.T) {
	r := newImportedRigForTest(t)
	h := r.Hierarchy()
	controlKey := rig.NewControlKey("Tip_CONTROL")
	if !h.SetControlSpace(controlKey, rig.WorldSpace()) {
		t.Fatalf("set space failed")
	}
	value := mmath.NewEulerTransform()
	value.Location = mmath.NewVec3ByValues(4, 0, 0)
	_ = r.SetControlValue(controlKey, rig.EulerTransformValue(value), SET_KEY_DEVELOPER)

	r.Execute(EVENT_FORWARD)

	global, _ := h.GlobalTransform(rig.NewBoneKey("Tip"))
	if !global.Translation.NearEquals(mmath.NewVec3ByValues(4, 0, 0), 1e-9) {
		t.Fatalf("world space global mismatch: got=%+v", global.Translation)
	}
}

func TestInverseIsIdempotent(t *testing.T) {
	r := newImportedRigForTest(t)
	h := r.Hierarchy()
	h.SetLocalTransform(rig.NewBoneKey("Mid"), mmath.NewTransformByValues(
		mmath.NewVec3ByValues(1, 2, 3),
		mmath.NewRotatorByValues(15, -40, 170).Quaternion(),
		mmath.ONE_VEC3,
	))
	h.SetCurveValue(rig.NewCurveKey("blink"), 0.9)

	r.Execute(EVENT_INVERSE)
	first := map[string]rig.ControlValue{}
	for _, control := range h.ControlsInOrder() {
		first[control.Key.Name] = control.Control.Current
	}
	r.Execute(EVENT_INVERSE)

	for _, control := range h.ControlsInOrder() {
		before := first[control.Key.Name]
		after := control.Control.Current
		if beforeFloat, ok := rig.ControlValueToFloat(before); ok {
			afterFloat, _ := rig.ControlValueToFloat(after)
			if beforeFloat != afterFloat {
				t.Fatalf("curve control changed: name=%s got=%v want=%v", control.Key.Name, afterFloat, beforeFloat)
			}
			continue
		}
		beforeEuler := mmath.EulerTransform(before.(rig.EulerTransformValue))
		afterEuler := mmath.EulerTransform(after.(rig.EulerTransformValue))
		if !beforeEuler.Rotation.NearEquals(afterEuler.Rotation, 1e-9) || !beforeEuler.Location.NearEquals(afterEuler.Location, 1e-9) {
			t.Fatalf("inverse not idempotent: name=%s got=%+v want=%+v", control.Key.Name, afterEuler, beforeEuler)
		}
	}

	value, _ := h.ControlValue(rig.NewControlKey("blink_CURVE_CONTROL"))
	if value != rig.FloatValue(0.9) {
		t.Fatalf("curve control mismatch: got=%v want=0.9", value)
	}
}

func TestInverseDirectIgnoresOffset(t *testing.T) {
	r := newImportedRigForTest(t, WithApplyMode(APPLY_MODE_DIRECT))
	h := r.Hierarchy()
	controlKey := rig.NewControlKey("Mid_CONTROL")
	h.SetControlOffset(controlKey, mmath.NewTransformByValues(
		mmath.NewVec3ByValues(5, 6, 7),
		mmath.NewRotatorByValues(10, 20, 30).Quaternion(),
		mmath.ONE_VEC3,
	))
	pose := mmath.NewTransformByValues(
		mmath.NewVec3ByValues(1, 2, 3),
		mmath.NewRotatorByValues(0, 0, 45).Quaternion(),
		mmath.ONE_VEC3,
	)
	h.SetLocalTransform(rig.NewBoneKey("Mid"), pose)

	for i := 0; i < 2; i++ {
		r.Execute(EVENT_INVERSE)
		got, ok := h.LocalTransform(controlKey)
		if !ok {
			t.Fatalf("control local missing")
		}
		if !got.Translation.NearEquals(pose.Translation, 1e-9) {
			t.Fatalf("direct inverse translation mismatch: pass=%d got=%+v want=%+v", i, got.Translation, pose.Translation)
		}
		axis := mmath.UNIT_X_VEC3
		if !got.Rotation.MulVec3(axis).NearEquals(pose.Rotation.MulVec3(axis), 1e-9) {
			t.Fatalf("direct inverse rotation mismatch: pass=%d got=%+v want=%+v", i, got.Rotation, pose.Rotation)
		}
	}
}

func TestInverseThenForwardRestoresPose(t *testing.T) {
	r := newImportedRigForTest(t)
	h := r.Hierarchy()
	pose := mmath.NewTransformByValues(
		mmath.NewVec3ByValues(0.5, 1, 2),
		mmath.NewRotatorByValues(30, 10, -60).Quaternion(),
		mmath.ONE_VEC3,
	)
	h.SetLocalTransform(rig.NewBoneKey("Tip"), pose)

	r.Execute(EVENT_INVERSE)
	h.ResetPoseToInitial(rig.ELEMENT_TYPE_BONE)
	r.Execute(EVENT_FORWARD)

	got, _ := h.LocalTransform(rig.NewBoneKey("Tip"))
	if !got.NearEquals(pose, 1e-6) {
		t.Fatalf("round trip mismatch: got=%+v want=%+v", got, pose)
	}
}

func TestToggleApplyModeRestoresInitialValues(t *testing.T) {
	r := newImportedRigForTest(t)
	h := r.Hierarchy()
	controlKey := rig.NewControlKey("Mid_CONTROL")
	initial := mmath.NewEulerTransform()
	initial.Location = mmath.NewVec3ByValues(1, 2, 3)
	initial.Rotation = mmath.NewRotatorByValues(0, 45, 0)
	if err := h.SetInitialControlValue(controlKey, rig.EulerTransformValue(initial)); err != nil {
		t.Fatalf("set initial failed: %v", err)
	}
	_ = h.SetControlValue(controlKey, rig.EulerTransformValue(initial))
	_ = h.SetInitialControlValue(rig.NewControlKey("blink_CURVE_CONTROL"), rig.FloatValue(0.3))
	_ = h.SetControlValue(rig.NewControlKey("blink_CURVE_CONTROL"), rig.FloatValue(0.3))

	r.ToggleApplyMode()
	if r.ApplyMode() != APPLY_MODE_ADDITIVE {
		t.Fatalf("toggle should enter additive: got=%s", r.ApplyMode())
	}
	value, _ := h.ControlValue(controlKey)
	if value != rig.NeutralControlValue(rig.CONTROL_TYPE_EULER_TRANSFORM) {
		t.Fatalf("additive should reset to neutral: got=%+v", value)
	}
	curveValue, _ := h.ControlValue(rig.NewControlKey("blink_CURVE_CONTROL"))
	if curveValue != rig.FloatValue(0) {
		t.Fatalf("additive curve should be zero: got=%v", curveValue)
	}

	r.ToggleApplyMode()
	if r.ApplyMode() != APPLY_MODE_REPLACE {
		t.Fatalf("toggle should restore replace: got=%s", r.ApplyMode())
	}
	value, _ = h.ControlValue(controlKey)
	if value != rig.EulerTransformValue(initial) {
		t.Fatalf("value should be restored: got=%+v want=%+v", value, initial)
	}
	curveValue, _ = h.ControlValue(rig.NewControlKey("blink_CURVE_CONTROL"))
	if curveValue != rig.FloatValue(0.3) {
		t.Fatalf("curve should be restored: got=%v", curveValue)
	}
}

func TestSetApplyModeSameModeKeepsValues(t *testing.T) {
	r := newImportedRigForTest(t)
	controlKey := rig.NewControlKey("Mid_CONTROL")
	value := mmath.NewEulerTransform()
	value.Location = mmath.NewVec3ByValues(0, 0, 10)
	if err := r.SetControlValue(controlKey, rig.EulerTransformValue(value), SET_KEY_DEVELOPER); err != nil {
		t.Fatalf("set control failed: %v", err)
	}
	notified := 0
	r.OnControlModified(func(_ rig.ElementKey, _ ControlModifiedContext) {
		notified++
	})

	r.SetApplyMode(APPLY_MODE_REPLACE)

	got, _ := r.Hierarchy().ControlValue(controlKey)
	if got != rig.EulerTransformValue(value) {
		t.Fatalf("same mode should keep value: got=%+v want=%+v", got, value)
	}
	if notified != 0 {
		t.Fatalf("same mode should not reset controls: got=%d want=0", notified)
	}
}

func TestToggleApplyModeRemembersDirect(t *testing.T) {
	r := newImportedRigForTest(t, WithApplyMode(APPLY_MODE_DIRECT))
	r.ToggleApplyMode()
	r.ToggleApplyMode()
	if r.ApplyMode() != APPLY_MODE_DIRECT {
		t.Fatalf("toggle should restore direct: got=%s", r.ApplyMode())
	}
	if r.CachedToggleApplyMode() != APPLY_MODE_DIRECT {
		t.Fatalf("cached mode mismatch: got=%s", r.CachedToggleApplyMode())
	}
}

func TestSetApplyModeNotifiesNeverSetKey(t *testing.T) {
	r := newImportedRigForTest(t)
	var contexts []ControlModifiedContext
	r.OnControlModified(func(_ rig.ElementKey, context ControlModifiedContext) {
		contexts = append(contexts, context)
	})

	r.SetApplyMode(APPLY_MODE_ADDITIVE)

	if len(contexts) != 4 {
		t.Fatalf("notification count mismatch: got=%d want=4", len(contexts))
	}
	for _, context := range contexts {
		if context.SetKey != SET_KEY_NEVER {
			t.Fatalf("apply mode reset must not key: got=%v", context.SetKey)
		}
	}
}

func TestForwardReplaceThreeBoneScenario(t *testing.T) {
	r := newIdentityOffsetRigForTest(t)
	h := r.Hierarchy()
	r.Execute(EVENT_FORWARD)
	midBefore, _ := h.GlobalTransform(rig.NewBoneKey("Mid"))
	tipBefore, _ := h.GlobalTransform(rig.NewBoneKey("Tip"))

	value := mmath.NewTransformFromTranslation(mmath.Vec3{Vec: r3.Vec{Z: 10}})
	if err := r.SetControlValue(rig.NewControlKey("Mid_CONTROL"), rig.TransformValue(value), SET_KEY_DEVELOPER); err != nil {
		t.Fatalf("set control failed: %v", err)
	}
	r.Execute(EVENT_FORWARD)

	midAfter, _ := h.GlobalTransform(rig.NewBoneKey("Mid"))
	tipAfter, _ := h.GlobalTransform(rig.NewBoneKey("Tip"))
	if math.Abs(midAfter.Translation.Z-midBefore.Translation.Z-10) > 1e-9 {
		t.Fatalf("mid global z delta mismatch: got=%v want=10", midAfter.Translation.Z-midBefore.Translation.Z)
	}
	if math.Abs(tipAfter.Translation.Z-tipBefore.Translation.Z-10) > 1e-9 {
		t.Fatalf("tip global z delta mismatch: got=%v want=10", tipAfter.Translation.Z-tipBefore.Translation.Z)
	}
}

func TestSeparateNameCachesPerRig(t *testing.T) {
	first := NewFKControlRig()
	second := NewFKControlRig(WithNameCache(rig.NewNameCache()))
	first.ControlKeyFor(rig.NewBoneKey("a"))
	if second.NameCache().Len() != 0 {
		t.Fatalf("name caches should be independent")
	}
	if got := first.TargetKeyFor(rig.NewControlKey("a_CONTROL"), rig.ELEMENT_TYPE_BONE); got != rig.NewBoneKey("a") {
		t.Fatalf("target key mismatch: got=%v", got)
	}
}

func TestParseApplyModeIgnoresCase(t *testing.T) {
	got, ok := ParseApplyMode(" Additive ")
	if !ok || got != APPLY_MODE_ADDITIVE {
		t.Fatalf("parse mismatch: got=%v ok=%v", got, ok)
	}
	if _, ok := ParseApplyMode("blend"); ok {
		t.Fatalf("unknown mode should not parse")
	}
}
