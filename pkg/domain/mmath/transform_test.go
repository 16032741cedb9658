// 指示: miu200521358
package mmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRotatorQuaternionRoundTrip(t *testing.T) {
	cases := []Rotator{
		{Roll: 0, Pitch: 0, Yaw: 0},
		{Roll: 30, Pitch: 0, Yaw: 0},
		{Roll: 0, Pitch: 45, Yaw: 0},
		{Roll: 0, Pitch: 0, Yaw: 90},
		{Roll: 10, Pitch: -20, Yaw: 135},
	}
	for _, rot := range cases {
		got := rot.Quaternion().ToRotator()
		if !got.NearEquals(rot, 1e-6) {
			t.Fatalf("rotator round trip mismatch: got=%+v want=%+v", got, rot)
		}
	}
}

func TestRotatorYawRotatesXTowardY(t *testing.T) {
	q := Rotator{Yaw: 90}.Quaternion()
	got := q.MulVec3(UNIT_X_VEC3)
	if !got.NearEquals(UNIT_Y_VEC3, 1e-9) {
		t.Fatalf("yaw rotation mismatch: got=%v want=%v", got, UNIT_Y_VEC3)
	}
}

func TestTransformRelativeToInvertsMuled(t *testing.T) {
	offset := NewTransformByValues(
		Vec3{Vec: r3.Vec{X: 1, Y: 2, Z: 3}},
		Rotator{Roll: 10, Pitch: 20, Yaw: 30}.Quaternion(),
		Vec3{Vec: r3.Vec{X: 2, Y: 2, Z: 2}},
	)
	local := NewTransformByValues(
		Vec3{Vec: r3.Vec{X: -4, Y: 0.5, Z: 8}},
		Rotator{Roll: -45, Pitch: 5, Yaw: 60}.Quaternion(),
		ONE_VEC3,
	)

	composed := local.Muled(offset)
	back := composed.RelativeTo(offset)
	if !back.NearEquals(local, 1e-9) {
		t.Fatalf("relative mismatch: got=%+v want=%+v", back, local)
	}
}

func TestTransformMuledAccumulatesParentTranslation(t *testing.T) {
	parent := NewTransformFromTranslation(Vec3{Vec: r3.Vec{Z: 10}})
	child := NewTransformFromTranslation(Vec3{Vec: r3.Vec{Z: 5}})

	global := child.Muled(parent)
	if math.Abs(global.Translation.Z-15) > 1e-9 {
		t.Fatalf("global z mismatch: got=%v want=15", global.Translation.Z)
	}
}

func TestTransformInverted(t *testing.T) {
	tr := NewTransformByValues(
		Vec3{Vec: r3.Vec{X: 3}},
		Rotator{Yaw: 45}.Quaternion(),
		ONE_VEC3,
	)
	got := tr.Muled(tr.Inverted())
	if !got.IsIdentity() {
		t.Fatalf("transform * inverse should be identity: got=%+v", got)
	}
}

func TestWindRelativeAnglesDegrees(t *testing.T) {
	cases := []struct {
		angle0 float64
		angle1 float64
		want   float64
	}{
		{angle0: 170, angle1: -170, want: 190},
		{angle0: -170, angle1: 170, want: -190},
		{angle0: 0, angle1: 720, want: 0},
		{angle0: 10, angle1: 20, want: 20},
	}
	for _, c := range cases {
		got := WindRelativeAnglesDegrees(c.angle0, c.angle1)
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("wind mismatch: angle0=%v angle1=%v got=%v want=%v", c.angle0, c.angle1, got, c.want)
		}
	}
}

func TestNewRotatorFromQuaternionClosestKeepsWinding(t *testing.T) {
	preferred := Rotator{Yaw: 350}
	q := Rotator{Yaw: -5}.Quaternion()

	got := NewRotatorFromQuaternionClosest(q, preferred)
	if math.Abs(got.Yaw-355) > 1e-6 {
		t.Fatalf("closest yaw mismatch: got=%v want=355", got.Yaw)
	}
	if !got.Quaternion().NearEquals(q, 1e-9) {
		t.Fatalf("closest rotator should keep rotation: got=%+v", got)
	}
}

func TestEulerTransformRoundTrip(t *testing.T) {
	euler := EulerTransform{
		Location: Vec3{Vec: r3.Vec{X: 1, Y: -2, Z: 3}},
		Rotation: Rotator{Roll: 15, Pitch: 25, Yaw: -35},
		Scale:    Vec3{Vec: r3.Vec{X: 1, Y: 2, Z: 1}},
	}
	back := NewEulerTransformFromTransform(euler.ToTransform(), euler.Rotation)
	if !back.Location.NearEquals(euler.Location, 1e-9) ||
		!back.Rotation.NearEquals(euler.Rotation, 1e-6) ||
		!back.Scale.NearEquals(euler.Scale, 1e-9) {
		t.Fatalf("euler transform round trip mismatch: got=%+v want=%+v", back, euler)
	}
}

func TestNewTransformFromMatrix(t *testing.T) {
	want := NewTransformByValues(
		Vec3{Vec: r3.Vec{X: 1, Y: 2, Z: 3}},
		Rotator{Roll: 15, Pitch: -30, Yaw: 90}.Quaternion(),
		Vec3{Vec: r3.Vec{X: 2, Y: 2, Z: 2}},
	)
	m := mgl64.Translate3D(1, 2, 3).Mul4(want.Rotation.toMgl().Mat4()).Mul4(mgl64.Scale3D(2, 2, 2))

	got := NewTransformFromMatrix([16]float64(m))
	if !got.Translation.NearEquals(want.Translation, 1e-9) || !got.Scale.NearEquals(want.Scale, 1e-9) {
		t.Fatalf("translation/scale mismatch: got=%+v want=%+v", got, want)
	}
	point := Vec3{Vec: r3.Vec{X: 0.5, Y: -1, Z: 4}}
	if !got.TransformPosition(point).NearEquals(want.TransformPosition(point), 1e-9) {
		t.Fatalf("transformed point mismatch: got=%v want=%v", got.TransformPosition(point), want.TransformPosition(point))
	}
}
