// 指示: miu200521358
package mmath

import "github.com/go-gl/mathgl/mgl64"

// Transform は平行移動・回転・スケールを表す。
// 合成 a.Muled(b) は a を先に適用し、その結果を b の空間へ置く。
type Transform struct {
	Translation Vec3
	Rotation    Quaternion
	Scale       Vec3
}

// NewTransform は恒等トランスフォームを生成する。
func NewTransform() Transform {
	return Transform{
		Translation: ZERO_VEC3,
		Rotation:    NewQuaternion(),
		Scale:       ONE_VEC3,
	}
}

// NewTransformByValues は要素からトランスフォームを生成する。
func NewTransformByValues(translation Vec3, rotation Quaternion, scale Vec3) Transform {
	return Transform{Translation: translation, Rotation: rotation, Scale: scale}
}

// NewTransformFromTranslation は平行移動だけを持つトランスフォームを生成する。
func NewTransformFromTranslation(translation Vec3) Transform {
	t := NewTransform()
	t.Translation = translation
	return t
}

// NewTransformFromMatrix は列優先の4x4行列を平行移動・回転・スケールへ分解する。
// せん断を含む行列は近い回転へ丸める。
func NewTransformFromMatrix(values [16]float64) Transform {
	m := mgl64.Mat4(values)
	scale := NewVec3ByValues(m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len())
	reciprocal := scale.SafeReciprocal()
	rotation := mgl64.Mat4FromCols(
		m.Col(0).Mul(reciprocal.X),
		m.Col(1).Mul(reciprocal.Y),
		m.Col(2).Mul(reciprocal.Z),
		mgl64.Vec4{0, 0, 0, 1},
	)
	translation := m.Col(3)
	return Transform{
		Translation: NewVec3ByValues(translation[0], translation[1], translation[2]),
		Rotation:    fromMgl(mgl64.Mat4ToQuat(rotation)).Normalized(),
		Scale:       scale,
	}
}

// Muled は t を先に適用し other を後に適用する合成を返す。
func (t Transform) Muled(other Transform) Transform {
	return Transform{
		Translation: other.Rotation.MulVec3(other.Scale.Muled(t.Translation)).Added(other.Translation),
		Rotation:    other.Rotation.Muled(t.Rotation),
		Scale:       t.Scale.Muled(other.Scale),
	}
}

// RelativeTo は other 空間から見た t を返す。t == result.Muled(other) を満たす。
func (t Transform) RelativeTo(other Transform) Transform {
	inverseRotation := other.Rotation.Inverted()
	return Transform{
		Translation: inverseRotation.MulVec3(t.Translation.Subed(other.Translation)).SafeDived(other.Scale),
		Rotation:    inverseRotation.Muled(t.Rotation),
		Scale:       t.Scale.SafeDived(other.Scale),
	}
}

// Inverted は逆トランスフォームを返す。
func (t Transform) Inverted() Transform {
	return NewTransform().RelativeTo(t)
}

// Normalized は回転成分を正規化したトランスフォームを返す。
func (t Transform) Normalized() Transform {
	t.Rotation = t.Rotation.Normalized()
	return t
}

// TransformPosition は位置を変換する。
func (t Transform) TransformPosition(position Vec3) Vec3 {
	return t.Rotation.MulVec3(t.Scale.Muled(position)).Added(t.Translation)
}

// NearEquals は許容誤差内で等しいか判定する。
func (t Transform) NearEquals(other Transform, epsilon float64) bool {
	return t.Translation.NearEquals(other.Translation, epsilon) &&
		t.Rotation.NearEquals(other.Rotation, epsilon) &&
		t.Scale.NearEquals(other.Scale, epsilon)
}

// IsIdentity は恒等トランスフォームか判定する。
func (t Transform) IsIdentity() bool {
	return t.NearEquals(NewTransform(), EPSILON)
}

// EulerTransform はオイラー角で回転を持つトランスフォーム。
type EulerTransform struct {
	Location Vec3
	Rotation Rotator
	Scale    Vec3
}

// NewEulerTransform は恒等の EulerTransform を生成する。
func NewEulerTransform() EulerTransform {
	return EulerTransform{Location: ZERO_VEC3, Scale: ONE_VEC3}
}

// NewEulerTransformFromTransform は preferred に近いオイラー角で EulerTransform を生成する。
func NewEulerTransformFromTransform(t Transform, preferred Rotator) EulerTransform {
	return EulerTransform{
		Location: t.Translation,
		Rotation: NewRotatorFromQuaternionClosest(t.Rotation, preferred),
		Scale:    t.Scale,
	}
}

// ToTransform は四元数回転のトランスフォームへ変換する。
func (e EulerTransform) ToTransform() Transform {
	return Transform{
		Translation: e.Location,
		Rotation:    e.Rotation.Quaternion(),
		Scale:       e.Scale,
	}
}
