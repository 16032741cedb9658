// 指示: miu200521358
package rig

import "github.com/miu200521358/mu_fkrig/pkg/domain/mmath"

// ControlValue はコントロール値の閉じた直和型。実装はこのパッケージ内の型に限る。
type ControlValue interface {
	// ControlType は値が対応するコントロール型を返す。
	ControlType() ControlType
	isControlValue()
}

// BoolValue は真偽値のコントロール値。
type BoolValue bool

// IntegerValue は整数のコントロール値。
type IntegerValue int32

// FloatValue は実数のコントロール値。
type FloatValue float64

// Vector2DValue は2次元ベクトルのコントロール値。
type Vector2DValue mmath.Vec2

// PositionValue は位置のコントロール値。
type PositionValue mmath.Vec3

// RotatorValue はオイラー回転のコントロール値。
type RotatorValue mmath.Rotator

// ScaleValue はスケールのコントロール値。
type ScaleValue mmath.Vec3

// TransformValue はトランスフォームのコントロール値。
type TransformValue mmath.Transform

// TransformNoScaleValue はスケールなしトランスフォームのコントロール値。
type TransformNoScaleValue struct {
	Translation mmath.Vec3
	Rotation    mmath.Quaternion
}

// EulerTransformValue はオイラー回転トランスフォームのコントロール値。
type EulerTransformValue mmath.EulerTransform

func (BoolValue) ControlType() ControlType             { return CONTROL_TYPE_BOOL }
func (IntegerValue) ControlType() ControlType          { return CONTROL_TYPE_INTEGER }
func (FloatValue) ControlType() ControlType            { return CONTROL_TYPE_FLOAT }
func (Vector2DValue) ControlType() ControlType         { return CONTROL_TYPE_VECTOR2D }
func (PositionValue) ControlType() ControlType         { return CONTROL_TYPE_POSITION }
func (RotatorValue) ControlType() ControlType          { return CONTROL_TYPE_ROTATOR }
func (ScaleValue) ControlType() ControlType            { return CONTROL_TYPE_SCALE }
func (TransformValue) ControlType() ControlType        { return CONTROL_TYPE_TRANSFORM }
func (TransformNoScaleValue) ControlType() ControlType { return CONTROL_TYPE_TRANSFORM_NO_SCALE }
func (EulerTransformValue) ControlType() ControlType   { return CONTROL_TYPE_EULER_TRANSFORM }

func (BoolValue) isControlValue()             {}
func (IntegerValue) isControlValue()          {}
func (FloatValue) isControlValue()            {}
func (Vector2DValue) isControlValue()         {}
func (PositionValue) isControlValue()         {}
func (RotatorValue) isControlValue()          {}
func (ScaleValue) isControlValue()            {}
func (TransformValue) isControlValue()        {}
func (TransformNoScaleValue) isControlValue() {}
func (EulerTransformValue) isControlValue()   {}

// NeutralControlValue は型ごとの中立値(恒等トランスフォーム・ゼロ)を返す。
func NeutralControlValue(controlType ControlType) ControlValue {
	switch controlType {
	case CONTROL_TYPE_BOOL:
		return BoolValue(false)
	case CONTROL_TYPE_INTEGER:
		return IntegerValue(0)
	case CONTROL_TYPE_FLOAT:
		return FloatValue(0)
	case CONTROL_TYPE_VECTOR2D:
		return Vector2DValue{}
	case CONTROL_TYPE_POSITION:
		return PositionValue(mmath.ZERO_VEC3)
	case CONTROL_TYPE_ROTATOR:
		return RotatorValue{}
	case CONTROL_TYPE_SCALE:
		return ScaleValue(mmath.ONE_VEC3)
	case CONTROL_TYPE_TRANSFORM:
		return TransformValue(mmath.NewTransform())
	case CONTROL_TYPE_TRANSFORM_NO_SCALE:
		return TransformNoScaleValue{Rotation: mmath.NewQuaternion()}
	case CONTROL_TYPE_EULER_TRANSFORM:
		return EulerTransformValue(mmath.NewEulerTransform())
	default:
		return nil
	}
}

// ControlValueToTransform は空間を持つ値をトランスフォームへ変換する。
func ControlValueToTransform(value ControlValue) (mmath.Transform, bool) {
	t := mmath.NewTransform()
	switch v := value.(type) {
	case PositionValue:
		t.Translation = mmath.Vec3(v)
	case RotatorValue:
		t.Rotation = mmath.Rotator(v).Quaternion()
	case ScaleValue:
		t.Scale = mmath.Vec3(v)
	case TransformValue:
		t = mmath.Transform(v)
	case TransformNoScaleValue:
		t.Translation = v.Translation
		t.Rotation = v.Rotation
	case EulerTransformValue:
		t = mmath.EulerTransform(v).ToTransform()
	case BoolValue, IntegerValue, FloatValue, Vector2DValue:
		return t, false
	default:
		return t, false
	}
	return t, true
}

// ControlValueFromTransform はトランスフォームを型に合わせた値へ変換する。
// オイラー角を持つ型は preferred に最も近い角度を選ぶ。
func ControlValueFromTransform(controlType ControlType, t mmath.Transform, preferred mmath.Rotator) (ControlValue, bool) {
	switch controlType {
	case CONTROL_TYPE_POSITION:
		return PositionValue(t.Translation), true
	case CONTROL_TYPE_ROTATOR:
		return RotatorValue(mmath.NewRotatorFromQuaternionClosest(t.Rotation, preferred)), true
	case CONTROL_TYPE_SCALE:
		return ScaleValue(t.Scale), true
	case CONTROL_TYPE_TRANSFORM:
		return TransformValue(t), true
	case CONTROL_TYPE_TRANSFORM_NO_SCALE:
		return TransformNoScaleValue{Translation: t.Translation, Rotation: t.Rotation}, true
	case CONTROL_TYPE_EULER_TRANSFORM:
		return EulerTransformValue(mmath.NewEulerTransformFromTransform(t, preferred)), true
	default:
		return nil, false
	}
}

// ControlValueToFloat は実数値を返す。
func ControlValueToFloat(value ControlValue) (float64, bool) {
	switch v := value.(type) {
	case FloatValue:
		return float64(v), true
	case IntegerValue:
		return float64(v), true
	case BoolValue:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// EulerOf はオイラー角を持つ値の回転を返す。
func EulerOf(value ControlValue) (mmath.Rotator, bool) {
	switch v := value.(type) {
	case RotatorValue:
		return mmath.Rotator(v), true
	case EulerTransformValue:
		return v.Rotation, true
	default:
		return mmath.Rotator{}, false
	}
}
