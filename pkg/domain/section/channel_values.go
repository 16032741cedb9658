// 指示: miu200521358
package section

import (
	"math"

	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
	"github.com/miu200521358/mu_fkrig/pkg/domain/rig"
)

// ChannelCount は型ごとのサブチャンネル数を返す。値の型が未設定なら0。
func ChannelCount(controlType rig.ControlType) int {
	switch controlType {
	case rig.CONTROL_TYPE_BOOL, rig.CONTROL_TYPE_INTEGER, rig.CONTROL_TYPE_FLOAT:
		return 1
	case rig.CONTROL_TYPE_VECTOR2D:
		return 2
	case rig.CONTROL_TYPE_POSITION, rig.CONTROL_TYPE_ROTATOR, rig.CONTROL_TYPE_SCALE:
		return 3
	case rig.CONTROL_TYPE_TRANSFORM_NO_SCALE:
		return 6
	case rig.CONTROL_TYPE_TRANSFORM, rig.CONTROL_TYPE_EULER_TRANSFORM:
		return 9
	default:
		return 0
	}
}

// ControlValueToChannels はコントロール値をサブチャンネル順の実数列へ変換する。
// 四元数回転は preferred に最も近いオイラー角(Roll, Pitch, Yaw)で表す。
func ControlValueToChannels(value rig.ControlValue, preferred mmath.Rotator) []float64 {
	switch v := value.(type) {
	case rig.BoolValue:
		if v {
			return []float64{1}
		}
		return []float64{0}
	case rig.IntegerValue:
		return []float64{float64(v)}
	case rig.FloatValue:
		return []float64{float64(v)}
	case rig.Vector2DValue:
		return []float64{v.X, v.Y}
	case rig.PositionValue:
		return []float64{v.X, v.Y, v.Z}
	case rig.RotatorValue:
		return []float64{v.Roll, v.Pitch, v.Yaw}
	case rig.ScaleValue:
		return []float64{v.X, v.Y, v.Z}
	case rig.TransformValue:
		euler := mmath.NewRotatorFromQuaternionClosest(v.Rotation, preferred)
		return []float64{
			v.Translation.X, v.Translation.Y, v.Translation.Z,
			euler.Roll, euler.Pitch, euler.Yaw,
			v.Scale.X, v.Scale.Y, v.Scale.Z,
		}
	case rig.TransformNoScaleValue:
		euler := mmath.NewRotatorFromQuaternionClosest(v.Rotation, preferred)
		return []float64{
			v.Translation.X, v.Translation.Y, v.Translation.Z,
			euler.Roll, euler.Pitch, euler.Yaw,
		}
	case rig.EulerTransformValue:
		return []float64{
			v.Location.X, v.Location.Y, v.Location.Z,
			v.Rotation.Roll, v.Rotation.Pitch, v.Rotation.Yaw,
			v.Scale.X, v.Scale.Y, v.Scale.Z,
		}
	default:
		return nil
	}
}

// ControlValueFromChannels はサブチャンネル列から型に合わせたコントロール値を生成する。
func ControlValueFromChannels(controlType rig.ControlType, values []float64) (rig.ControlValue, bool) {
	if len(values) < ChannelCount(controlType) || ChannelCount(controlType) == 0 {
		return nil, false
	}
	switch controlType {
	case rig.CONTROL_TYPE_BOOL:
		return rig.BoolValue(values[0] != 0), true
	case rig.CONTROL_TYPE_INTEGER:
		return rig.IntegerValue(int32(math.Round(values[0]))), true
	case rig.CONTROL_TYPE_FLOAT:
		return rig.FloatValue(values[0]), true
	case rig.CONTROL_TYPE_VECTOR2D:
		return rig.Vector2DValue(mmath.Vec2{X: values[0], Y: values[1]}), true
	case rig.CONTROL_TYPE_POSITION:
		return rig.PositionValue(vec3Of(values)), true
	case rig.CONTROL_TYPE_ROTATOR:
		return rig.RotatorValue(rotatorOf(values)), true
	case rig.CONTROL_TYPE_SCALE:
		return rig.ScaleValue(vec3Of(values)), true
	case rig.CONTROL_TYPE_TRANSFORM:
		return rig.TransformValue(mmath.NewTransformByValues(
			vec3Of(values[0:3]), rotatorOf(values[3:6]).Quaternion(), vec3Of(values[6:9]),
		)), true
	case rig.CONTROL_TYPE_TRANSFORM_NO_SCALE:
		return rig.TransformNoScaleValue{
			Translation: vec3Of(values[0:3]),
			Rotation:    rotatorOf(values[3:6]).Quaternion(),
		}, true
	case rig.CONTROL_TYPE_EULER_TRANSFORM:
		return rig.EulerTransformValue(mmath.EulerTransform{
			Location: vec3Of(values[0:3]),
			Rotation: rotatorOf(values[3:6]),
			Scale:    vec3Of(values[6:9]),
		}), true
	default:
		return nil, false
	}
}

// IsRotationSubChannel はサブチャンネルが角度(度)か判定する。
func IsRotationSubChannel(controlType rig.ControlType, subIndex int) bool {
	switch controlType {
	case rig.CONTROL_TYPE_ROTATOR:
		return true
	case rig.CONTROL_TYPE_TRANSFORM, rig.CONTROL_TYPE_TRANSFORM_NO_SCALE, rig.CONTROL_TYPE_EULER_TRANSFORM:
		return subIndex >= 3 && subIndex < 6
	default:
		return false
	}
}

// TransformChannelOf はサブチャンネルに対応する TransformChannel を返す。
func TransformChannelOf(controlType rig.ControlType, subIndex int) (rig.TransformChannel, bool) {
	all := []rig.TransformChannel{
		rig.TRANSFORM_CHANNEL_TRANSLATION_X, rig.TRANSFORM_CHANNEL_TRANSLATION_Y, rig.TRANSFORM_CHANNEL_TRANSLATION_Z,
		rig.TRANSFORM_CHANNEL_ROLL, rig.TRANSFORM_CHANNEL_PITCH, rig.TRANSFORM_CHANNEL_YAW,
		rig.TRANSFORM_CHANNEL_SCALE_X, rig.TRANSFORM_CHANNEL_SCALE_Y, rig.TRANSFORM_CHANNEL_SCALE_Z,
	}
	if subIndex < 0 || subIndex >= ChannelCount(controlType) {
		return 0, false
	}
	switch controlType {
	case rig.CONTROL_TYPE_POSITION:
		return all[subIndex], true
	case rig.CONTROL_TYPE_ROTATOR:
		return all[3+subIndex], true
	case rig.CONTROL_TYPE_SCALE:
		return all[6+subIndex], true
	case rig.CONTROL_TYPE_TRANSFORM, rig.CONTROL_TYPE_TRANSFORM_NO_SCALE, rig.CONTROL_TYPE_EULER_TRANSFORM:
		return all[subIndex], true
	default:
		return 0, false
	}
}

// subChannelNames は表示用のサブチャンネル名を返す。
func subChannelNames(controlType rig.ControlType) []string {
	switch controlType {
	case rig.CONTROL_TYPE_VECTOR2D:
		return []string{"X", "Y"}
	case rig.CONTROL_TYPE_POSITION:
		return []string{"Location.X", "Location.Y", "Location.Z"}
	case rig.CONTROL_TYPE_ROTATOR:
		return []string{"Rotation.Roll", "Rotation.Pitch", "Rotation.Yaw"}
	case rig.CONTROL_TYPE_SCALE:
		return []string{"Scale.X", "Scale.Y", "Scale.Z"}
	case rig.CONTROL_TYPE_TRANSFORM, rig.CONTROL_TYPE_TRANSFORM_NO_SCALE, rig.CONTROL_TYPE_EULER_TRANSFORM:
		names := []string{
			"Location.X", "Location.Y", "Location.Z",
			"Rotation.Roll", "Rotation.Pitch", "Rotation.Yaw",
			"Scale.X", "Scale.Y", "Scale.Z",
		}
		return names[:ChannelCount(controlType)]
	default:
		return []string{""}
	}
}

func vec3Of(values []float64) mmath.Vec3 {
	return mmath.NewVec3ByValues(values[0], values[1], values[2])
}

func rotatorOf(values []float64) mmath.Rotator {
	return mmath.NewRotatorByValues(values[0], values[1], values[2])
}
