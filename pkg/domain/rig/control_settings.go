// 指示: miu200521358
package rig

// ControlType はコントロール値の型を表す。
type ControlType int

const (
	// CONTROL_TYPE_UNSET は型未設定。チャンネルを持たない。
	CONTROL_TYPE_UNSET ControlType = iota
	// CONTROL_TYPE_BOOL は真偽値。
	CONTROL_TYPE_BOOL
	// CONTROL_TYPE_INTEGER は整数。列挙型を持つ場合は列挙チャンネルになる。
	CONTROL_TYPE_INTEGER
	// CONTROL_TYPE_FLOAT は実数。
	CONTROL_TYPE_FLOAT
	// CONTROL_TYPE_VECTOR2D は2次元ベクトル。
	CONTROL_TYPE_VECTOR2D
	// CONTROL_TYPE_POSITION は位置。
	CONTROL_TYPE_POSITION
	// CONTROL_TYPE_ROTATOR はオイラー回転。
	CONTROL_TYPE_ROTATOR
	// CONTROL_TYPE_SCALE はスケール。
	CONTROL_TYPE_SCALE
	// CONTROL_TYPE_TRANSFORM はトランスフォーム。
	CONTROL_TYPE_TRANSFORM
	// CONTROL_TYPE_TRANSFORM_NO_SCALE はスケールなしトランスフォーム。
	CONTROL_TYPE_TRANSFORM_NO_SCALE
	// CONTROL_TYPE_EULER_TRANSFORM はオイラー回転のトランスフォーム。
	CONTROL_TYPE_EULER_TRANSFORM
)

// String は型名を返す。
func (t ControlType) String() string {
	switch t {
	case CONTROL_TYPE_BOOL:
		return "Bool"
	case CONTROL_TYPE_INTEGER:
		return "Integer"
	case CONTROL_TYPE_FLOAT:
		return "Float"
	case CONTROL_TYPE_VECTOR2D:
		return "Vector2D"
	case CONTROL_TYPE_POSITION:
		return "Position"
	case CONTROL_TYPE_ROTATOR:
		return "Rotator"
	case CONTROL_TYPE_SCALE:
		return "Scale"
	case CONTROL_TYPE_TRANSFORM:
		return "Transform"
	case CONTROL_TYPE_TRANSFORM_NO_SCALE:
		return "TransformNoScale"
	case CONTROL_TYPE_EULER_TRANSFORM:
		return "EulerTransform"
	default:
		return "Unset"
	}
}

// IsTransformLike はトランスフォーム系の型か判定する。
func (t ControlType) IsTransformLike() bool {
	switch t {
	case CONTROL_TYPE_TRANSFORM, CONTROL_TYPE_TRANSFORM_NO_SCALE, CONTROL_TYPE_EULER_TRANSFORM:
		return true
	default:
		return false
	}
}

// IsVectorLike は3要素ベクトル系の型か判定する。
func (t ControlType) IsVectorLike() bool {
	switch t {
	case CONTROL_TYPE_POSITION, CONTROL_TYPE_ROTATOR, CONTROL_TYPE_SCALE:
		return true
	default:
		return false
	}
}

// AnimationType はコントロールのアニメーション上の役割を表す。
type AnimationType int

const (
	// ANIMATION_TYPE_CONTROL は通常のアニメーションコントロール。
	ANIMATION_TYPE_CONTROL AnimationType = iota
	// ANIMATION_TYPE_CHANNEL は親コントロールにまとめて表示されるチャンネル。
	ANIMATION_TYPE_CHANNEL
	// ANIMATION_TYPE_PROXY はキーを持たない代理コントロール。
	ANIMATION_TYPE_PROXY
	// ANIMATION_TYPE_VISUAL_CUE は表示専用。
	ANIMATION_TYPE_VISUAL_CUE
)

// TransformChannel はトランスフォームの個別チャンネルを表す。
type TransformChannel int

const (
	TRANSFORM_CHANNEL_TRANSLATION_X TransformChannel = iota
	TRANSFORM_CHANNEL_TRANSLATION_Y
	TRANSFORM_CHANNEL_TRANSLATION_Z
	TRANSFORM_CHANNEL_PITCH
	TRANSFORM_CHANNEL_YAW
	TRANSFORM_CHANNEL_ROLL
	TRANSFORM_CHANNEL_SCALE_X
	TRANSFORM_CHANNEL_SCALE_Y
	TRANSFORM_CHANNEL_SCALE_Z
)

// EnumType は整数コントロールに割り当てる列挙型を表す。
type EnumType struct {
	Name    string
	Entries []string
}

// ControlSettings はコントロールの型と表示・アニメーション設定を表す。
type ControlSettings struct {
	ControlType      ControlType
	AnimationType    AnimationType
	DisplayName      string
	Drivable         bool
	Minimum          ControlValue
	Maximum          ControlValue
	EnumType         *EnumType
	FilteredChannels []TransformChannel
}

// NewControlSettings は型を指定して既定の設定を生成する。
func NewControlSettings(controlType ControlType) ControlSettings {
	return ControlSettings{
		ControlType:   controlType,
		AnimationType: ANIMATION_TYPE_CONTROL,
	}
}

// IsAnimatable はキーを持てる設定か判定する。
func (s ControlSettings) IsAnimatable() bool {
	return s.AnimationType == ANIMATION_TYPE_CONTROL || s.AnimationType == ANIMATION_TYPE_CHANNEL
}

// ShouldBeGrouped は親コントロールのグループへまとめる設定か判定する。
func (s ControlSettings) ShouldBeGrouped() bool {
	return s.IsAnimatable() && s.AnimationType == ANIMATION_TYPE_CHANNEL
}

// IsChannelEnabled は FilteredChannels で個別チャンネルが有効か判定する。
func (s ControlSettings) IsChannelEnabled(channel TransformChannel) bool {
	if len(s.FilteredChannels) == 0 {
		return true
	}
	for _, filtered := range s.FilteredChannels {
		if filtered == channel {
			return true
		}
	}
	return false
}
