// 指示: miu200521358
// Package section はコントロールのキーを保持するアニメーションセクションと、
// コントロールとチャンネル配列の対応表を提供する。
package section

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/miu200521358/mu_fkrig/pkg/domain/channel"
	"github.com/miu200521358/mu_fkrig/pkg/domain/rig"
)

var (
	// ErrSpaceChannelNotAllowed はスペースチャンネルを持てないコントロールであることを表す。
	ErrSpaceChannelNotAllowed = errors.New("このコントロールにはスペースチャンネルを追加できません")
	// ErrNoSections はトラックにセクションが無いことを表す。
	ErrNoSections = errors.New("トラックにセクションがありません")
	// ErrFirstSectionNotAbsolute は先頭セクションが絶対値セクションでないことを表す。
	ErrFirstSectionNotAbsolute = errors.New("先頭セクションが絶対値セクションではありません")
)

// BlendType はセクションの合成方式を表す。
type BlendType int

const (
	// BLEND_TYPE_ABSOLUTE は下位の結果を重みで置き換える。
	BLEND_TYPE_ABSOLUTE BlendType = iota
	// BLEND_TYPE_ADDITIVE は重み付きで加算する。
	BLEND_TYPE_ADDITIVE
)

// String は合成方式名を返す。
func (b BlendType) String() string {
	if b == BLEND_TYPE_ADDITIVE {
		return "Additive"
	}
	return "Absolute"
}

// ScalarParameter は実数コントロールのカーブ。
type ScalarParameter struct {
	ParameterName string
	Channel       *channel.FloatChannel
}

// BoolParameter は真偽値コントロールのカーブ。
type BoolParameter struct {
	ParameterName string
	Channel       *channel.BoolChannel
}

// EnumParameter は列挙型付き整数コントロールのカーブ。
type EnumParameter struct {
	ParameterName string
	Channel       *channel.EnumChannel
}

// IntegerParameter は整数コントロールのカーブ。
type IntegerParameter struct {
	ParameterName string
	Channel       *channel.IntegerChannel
}

// Vector2DParameter は2次元ベクトルコントロールのカーブ。
type Vector2DParameter struct {
	ParameterName string
	Channels      [2]*channel.FloatChannel
}

// VectorParameter は位置・回転・スケールコントロールのカーブ。
type VectorParameter struct {
	ParameterName string
	Channels      [3]*channel.FloatChannel
}

// TransformParameter はトランスフォーム系コントロールのカーブ。回転は Roll, Pitch, Yaw の順。
type TransformParameter struct {
	ParameterName string
	Translation   [3]*channel.FloatChannel
	Rotation      [3]*channel.FloatChannel
	Scale         [3]*channel.FloatChannel
}

// SpaceKey はスペースチャンネルのキー値。
type SpaceKey struct {
	SpaceType  rig.SpaceType
	ElementKey rig.ElementKey
}

// Space は rig.Space へ変換する。
func (k SpaceKey) Space() rig.Space {
	return rig.Space{SpaceType: k.SpaceType, ElementKey: k.ElementKey}
}

// SpaceChannel はコントロールの評価親を切り替えるチャンネル。
type SpaceChannel struct {
	ControlName string
	Channel     *channel.SteppedChannel[SpaceKey]
}

// ConstraintAndActiveChannel はコンストレイントの有効状態チャンネル。
type ConstraintAndActiveChannel struct {
	ConstraintID   uuid.UUID
	ConstraintName string
	ControlName    string
	ActiveChannel  *channel.BoolChannel
}

// Section はコントロールごとのカーブを保持するアニメーションセクション。
// 公開フィールドが永続データで、対応表は非公開のキャッシュとして持つ。
type Section struct {
	ID        uuid.UUID
	Name      string
	BlendType BlendType
	Weight    *channel.FloatChannel

	ScalarParameters    []ScalarParameter
	BoolParameters      []BoolParameter
	EnumParameters      []EnumParameter
	IntegerParameters   []IntegerParameter
	Vector2DParameters  []Vector2DParameter
	VectorParameters    []VectorParameter
	TransformParameters []TransformParameter
	SpaceChannels       []SpaceChannel
	ConstraintsChannels []ConstraintAndActiveChannel

	// ControlNameMask は無効化したコントロール名を保持する。
	ControlNameMask map[string]bool

	proxy         *ChannelProxy
	proxyDirty    bool
	proxySnapshot []controlSnapshot
}

// NewSection は重み1の空セクションを生成する。
func NewSection(name string, blendType BlendType) *Section {
	weight := channel.NewFloatChannel()
	weight.SetDefault(1)
	return &Section{
		ID:              uuid.New(),
		Name:            name,
		BlendType:       blendType,
		Weight:          weight,
		ControlNameMask: map[string]bool{},
		proxyDirty:      true,
	}
}

// WeightAt はフレームでの重みを返す。未設定なら1。
func (s *Section) WeightAt(frame channel.Frame) float64 {
	if s.Weight == nil {
		return 1
	}
	if value, ok := s.Weight.Evaluate(frame); ok {
		return value
	}
	return 1
}

// SetControlNameMask はコントロールの有効・無効を切り替える。
func (s *Section) SetControlNameMask(controlName string, enabled bool) {
	if s.ControlNameMask == nil {
		s.ControlNameMask = map[string]bool{}
	}
	if enabled {
		delete(s.ControlNameMask, controlName)
	} else {
		s.ControlNameMask[controlName] = true
	}
	s.proxyDirty = true
}

// IsControlNameEnabled はコントロールが有効か判定する。
func (s *Section) IsControlNameEnabled(controlName string) bool {
	return !s.ControlNameMask[controlName]
}

// FindScalarParameter は名前から実数パラメータを返す。
func (s *Section) FindScalarParameter(name string) *ScalarParameter {
	for i := range s.ScalarParameters {
		if s.ScalarParameters[i].ParameterName == name {
			return &s.ScalarParameters[i]
		}
	}
	return nil
}

// FindBoolParameter は名前から真偽値パラメータを返す。
func (s *Section) FindBoolParameter(name string) *BoolParameter {
	for i := range s.BoolParameters {
		if s.BoolParameters[i].ParameterName == name {
			return &s.BoolParameters[i]
		}
	}
	return nil
}

// FindEnumParameter は名前から列挙パラメータを返す。
func (s *Section) FindEnumParameter(name string) *EnumParameter {
	for i := range s.EnumParameters {
		if s.EnumParameters[i].ParameterName == name {
			return &s.EnumParameters[i]
		}
	}
	return nil
}

// FindIntegerParameter は名前から整数パラメータを返す。
func (s *Section) FindIntegerParameter(name string) *IntegerParameter {
	for i := range s.IntegerParameters {
		if s.IntegerParameters[i].ParameterName == name {
			return &s.IntegerParameters[i]
		}
	}
	return nil
}

// FindVector2DParameter は名前から2次元ベクトルパラメータを返す。
func (s *Section) FindVector2DParameter(name string) *Vector2DParameter {
	for i := range s.Vector2DParameters {
		if s.Vector2DParameters[i].ParameterName == name {
			return &s.Vector2DParameters[i]
		}
	}
	return nil
}

// FindVectorParameter は名前からベクトルパラメータを返す。
func (s *Section) FindVectorParameter(name string) *VectorParameter {
	for i := range s.VectorParameters {
		if s.VectorParameters[i].ParameterName == name {
			return &s.VectorParameters[i]
		}
	}
	return nil
}

// FindTransformParameter は名前からトランスフォームパラメータを返す。
func (s *Section) FindTransformParameter(name string) *TransformParameter {
	for i := range s.TransformParameters {
		if s.TransformParameters[i].ParameterName == name {
			return &s.TransformParameters[i]
		}
	}
	return nil
}

// FindSpaceChannel はコントロールのスペースチャンネルを返す。
func (s *Section) FindSpaceChannel(controlName string) *SpaceChannel {
	for i := range s.SpaceChannels {
		if s.SpaceChannels[i].ControlName == controlName {
			return &s.SpaceChannels[i]
		}
	}
	return nil
}

// FloatChannelsFor はコントロールの実数サブチャンネルを順に返す。パラメータが無ければ nil。
func (s *Section) FloatChannelsFor(controlName string, controlType rig.ControlType) []*channel.FloatChannel {
	switch controlType {
	case rig.CONTROL_TYPE_FLOAT:
		if p := s.FindScalarParameter(controlName); p != nil {
			return []*channel.FloatChannel{p.Channel}
		}
	case rig.CONTROL_TYPE_VECTOR2D:
		if p := s.FindVector2DParameter(controlName); p != nil {
			return p.Channels[:]
		}
	case rig.CONTROL_TYPE_POSITION, rig.CONTROL_TYPE_ROTATOR, rig.CONTROL_TYPE_SCALE:
		if p := s.FindVectorParameter(controlName); p != nil {
			return p.Channels[:]
		}
	case rig.CONTROL_TYPE_TRANSFORM, rig.CONTROL_TYPE_TRANSFORM_NO_SCALE, rig.CONTROL_TYPE_EULER_TRANSFORM:
		if p := s.FindTransformParameter(controlName); p != nil {
			channels := make([]*channel.FloatChannel, 0, 9)
			channels = append(channels, p.Translation[:]...)
			channels = append(channels, p.Rotation[:]...)
			channels = append(channels, p.Scale[:]...)
			return channels[:ChannelCount(controlType)]
		}
	}
	return nil
}

// AddSpaceChannel はコントロールにスペースチャンネルを追加する。既にあれば何もしない。
// まとめ表示されるサブコントロールと、空間を持たない型には追加できない。
func (s *Section) AddSpaceChannel(h *rig.Hierarchy, controlName string) (*SpaceChannel, error) {
	controlKey := rig.NewControlKey(controlName)
	settings, ok := h.ControlSettings(controlKey)
	if !ok {
		return nil, fmt.Errorf("control=%s: %w", controlName, rig.ErrElementNotFound)
	}
	if !(settings.ControlType.IsTransformLike() || settings.ControlType.IsVectorLike()) || h.ShouldBeGrouped(controlKey) {
		return nil, fmt.Errorf("control=%s type=%s: %w", controlName, settings.ControlType, ErrSpaceChannelNotAllowed)
	}
	if _, isSub := h.FirstParentControl(controlKey); isSub {
		return nil, fmt.Errorf("control=%s: %w", controlName, ErrSpaceChannelNotAllowed)
	}
	if existing := s.FindSpaceChannel(controlName); existing != nil {
		return existing, nil
	}
	spaceChannel := channel.SteppedChannel[SpaceKey]{}
	spaceChannel.SetDefault(SpaceKey{SpaceType: rig.SPACE_TYPE_PARENT})
	s.SpaceChannels = append(s.SpaceChannels, SpaceChannel{ControlName: controlName, Channel: &spaceChannel})
	s.proxyDirty = true
	return &s.SpaceChannels[len(s.SpaceChannels)-1], nil
}

// EvaluateSpace はフレームでのコントロールの評価親を返す。
func (s *Section) EvaluateSpace(controlName string, frame channel.Frame) (rig.Space, bool) {
	spaceChannel := s.FindSpaceChannel(controlName)
	if spaceChannel == nil {
		return rig.ParentSpace(), false
	}
	key, ok := spaceChannel.Channel.Evaluate(frame)
	if !ok {
		return rig.ParentSpace(), false
	}
	return key.Space(), true
}

// addConstraintChannel はコンストレイントの有効チャンネルを追加する。
func (s *Section) addConstraintChannel(constraint Constraint) bool {
	for _, existing := range s.ConstraintsChannels {
		if existing.ConstraintID == constraint.ID {
			return false
		}
	}
	active := channel.NewBoolChannel()
	active.SetDefault(true)
	s.ConstraintsChannels = append(s.ConstraintsChannels, ConstraintAndActiveChannel{
		ConstraintID:   constraint.ID,
		ConstraintName: constraint.Name,
		ControlName:    constraint.ControlName,
		ActiveChannel:  active,
	})
	return true
}

// removeConstraintChannel はコンストレイントの有効チャンネルを削除する。
func (s *Section) removeConstraintChannel(id uuid.UUID) bool {
	for i, existing := range s.ConstraintsChannels {
		if existing.ConstraintID == id {
			s.ConstraintsChannels = append(s.ConstraintsChannels[:i], s.ConstraintsChannels[i+1:]...)
			return true
		}
	}
	return false
}

// IsConstraintActive はフレームでコンストレイントが有効か判定する。チャンネルが無ければ有効とみなす。
func (s *Section) IsConstraintActive(id uuid.UUID, frame channel.Frame) bool {
	for _, existing := range s.ConstraintsChannels {
		if existing.ConstraintID != id {
			continue
		}
		active, ok := existing.ActiveChannel.Evaluate(frame)
		return !ok || active
	}
	return true
}

// DeleteAllKeys は全パラメータのキーを削除する。スペースチャンネルのキーは残す。
func (s *Section) DeleteAllKeys() {
	for _, p := range s.ScalarParameters {
		p.Channel.DeleteAllKeys()
	}
	for _, p := range s.BoolParameters {
		p.Channel.DeleteAllKeys()
	}
	for _, p := range s.EnumParameters {
		p.Channel.DeleteAllKeys()
	}
	for _, p := range s.IntegerParameters {
		p.Channel.DeleteAllKeys()
	}
	for _, p := range s.Vector2DParameters {
		for _, c := range p.Channels {
			c.DeleteAllKeys()
		}
	}
	for _, p := range s.VectorParameters {
		for _, c := range p.Channels {
			c.DeleteAllKeys()
		}
	}
	for _, p := range s.TransformParameters {
		for _, group := range [][3]*channel.FloatChannel{p.Translation, p.Rotation, p.Scale} {
			for _, c := range group {
				c.DeleteAllKeys()
			}
		}
	}
	for _, c := range s.ConstraintsChannels {
		c.ActiveChannel.DeleteAllKeys()
	}
}

// InvalidateChannelProxy は対応表を破棄し、次回の更新で作り直す。
func (s *Section) InvalidateChannelProxy() {
	s.proxy = nil
	s.proxySnapshot = nil
	s.proxyDirty = true
}
