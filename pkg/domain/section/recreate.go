// 指示: miu200521358
package section

import (
	"github.com/miu200521358/mu_fkrig/pkg/domain/channel"
	"github.com/miu200521358/mu_fkrig/pkg/domain/rig"
)

// RecreateWithHierarchy は階層のアニメーション可能なコントロールに合わせてパラメータを作り直す。
// 同名・同種のパラメータはキーごと残し、新しいコントロールには空のカーブを作る。
// setDefault の場合は新しいカーブの既定値をコントロールの初期値にする。加算セクションの既定値は0のまま。
func (s *Section) RecreateWithHierarchy(h *rig.Hierarchy, setDefault bool) {
	setDefault = setDefault && s.BlendType != BLEND_TYPE_ADDITIVE
	old := *s
	s.ScalarParameters = nil
	s.BoolParameters = nil
	s.EnumParameters = nil
	s.IntegerParameters = nil
	s.Vector2DParameters = nil
	s.VectorParameters = nil
	s.TransformParameters = nil
	s.SpaceChannels = nil
	s.ConstraintsChannels = nil

	alive := map[string]struct{}{}
	for _, control := range h.ControlsInOrder() {
		if !h.IsAnimatable(control.Key) {
			continue
		}
		name := control.Key.Name
		settings := control.Control.Settings
		if ChannelCount(settings.ControlType) == 0 {
			continue
		}
		alive[name] = struct{}{}
		initial := ControlValueToChannels(control.Control.Initial, control.Control.PreferredEuler)
		seed := func(c *channel.FloatChannel, index int) *channel.FloatChannel {
			if setDefault && index < len(initial) {
				c.SetDefault(initial[index])
			}
			return c
		}

		switch settings.ControlType {
		case rig.CONTROL_TYPE_BOOL:
			if p := old.FindBoolParameter(name); p != nil {
				s.BoolParameters = append(s.BoolParameters, *p)
				continue
			}
			c := channel.NewBoolChannel()
			if setDefault && len(initial) > 0 {
				c.SetDefault(initial[0] != 0)
			}
			s.BoolParameters = append(s.BoolParameters, BoolParameter{ParameterName: name, Channel: c})
		case rig.CONTROL_TYPE_INTEGER:
			if settings.EnumType != nil {
				if p := old.FindEnumParameter(name); p != nil {
					s.EnumParameters = append(s.EnumParameters, *p)
					continue
				}
				c := channel.NewEnumChannel()
				if setDefault && len(initial) > 0 {
					c.SetDefault(uint8(initial[0]))
				}
				s.EnumParameters = append(s.EnumParameters, EnumParameter{ParameterName: name, Channel: c})
				continue
			}
			if p := old.FindIntegerParameter(name); p != nil {
				s.IntegerParameters = append(s.IntegerParameters, *p)
				continue
			}
			c := channel.NewIntegerChannel()
			if setDefault && len(initial) > 0 {
				c.SetDefault(int32(initial[0]))
			}
			s.IntegerParameters = append(s.IntegerParameters, IntegerParameter{ParameterName: name, Channel: c})
		case rig.CONTROL_TYPE_FLOAT:
			if p := old.FindScalarParameter(name); p != nil {
				s.ScalarParameters = append(s.ScalarParameters, *p)
				continue
			}
			s.ScalarParameters = append(s.ScalarParameters, ScalarParameter{
				ParameterName: name,
				Channel:       seed(channel.NewFloatChannel(), 0),
			})
		case rig.CONTROL_TYPE_VECTOR2D:
			if p := old.FindVector2DParameter(name); p != nil {
				s.Vector2DParameters = append(s.Vector2DParameters, *p)
				continue
			}
			p := Vector2DParameter{ParameterName: name}
			for i := range p.Channels {
				p.Channels[i] = seed(channel.NewFloatChannel(), i)
			}
			s.Vector2DParameters = append(s.Vector2DParameters, p)
		case rig.CONTROL_TYPE_POSITION, rig.CONTROL_TYPE_ROTATOR, rig.CONTROL_TYPE_SCALE:
			if p := old.FindVectorParameter(name); p != nil {
				s.VectorParameters = append(s.VectorParameters, *p)
				continue
			}
			p := VectorParameter{ParameterName: name}
			for i := range p.Channels {
				p.Channels[i] = seed(channel.NewFloatChannel(), i)
			}
			s.VectorParameters = append(s.VectorParameters, p)
		default:
			if p := old.FindTransformParameter(name); p != nil {
				s.TransformParameters = append(s.TransformParameters, *p)
				continue
			}
			p := TransformParameter{ParameterName: name}
			for i := 0; i < 3; i++ {
				p.Translation[i] = seed(channel.NewFloatChannel(), i)
				p.Rotation[i] = seed(channel.NewFloatChannel(), 3+i)
				p.Scale[i] = seed(channel.NewFloatChannel(), 6+i)
			}
			if setDefault && settings.ControlType == rig.CONTROL_TYPE_TRANSFORM_NO_SCALE {
				for i := 0; i < 3; i++ {
					p.Scale[i].SetDefault(1)
				}
			}
			s.TransformParameters = append(s.TransformParameters, p)
		}
	}

	for _, spaceChannel := range old.SpaceChannels {
		if _, ok := alive[spaceChannel.ControlName]; ok {
			s.SpaceChannels = append(s.SpaceChannels, spaceChannel)
		}
	}
	for _, constraint := range old.ConstraintsChannels {
		if _, ok := alive[constraint.ControlName]; ok {
			s.ConstraintsChannels = append(s.ConstraintsChannels, constraint)
		}
	}
	s.InvalidateChannelProxy()
}
