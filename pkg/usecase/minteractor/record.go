// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_fkrig/pkg/domain/channel"
	"github.com/miu200521358/mu_fkrig/pkg/domain/fkrig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
	"github.com/miu200521358/mu_fkrig/pkg/domain/model"
	"github.com/miu200521358/mu_fkrig/pkg/domain/rig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/section"
)

// RecordControlRigKey は対応表に載った全コントロールの現在値をフレームへキーとして記録し、記録したキー数を返す。
// 回転のサブチャンネルは直前のキーから180度以内になるよう巻き戻す。
// setDefault の場合はキーと同じ値をカーブの既定値にも設定する。
func RecordControlRigKey(
	s *section.Section,
	r *fkrig.FKControlRig,
	frame channel.Frame,
	setDefault bool,
	interpolation channel.Interpolation,
) int {
	if s == nil || r == nil {
		return 0
	}
	h := r.Hierarchy()
	s.UpdateChannelProxy(h)
	proxy := s.ChannelProxy()
	keys := 0
	for _, name := range proxy.ControlOrder {
		keys += recordControl(s, proxy, h, name, frame, setDefault, interpolation)
	}
	return keys
}

// recordControl は1コントロール分のキーを記録する。
// マスクされたコントロールと無効なサブチャンネルは書き込まない。
func recordControl(
	s *section.Section,
	proxy *section.ChannelProxy,
	h *rig.Hierarchy,
	name string,
	frame channel.Frame,
	setDefault bool,
	interpolation channel.Interpolation,
) int {
	if !s.IsControlNameEnabled(name) {
		return 0
	}
	info, ok := proxy.MapInfo(name)
	if !ok {
		logBakeDebug("%s: control=%s", model.FkRigWarningChannelMissing, name)
		return 0
	}
	controlKey := rig.NewControlKey(name)
	value, ok := h.ControlValue(controlKey)
	if !ok || value == nil {
		logBakeDebug("%s: control=%s", model.FkRigWarningControlMissing, name)
		return 0
	}
	if value.ControlType() != info.ControlType {
		logBakeDebug("%s: control=%s value=%s channel=%s", model.FkRigWarningControlTypeMismatch, name, value.ControlType(), info.ControlType)
		return 0
	}
	preferred, _ := h.ControlPreferredEuler(controlKey)
	values := section.ControlValueToChannels(value, preferred)

	switch info.ControlType {
	case rig.CONTROL_TYPE_BOOL:
		entry := proxy.Bools[info.ChannelIndex]
		if !entry.Meta.Enabled {
			return 0
		}
		entry.Channel.AddKey(frame, values[0] != 0)
		if setDefault {
			entry.Channel.SetDefault(values[0] != 0)
		}
		return 1
	case rig.CONTROL_TYPE_INTEGER:
		settings, _ := h.ControlSettings(controlKey)
		if settings.EnumType != nil {
			entry := proxy.Enums[info.ChannelIndex]
			if !entry.Meta.Enabled {
				return 0
			}
			entry.Channel.AddKey(frame, uint8(values[0]))
			if setDefault {
				entry.Channel.SetDefault(uint8(values[0]))
			}
			return 1
		}
		entry := proxy.Integers[info.ChannelIndex]
		if !entry.Meta.Enabled {
			return 0
		}
		entry.Channel.AddKey(frame, int32(values[0]))
		if setDefault {
			entry.Channel.SetDefault(int32(values[0]))
		}
		return 1
	}

	keys := 0
	info.GeneratedKeyIndex = info.ChannelIndex
	for subIndex := 0; subIndex < info.ChannelCount && subIndex < len(values); subIndex++ {
		entry := proxy.Floats[info.GeneratedKeyIndex]
		info.GeneratedKeyIndex++
		if !entry.Meta.Enabled {
			continue
		}
		v := values[subIndex]
		if section.IsRotationSubChannel(info.ControlType, subIndex) {
			if previous, ok := entry.Channel.KeyBefore(frame); ok {
				v = mmath.WindRelativeAnglesDegrees(previous.Value, v)
			}
		}
		entry.Channel.AddKey(frame, v, interpolation)
		if setDefault {
			entry.Channel.SetDefault(v)
		}
		keys++
	}
	info.GeneratedKeyIndex = -1
	return keys
}

// AutoKeyRecorder はリグのコントロール変更通知を受けて、変更されたコントロールだけをキーとして記録する。
// SET_KEY_NEVER の変更は記録しない。
type AutoKeyRecorder struct {
	rig           *fkrig.FKControlRig
	section       *section.Section
	frame         channel.Frame
	interpolation channel.Interpolation
	keys          int
}

// NewAutoKeyRecorder は自動キー記録を生成し、リグの変更通知へ登録する。
func NewAutoKeyRecorder(r *fkrig.FKControlRig, s *section.Section, interpolation channel.Interpolation) *AutoKeyRecorder {
	recorder := &AutoKeyRecorder{rig: r, section: s, interpolation: interpolation}
	r.OnControlModified(recorder.onControlModified)
	return recorder
}

// SetFrame は記録先のフレームを設定する。
func (a *AutoKeyRecorder) SetFrame(frame channel.Frame) {
	a.frame = frame
}

// Keys は記録したキー数を返す。
func (a *AutoKeyRecorder) Keys() int {
	return a.keys
}

func (a *AutoKeyRecorder) onControlModified(controlKey rig.ElementKey, context fkrig.ControlModifiedContext) {
	if context.SetKey == fkrig.SET_KEY_NEVER {
		return
	}
	h := a.rig.Hierarchy()
	a.section.UpdateChannelProxy(h)
	a.keys += recordControl(a.section, a.section.ChannelProxy(), h, controlKey.Name, a.frame, false, a.interpolation)
}
