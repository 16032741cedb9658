// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_fkrig/pkg/domain/channel"
	"github.com/miu200521358/mu_fkrig/pkg/domain/fkrig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/model"
	"github.com/miu200521358/mu_fkrig/pkg/domain/rig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/section"
)

// OptimizeSection は指定コントロールのチャンネルだけを許容誤差でキー削減し、削除したキー数を返す。
// controlNames が空なら対応表に載った全コントロールを対象にする。
func OptimizeSection(r *fkrig.FKControlRig, s *section.Section, controlNames []string, settings OptimizeSettings) int {
	if r == nil || s == nil {
		return 0
	}
	s.UpdateChannelProxy(r.Hierarchy())
	proxy := s.ChannelProxy()
	if len(controlNames) == 0 {
		controlNames = proxy.ControlOrder
	}

	removed := 0
	for _, name := range controlNames {
		info, ok := proxy.MapInfo(name)
		if !ok {
			logBakeDebug("%s: control=%s", model.FkRigWarningChannelMissing, name)
			continue
		}
		for _, index := range info.ConstraintsIndex {
			removed += proxy.Constraints[index].Channel.Optimize(settings.Range)
		}
		if info.DoesHaveSpace {
			removed += proxy.Spaces[info.SpaceChannelIndex].Channel.Optimize(settings.Range)
		}
		switch info.ControlType {
		case rig.CONTROL_TYPE_BOOL:
			removed += proxy.Bools[info.ChannelIndex].Channel.Optimize(settings.Range)
		case rig.CONTROL_TYPE_INTEGER:
			if controlSettings, ok := r.Hierarchy().ControlSettings(rig.NewControlKey(name)); ok && controlSettings.EnumType != nil {
				removed += proxy.Enums[info.ChannelIndex].Channel.Optimize(settings.Range)
				break
			}
			removed += proxy.Integers[info.ChannelIndex].Channel.Optimize(settings.Range)
		default:
			for _, entry := range controlFloatEntries(proxy, info) {
				removed += entry.Channel.Optimize(settings.Tolerance, settings.Range)
			}
		}
	}
	logBakeDebug("キー削減を行いました: section=%s controls=%d removed=%d", s.Name, len(controlNames), removed)
	return removed
}

// FixRotationWinding はコントロールの回転サブチャンネルを区間内で巻き戻し、書き換えたキー数を返す。
func FixRotationWinding(r *fkrig.FKControlRig, s *section.Section, controlName string, start, end channel.Frame) int {
	if r == nil || s == nil {
		return 0
	}
	s.UpdateChannelProxy(r.Hierarchy())
	info, ok := s.ChannelProxy().MapInfo(controlName)
	if !ok {
		logBakeDebug("%s: control=%s", model.FkRigWarningChannelMissing, controlName)
		return 0
	}
	window := &channel.FrameRange{Start: start, End: end}
	changed := 0
	for subIndex, entry := range controlFloatEntries(s.ChannelProxy(), info) {
		if !section.IsRotationSubChannel(info.ControlType, subIndex) {
			continue
		}
		changed += entry.Channel.UnwindAngles(window)
	}
	return changed
}

// reduceSectionChannels は対応表の全チャンネルをキー削減し、削除したキー数を返す。
func reduceSectionChannels(s *section.Section, tolerance float64, window *channel.FrameRange) int {
	proxy := s.ChannelProxy()
	if proxy == nil {
		return 0
	}
	removed := 0
	for _, entry := range proxy.Floats {
		removed += entry.Channel.Optimize(tolerance, window)
	}
	for _, entry := range proxy.Bools {
		removed += entry.Channel.Optimize(window)
	}
	for _, entry := range proxy.Enums {
		removed += entry.Channel.Optimize(window)
	}
	for _, entry := range proxy.Integers {
		removed += entry.Channel.Optimize(window)
	}
	for _, entry := range proxy.Spaces {
		removed += entry.Channel.Optimize(window)
	}
	for _, entry := range proxy.Constraints {
		removed += entry.Channel.Optimize(window)
	}
	return removed
}

// controlFloatEntries はコントロールの実数サブチャンネルを返す。実数チャンネルを持たない型なら nil。
func controlFloatEntries(proxy *section.ChannelProxy, info *section.ChannelMapInfo) []section.FloatChannelEntry {
	switch info.ControlType {
	case rig.CONTROL_TYPE_BOOL, rig.CONTROL_TYPE_INTEGER:
		return nil
	}
	end := info.ChannelIndex + info.ChannelCount
	if info.ChannelIndex < 0 || end > len(proxy.Floats) {
		return nil
	}
	return proxy.Floats[info.ChannelIndex:end]
}
