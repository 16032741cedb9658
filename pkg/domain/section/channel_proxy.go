// 指示: miu200521358
package section

import (
	"github.com/miu200521358/mu_fkrig/pkg/domain/channel"
	"github.com/miu200521358/mu_fkrig/pkg/domain/model"
	"github.com/miu200521358/mu_fkrig/pkg/domain/rig"
	"github.com/miu200521358/mu_fkrig/pkg/shared/base/logging"
)

// WeightChannelName は重みチャンネルのメタデータ名。
const WeightChannelName = "Weight"

// ChannelMetaData はチャンネルの表示情報を表す。
type ChannelMetaData struct {
	Name      string
	SubName   string
	Group     string
	SortOrder int
	Enabled   bool
}

// FloatChannelEntry は対応表上の実数チャンネル。
type FloatChannelEntry struct {
	Channel *channel.FloatChannel
	Meta    ChannelMetaData
}

// BoolChannelEntry は対応表上の真偽値チャンネル。
type BoolChannelEntry struct {
	Channel *channel.BoolChannel
	Meta    ChannelMetaData
}

// EnumChannelEntry は対応表上の列挙チャンネル。
type EnumChannelEntry struct {
	Channel *channel.EnumChannel
	Meta    ChannelMetaData
}

// IntegerChannelEntry は対応表上の整数チャンネル。
type IntegerChannelEntry struct {
	Channel *channel.IntegerChannel
	Meta    ChannelMetaData
}

// SpaceChannelEntry は対応表上のスペースチャンネル。
type SpaceChannelEntry struct {
	Channel *channel.SteppedChannel[SpaceKey]
	Meta    ChannelMetaData
}

// ConstraintChannelEntry は対応表上のコンストレイント有効チャンネル。
type ConstraintChannelEntry struct {
	Channel      *channel.BoolChannel
	ConstraintID string
	Meta         ChannelMetaData
}

// ChannelMapInfo はコントロールと型別チャンネル配列の対応を表す。
type ChannelMapInfo struct {
	ControlIndex       int
	TotalChannelIndex  int
	ChannelIndex       int
	ChannelCount       int
	ControlType        rig.ControlType
	ParentControlIndex int
	MaskIndex          int
	CategoryIndex      int
	DoesHaveSpace      bool
	SpaceChannelIndex  int
	ConstraintsIndex   []int
	// GeneratedKeyIndex は1回の記録中だけ使う作業用の位置。
	GeneratedKeyIndex int
}

// ChannelProxy はセクションのチャンネルを型別の平坦な配列として並べた対応表。
type ChannelProxy struct {
	Floats      []FloatChannelEntry
	Bools       []BoolChannelEntry
	Enums       []EnumChannelEntry
	Integers    []IntegerChannelEntry
	Spaces      []SpaceChannelEntry
	Constraints []ConstraintChannelEntry

	// ControlOrder は対応表に載ったコントロール名を順に保持する。
	ControlOrder []string
	ChannelMap   map[string]*ChannelMapInfo
}

// MapInfo はコントロール名の対応情報を返す。
func (p *ChannelProxy) MapInfo(controlName string) (*ChannelMapInfo, bool) {
	if p == nil {
		return nil, false
	}
	info, ok := p.ChannelMap[controlName]
	return info, ok
}

// NumChannels は全種別のチャンネル数を返す。
func (p *ChannelProxy) NumChannels() int {
	if p == nil {
		return 0
	}
	return len(p.Floats) + len(p.Bools) + len(p.Enums) + len(p.Integers) + len(p.Spaces) + len(p.Constraints)
}

// controlSnapshot は対応表を作ったときのコントロール構成。
type controlSnapshot struct {
	Name string
	Type rig.ControlType
}

// ChannelProxy は現在の対応表を返す。未構築なら nil。
func (s *Section) ChannelProxy() *ChannelProxy {
	return s.proxy
}

// UpdateChannelProxy はコントロール構成が変わっていれば対応表を作り直し、作り直したかを返す。
func (s *Section) UpdateChannelProxy(h *rig.Hierarchy) bool {
	snapshot := animatableSnapshot(h)
	if s.proxy != nil && !s.proxyDirty && sameSnapshot(s.proxySnapshot, snapshot) {
		return false
	}
	s.CacheChannelProxy(h)
	return true
}

// ReconstructChannelProxy は構成にかかわらず対応表を作り直す。
func (s *Section) ReconstructChannelProxy(h *rig.Hierarchy) {
	s.CacheChannelProxy(h)
}

// CacheChannelProxy は階層のアニメーション可能なコントロールから対応表を作る。
// 既存の対応表は捨て、部分的な更新はしない。
func (s *Section) CacheChannelProxy(h *rig.Hierarchy) *ChannelProxy {
	proxy := &ChannelProxy{ChannelMap: map[string]*ChannelMapInfo{}}
	var (
		controlIndex       int
		totalChannelIndex  int
		maskIndex          int
		sortOrder          = 1
		categoryIndex      int
		floatChannelIndex  int
		boolChannelIndex   int
		enumChannelIndex   int
		integerIndex       int
		spaceChannelIndex  int
		constraintsChannel int
	)

	for _, control := range h.ControlsInOrder() {
		settings := control.Control.Settings
		name := control.Key.Name
		if !h.IsAnimatable(control.Key) {
			continue
		}
		count := ChannelCount(settings.ControlType)
		if count == 0 {
			continue
		}

		enabled := s.IsControlNameEnabled(name)
		grouped := h.ShouldBeGrouped(control.Key)
		group := h.DisplayNameForUI(control.Key)
		parentControlIndex := -1
		if grouped {
			if parent, ok := h.FirstParentControl(control.Key); ok {
				if parentInfo, ok := proxy.ChannelMap[parent.Key.Name]; ok {
					parentControlIndex = parentInfo.ControlIndex
				}
				group = h.DisplayNameForUI(parent.Key)
			}
		}
		meta := func(subName string) ChannelMetaData {
			m := ChannelMetaData{Name: name, SubName: subName, Group: group, SortOrder: sortOrder, Enabled: enabled}
			sortOrder++
			return m
		}

		info := &ChannelMapInfo{
			ControlIndex:       controlIndex,
			TotalChannelIndex:  totalChannelIndex,
			ChannelIndex:       -1,
			ChannelCount:       count,
			ControlType:        settings.ControlType,
			ParentControlIndex: parentControlIndex,
			MaskIndex:          maskIndex,
			CategoryIndex:      categoryIndex,
			SpaceChannelIndex:  -1,
			GeneratedKeyIndex:  -1,
		}

		// 値パラメータが無い場合に備えて、拘束チャンネル追加前の位置を覚えておく。
		constraintsBefore, constraintsChannelBefore := len(proxy.Constraints), constraintsChannel
		totalChannelIndexBefore, sortOrderBefore := totalChannelIndex, sortOrder
		for _, constraint := range s.ConstraintsChannels {
			if constraint.ControlName != name {
				continue
			}
			proxy.Constraints = append(proxy.Constraints, ConstraintChannelEntry{
				Channel:      constraint.ActiveChannel,
				ConstraintID: constraint.ConstraintID.String(),
				Meta:         meta(constraint.ConstraintName),
			})
			info.ConstraintsIndex = append(info.ConstraintsIndex, constraintsChannel)
			constraintsChannel++
			totalChannelIndex++
		}

		bound := true
		switch settings.ControlType {
		case rig.CONTROL_TYPE_BOOL:
			p := s.FindBoolParameter(name)
			if p == nil {
				bound = false
				break
			}
			info.ChannelIndex = boolChannelIndex
			proxy.Bools = append(proxy.Bools, BoolChannelEntry{Channel: p.Channel, Meta: meta("")})
			boolChannelIndex++
		case rig.CONTROL_TYPE_INTEGER:
			if settings.EnumType != nil {
				p := s.FindEnumParameter(name)
				if p == nil {
					bound = false
					break
				}
				info.ChannelIndex = enumChannelIndex
				proxy.Enums = append(proxy.Enums, EnumChannelEntry{Channel: p.Channel, Meta: meta("")})
				enumChannelIndex++
				break
			}
			p := s.FindIntegerParameter(name)
			if p == nil {
				bound = false
				break
			}
			info.ChannelIndex = integerIndex
			proxy.Integers = append(proxy.Integers, IntegerChannelEntry{Channel: p.Channel, Meta: meta("")})
			integerIndex++
		default:
			channels := s.FloatChannelsFor(name, settings.ControlType)
			if channels == nil {
				bound = false
				break
			}
			if spaceChannel := s.FindSpaceChannel(name); spaceChannel != nil && !grouped {
				info.DoesHaveSpace = true
				info.SpaceChannelIndex = spaceChannelIndex
				proxy.Spaces = append(proxy.Spaces, SpaceChannelEntry{Channel: spaceChannel.Channel, Meta: meta("Space")})
				spaceChannelIndex++
				totalChannelIndex++
			}
			info.ChannelIndex = floatChannelIndex
			names := subChannelNames(settings.ControlType)
			for i, c := range channels {
				m := meta(names[i])
				if transformChannel, ok := TransformChannelOf(settings.ControlType, i); ok {
					m.Enabled = m.Enabled && settings.IsChannelEnabled(transformChannel)
				}
				proxy.Floats = append(proxy.Floats, FloatChannelEntry{Channel: c, Meta: m})
			}
			floatChannelIndex += len(channels)
		}
		if !bound {
			proxy.Constraints = proxy.Constraints[:constraintsBefore]
			constraintsChannel = constraintsChannelBefore
			totalChannelIndex = totalChannelIndexBefore
			sortOrder = sortOrderBefore
			logSectionDebug("%s: control=%s type=%s", model.FkRigWarningChannelMissing, name, settings.ControlType)
			controlIndex++
			continue
		}

		totalChannelIndex += count
		proxy.ChannelMap[name] = info
		proxy.ControlOrder = append(proxy.ControlOrder, name)
		maskIndex++
		if !grouped && enabled {
			categoryIndex++
		}
		controlIndex++
	}

	if s.Weight != nil {
		proxy.Floats = append(proxy.Floats, FloatChannelEntry{
			Channel: s.Weight,
			Meta:    ChannelMetaData{Name: WeightChannelName, SortOrder: 0, Enabled: true},
		})
	}

	s.proxy = proxy
	s.proxySnapshot = animatableSnapshot(h)
	s.proxyDirty = false
	logSectionDebug("チャンネル対応表を作り直しました: section=%s controls=%d channels=%d", s.Name, len(proxy.ControlOrder), proxy.NumChannels())
	return proxy
}

// animatableSnapshot はアニメーション可能なコントロールの名前と型を順に返す。
func animatableSnapshot(h *rig.Hierarchy) []controlSnapshot {
	snapshot := make([]controlSnapshot, 0)
	for _, control := range h.ControlsInOrder() {
		if !h.IsAnimatable(control.Key) {
			continue
		}
		snapshot = append(snapshot, controlSnapshot{Name: control.Key.Name, Type: control.Control.Settings.ControlType})
	}
	return snapshot
}

// sameSnapshot は構成が一致するか判定する。件数が違えば不一致とする。
func sameSnapshot(a, b []controlSnapshot) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// logSectionDebug はセクションのデバッグログを出力する。
func logSectionDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}
