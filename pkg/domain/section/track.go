// 指示: miu200521358
package section

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/miu200521358/mu_fkrig/pkg/domain/channel"
	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
	"github.com/miu200521358/mu_fkrig/pkg/domain/rig"
	"github.com/tiendc/go-deepcopy"
)

// Track は同じコントロール群を対象とするセクションを順に重ねたもの。
type Track struct {
	Name     string
	Sections []*Section
}

// NewTrack は空のトラックを生成する。
func NewTrack(name string) *Track {
	return &Track{Name: name}
}

// AddSection はセクションを末尾へ追加する。
func (t *Track) AddSection(s *Section) {
	t.Sections = append(t.Sections, s)
}

// FindSection はIDからセクションを返す。
func (t *Track) FindSection(id uuid.UUID) (*Section, bool) {
	for _, s := range t.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// RemoveSection はIDのセクションを外す。
func (t *Track) RemoveSection(id uuid.UUID) bool {
	for i, s := range t.Sections {
		if s.ID == id {
			t.Sections = append(t.Sections[:i], t.Sections[i+1:]...)
			return true
		}
	}
	return false
}

// BaseSection は先頭の絶対値セクションを返す。
func (t *Track) BaseSection() (*Section, error) {
	if len(t.Sections) == 0 {
		return nil, ErrNoSections
	}
	first := t.Sections[0]
	if first.BlendType != BLEND_TYPE_ABSOLUTE {
		return nil, fmt.Errorf("section=%s blend=%s: %w", first.Name, first.BlendType, ErrFirstSectionNotAbsolute)
	}
	return first, nil
}

// OnConstraintChanged は全セクションへ通知を転送する。
func (t *Track) OnConstraintChanged(event ConstraintEvent, constraint Constraint) {
	for _, s := range t.Sections {
		s.OnConstraintChanged(event, constraint)
	}
}

// Evaluate はフレームでの全セクションの合成結果をコントロールへ書き込み、書き込んだ数を返す。
// 先頭の絶対値セクションを基準とし、後続の絶対値セクションは重みで補間、加算セクションは重み付きで加算する。
// チャンネルが無いコントロールは現在値のまま残す。
func (t *Track) Evaluate(h *rig.Hierarchy, frame channel.Frame) int {
	written := 0
	for _, control := range h.ControlsInOrder() {
		if !h.IsAnimatable(control.Key) {
			continue
		}
		controlType := control.Control.Settings.ControlType
		count := ChannelCount(controlType)
		if count == 0 {
			continue
		}
		name := control.Key.Name
		values := ControlValueToChannels(control.Control.Current, control.Control.PreferredEuler)
		evaluated := false

		for i, s := range t.Sections {
			if !s.IsControlNameEnabled(name) {
				continue
			}
			sample, ok := s.evaluateControl(name, control.Control.Settings, frame, values)
			if !ok {
				continue
			}
			weight := s.WeightAt(frame)
			switch {
			case s.BlendType == BLEND_TYPE_ADDITIVE:
				for j := range values {
					values[j] += weight * sample[j]
				}
			case i == 0 || !evaluated:
				for j := range values {
					values[j] = values[j] + (sample[j]-values[j])*weight
				}
			default:
				if isSteppedType(controlType) {
					if weight >= 0.5 {
						copy(values, sample)
					}
					break
				}
				for j := range values {
					values[j] = values[j] + (sample[j]-values[j])*weight
				}
			}
			evaluated = true
		}
		if !evaluated {
			continue
		}

		value, ok := ControlValueFromChannels(controlType, values)
		if !ok || h.SetControlValue(control.Key, value) != nil {
			continue
		}
		if euler, ok := eulerFromChannels(controlType, values); ok {
			h.SetControlPreferredEuler(control.Key, euler)
		}
		if base, err := t.BaseSection(); err == nil {
			if space, ok := base.EvaluateSpace(name, frame); ok {
				h.SetControlSpace(control.Key, space)
			}
		}
		written++
	}
	return written
}

// evaluateControl はセクション内のコントロールのサブチャンネル値を返す。
// 加算セクションでキーが無いチャンネルは0、絶対値セクションでは fallback の値を使う。
func (s *Section) evaluateControl(name string, settings rig.ControlSettings, frame channel.Frame, fallback []float64) ([]float64, bool) {
	additive := s.BlendType == BLEND_TYPE_ADDITIVE
	pick := func(index int, value float64, ok bool) float64 {
		if ok {
			return value
		}
		if additive {
			return 0
		}
		return fallback[index]
	}

	switch settings.ControlType {
	case rig.CONTROL_TYPE_BOOL:
		p := s.FindBoolParameter(name)
		if p == nil {
			return nil, false
		}
		value, ok := p.Channel.Evaluate(frame)
		return []float64{pick(0, boolToFloat(value), ok)}, true
	case rig.CONTROL_TYPE_INTEGER:
		if settings.EnumType != nil {
			p := s.FindEnumParameter(name)
			if p == nil {
				return nil, false
			}
			value, ok := p.Channel.Evaluate(frame)
			return []float64{pick(0, float64(value), ok)}, true
		}
		p := s.FindIntegerParameter(name)
		if p == nil {
			return nil, false
		}
		value, ok := p.Channel.Evaluate(frame)
		return []float64{pick(0, float64(value), ok)}, true
	default:
		channels := s.FloatChannelsFor(name, settings.ControlType)
		if channels == nil {
			return nil, false
		}
		values := make([]float64, len(channels))
		for i, c := range channels {
			value, ok := c.Evaluate(frame)
			values[i] = pick(i, value, ok)
		}
		return values, true
	}
}

// isSteppedType は補間せずに切り替える型か判定する。
func isSteppedType(controlType rig.ControlType) bool {
	return controlType == rig.CONTROL_TYPE_BOOL || controlType == rig.CONTROL_TYPE_INTEGER
}

// eulerFromChannels はサブチャンネル列の回転部分を返す。
func eulerFromChannels(controlType rig.ControlType, values []float64) (mmath.Rotator, bool) {
	switch controlType {
	case rig.CONTROL_TYPE_ROTATOR:
		return rotatorOf(values[0:3]), true
	case rig.CONTROL_TYPE_TRANSFORM, rig.CONTROL_TYPE_TRANSFORM_NO_SCALE, rig.CONTROL_TYPE_EULER_TRANSFORM:
		return rotatorOf(values[3:6]), true
	default:
		return mmath.Rotator{}, false
	}
}

func boolToFloat(value bool) float64 {
	if value {
		return 1
	}
	return 0
}

// TrackTransaction はトラックのセクションを複製して保持し、取り消し時に戻す。
type TrackTransaction struct {
	track    *Track
	snapshot []*Section
	closed   bool
}

// BeginTrackTransaction はトラックの現在のセクションを複製する。
func BeginTrackTransaction(track *Track) (*TrackTransaction, error) {
	var snapshot []*Section
	if err := deepcopy.Copy(&snapshot, track.Sections); err != nil {
		return nil, fmt.Errorf("セクションの複製に失敗しました: %w", err)
	}
	return &TrackTransaction{track: track, snapshot: snapshot}, nil
}

// Commit は変更を確定する。
func (tx *TrackTransaction) Commit() {
	tx.snapshot = nil
	tx.closed = true
}

// Cancel はトラックを開始時のセクションへ戻す。確定済みなら何もしない。
func (tx *TrackTransaction) Cancel() bool {
	if tx.closed {
		return false
	}
	for _, s := range tx.snapshot {
		s.InvalidateChannelProxy()
	}
	tx.track.Sections = tx.snapshot
	tx.snapshot = nil
	tx.closed = true
	return true
}
