// 指示: miu200521358
// Package fkrig はボーン・カーブをコントロールで駆動するFKリグを提供する。
package fkrig

import (
	"strings"

	"github.com/miu200521358/mu_fkrig/pkg/domain/model"
	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
	"github.com/miu200521358/mu_fkrig/pkg/domain/rig"
	"github.com/miu200521358/mu_fkrig/pkg/shared/base/logging"
)

// ApplyMode はコントロール値をボーンへ合成する方式を表す。
type ApplyMode int

const (
	// APPLY_MODE_REPLACE はコントロール値をオフセットと合成して置き換える。
	APPLY_MODE_REPLACE ApplyMode = iota
	// APPLY_MODE_ADDITIVE はボーンの現在値へ重ねる。
	APPLY_MODE_ADDITIVE
	// APPLY_MODE_DIRECT はオフセットを使わずそのまま書き込む。
	APPLY_MODE_DIRECT
)

// String はモード名を返す。
func (m ApplyMode) String() string {
	switch m {
	case APPLY_MODE_ADDITIVE:
		return "Additive"
	case APPLY_MODE_DIRECT:
		return "Direct"
	default:
		return "Replace"
	}
}

// ParseApplyMode はモード名(大文字小文字は区別しない)から適用モードを返す。
func ParseApplyMode(name string) (ApplyMode, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "replace":
		return APPLY_MODE_REPLACE, true
	case "additive":
		return APPLY_MODE_ADDITIVE, true
	case "direct":
		return APPLY_MODE_DIRECT, true
	default:
		return APPLY_MODE_REPLACE, false
	}
}

// Event はリグの実行イベントを表す。
type Event int

const (
	// EVENT_FORWARD はコントロールからボーン・カーブへの伝播。
	EVENT_FORWARD Event = iota
	// EVENT_INVERSE はボーン・カーブからコントロールへの逆伝播。
	EVENT_INVERSE
)

// SetKey はコントロール変更時のキー記録方針を表す。
type SetKey int

const (
	// SET_KEY_DEVELOPER は記録側の自動キー設定に従う。
	SET_KEY_DEVELOPER SetKey = iota
	// SET_KEY_ALWAYS は常に記録する。
	SET_KEY_ALWAYS
	// SET_KEY_NEVER は記録しない。
	SET_KEY_NEVER
)

// ControlModifiedContext はコントロール変更通知の付帯情報を表す。
type ControlModifiedContext struct {
	SetKey SetKey
}

// ControlModifiedHandler はコントロール変更通知を受け取る。
type ControlModifiedHandler func(controlKey rig.ElementKey, context ControlModifiedContext)

// Option は FKControlRig の生成オプション。
type Option func(*FKControlRig)

// WithApplyMode は初期の合成方式を指定する。
func WithApplyMode(mode ApplyMode) Option {
	return func(r *FKControlRig) {
		r.applyMode = mode
	}
}

// WithNameCache はコントロール名キャッシュを差し替える。ワーカーごとに別インスタンスを渡す。
func WithNameCache(cache *rig.NameCache) Option {
	return func(r *FKControlRig) {
		if cache != nil {
			r.names = cache
		}
	}
}

// WithHierarchy は既存の階層を使う。
func WithHierarchy(hierarchy *rig.Hierarchy) Option {
	return func(r *FKControlRig) {
		if hierarchy != nil {
			r.hierarchy = hierarchy
		}
	}
}

// FKControlRig はボーン・カーブごとのコントロールを持つFKリグ。
type FKControlRig struct {
	hierarchy             *rig.Hierarchy
	names                 *rig.NameCache
	applyMode             ApplyMode
	cachedToggleApplyMode ApplyMode
	modifiedHandlers      []ControlModifiedHandler
}

// NewFKControlRig はFKリグを生成する。
func NewFKControlRig(opts ...Option) *FKControlRig {
	r := &FKControlRig{
		hierarchy:             rig.NewHierarchy(),
		names:                 rig.NewNameCache(),
		applyMode:             APPLY_MODE_REPLACE,
		cachedToggleApplyMode: APPLY_MODE_REPLACE,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Hierarchy はリグ階層を返す。
func (r *FKControlRig) Hierarchy() *rig.Hierarchy {
	return r.hierarchy
}

// NameCache はコントロール名キャッシュを返す。
func (r *FKControlRig) NameCache() *rig.NameCache {
	return r.names
}

// ApplyMode は現在の合成方式を返す。
func (r *FKControlRig) ApplyMode() ApplyMode {
	return r.applyMode
}

// CachedToggleApplyMode はトグルで戻る合成方式を返す。
func (r *FKControlRig) CachedToggleApplyMode() ApplyMode {
	return r.cachedToggleApplyMode
}

// ControlKeyFor はボーン・カーブに対応するコントロールのキーを返す。
func (r *FKControlRig) ControlKeyFor(target rig.ElementKey) rig.ElementKey {
	return rig.NewControlKey(r.names.ControlNameFor(target.Name, target.Type))
}

// TargetKeyFor はコントロールに対応するボーン・カーブのキーを返す。
func (r *FKControlRig) TargetKeyFor(controlKey rig.ElementKey, targetType rig.ElementType) rig.ElementKey {
	return rig.ElementKey{Name: r.names.TargetNameForControl(controlKey.Name, targetType), Type: targetType}
}

// OnControlModified はコントロール変更通知の受け手を登録する。
func (r *FKControlRig) OnControlModified(handler ControlModifiedHandler) {
	if handler == nil {
		return
	}
	r.modifiedHandlers = append(r.modifiedHandlers, handler)
}

// SetControlValue はコントロール値を設定し変更を通知する。
func (r *FKControlRig) SetControlValue(controlKey rig.ElementKey, value rig.ControlValue, setKey SetKey) error {
	if err := r.hierarchy.SetControlValue(controlKey, value); err != nil {
		return err
	}
	r.notifyControlModified(controlKey, setKey)
	return nil
}

// SetControlLocalTransform はコントロールのローカルトランスフォームを設定し変更を通知する。
func (r *FKControlRig) SetControlLocalTransform(controlKey rig.ElementKey, t mmath.Transform, setKey SetKey) bool {
	if !r.hierarchy.SetLocalTransform(controlKey, t) {
		return false
	}
	r.notifyControlModified(controlKey, setKey)
	return true
}

// SetControlActive はコントロールの有効状態を設定する。無効なコントロールは順伝播で飛ばす。
func (r *FKControlRig) SetControlActive(controlKey rig.ElementKey, active bool) bool {
	return r.hierarchy.SetControlActive(controlKey, active)
}

// notifyControlModified は登録済みの受け手へ通知する。
func (r *FKControlRig) notifyControlModified(controlKey rig.ElementKey, setKey SetKey) {
	context := ControlModifiedContext{SetKey: setKey}
	for _, handler := range r.modifiedHandlers {
		handler(controlKey, context)
	}
}

// Execute はイベントに応じた伝播を1回実行する。
func (r *FKControlRig) Execute(event Event) {
	switch event {
	case EVENT_FORWARD:
		r.forward()
	case EVENT_INVERSE:
		r.inverse()
	}
}

// forward はコントロール値をボーン(親→子の順)とカーブへ伝播する。
func (r *FKControlRig) forward() {
	h := r.hierarchy
	for _, bone := range h.Bones() {
		control, ok := r.activeControlFor(bone)
		if !ok {
			continue
		}
		local, ok := rig.ControlValueToTransform(control.Control.Current)
		if !ok {
			logFkRigWarn(model.FkRigWarningControlTypeMismatch, "bone=%s control=%s type=%s", bone.Key.Name, control.Key.Name, control.Control.Settings.ControlType)
			continue
		}

		var newLocal mmath.Transform
		switch r.applyMode {
		case APPLY_MODE_ADDITIVE:
			newLocal = local.Muled(bone.Local).Normalized()
		case APPLY_MODE_DIRECT:
			newLocal = local.Normalized()
		default:
			newLocal = local.Muled(control.Control.Offset).Normalized()
		}
		if r.applyMode != APPLY_MODE_ADDITIVE && control.Control.Space.SpaceType != rig.SPACE_TYPE_PARENT {
			controlGlobal, _ := h.GlobalTransform(control.Key)
			newLocal = controlGlobal.RelativeTo(h.ParentGlobalTransform(bone.Key, false)).Normalized()
		}
		bone.Local = newLocal
	}

	for _, curve := range h.Curves() {
		control, ok := r.activeControlFor(curve)
		if !ok {
			continue
		}
		value, ok := rig.ControlValueToFloat(control.Control.Current)
		if !ok {
			logFkRigWarn(model.FkRigWarningControlTypeMismatch, "curve=%s control=%s type=%s", curve.Key.Name, control.Key.Name, control.Control.Settings.ControlType)
			continue
		}
		if r.applyMode == APPLY_MODE_ADDITIVE {
			curve.CurveValue += value
		} else {
			curve.CurveValue = value
		}
	}
}

// activeControlFor はボーン・カーブに対応する有効なコントロールを返す。
func (r *FKControlRig) activeControlFor(target *rig.Element) (*rig.Element, bool) {
	control, ok := r.hierarchy.Find(r.ControlKeyFor(target.Key))
	if !ok || !control.IsControl() {
		logFkRigDebug("%s: target=%s", model.FkRigWarningControlMissing, target.Key)
		return nil, false
	}
	if !control.Control.Active {
		logFkRigDebug("%s: control=%s", model.FkRigWarningControlInactive, control.Key.Name)
		return nil, false
	}
	return control, true
}

// inverse はボーン(親→子の順、ボーン以外の部分木には降りない)とカーブの現在値をコントロールへ書き戻す。
// 逆伝播は常に Replace として扱い、Direct のみオフセットを使わない。
func (r *FKControlRig) inverse() {
	h := r.hierarchy
	h.Traverse(func(element *rig.Element) bool {
		if !element.IsBone() {
			return false
		}
		controlKey := r.ControlKeyFor(element.Key)
		offset, ok := h.ControlOffset(controlKey)
		if !ok {
			logFkRigDebug("%s: target=%s", model.FkRigWarningControlMissing, element.Key)
			return true
		}
		current := element.Local
		var controlLocal mmath.Transform
		if r.applyMode == APPLY_MODE_DIRECT {
			controlLocal = current.Normalized()
		} else {
			controlLocal = current.RelativeTo(offset).Normalized()
		}
		h.SetLocalTransform(controlKey, controlLocal)
		return true
	})

	for _, curve := range h.Curves() {
		controlKey := r.ControlKeyFor(curve.Key)
		if err := h.SetControlValue(controlKey, rig.FloatValue(curve.CurveValue)); err != nil {
			logFkRigDebug("カーブ逆伝播を見送りました: curve=%s err=%v", curve.Key.Name, err)
		}
	}
}

// SetApplyMode は合成方式を切り替え、トランスフォーム系・実数のコントロール値を一度だけ初期化する。
// Additive へは中立値、それ以外へは初期値を設定する。この初期化はキーを記録しない。
// 現在と同じ方式なら何もしない。
func (r *FKControlRig) SetApplyMode(mode ApplyMode) {
	if r.applyMode == mode {
		return
	}
	r.applyMode = mode
	for _, control := range r.hierarchy.ControlsInOrder() {
		controlType := control.Control.Settings.ControlType
		if !controlType.IsTransformLike() && controlType != rig.CONTROL_TYPE_FLOAT {
			continue
		}
		value := control.Control.Initial
		if mode == APPLY_MODE_ADDITIVE {
			value = rig.NeutralControlValue(controlType)
		}
		if err := r.SetControlValue(control.Key, value, SET_KEY_NEVER); err != nil {
			logFkRigWarn(model.FkRigWarningControlTypeMismatch, "control=%s err=%v", control.Key.Name, err)
		}
	}
	logFkRigDebug("合成方式を切り替えました: mode=%s", mode)
}

// ToggleApplyMode は Additive と直前の方式を切り替える。
func (r *FKControlRig) ToggleApplyMode() {
	modeToApply := APPLY_MODE_ADDITIVE
	if r.applyMode == APPLY_MODE_ADDITIVE {
		modeToApply = r.cachedToggleApplyMode
	} else {
		r.cachedToggleApplyMode = r.applyMode
	}
	r.SetApplyMode(modeToApply)
}

// logFkRigDebug はFKリグのデバッグログを出力する。
func logFkRigDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logFkRigWarn は警告IDつきの警告ログを出力する。
func logFkRigWarn(warningID string, format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(warningID+": "+format, params...)
}
