// 指示: miu200521358
package fkrig

import (
	"fmt"

	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
	"github.com/miu200521358/mu_fkrig/pkg/domain/rig"
)

// BoneDefinition は参照スケルトンのボーン定義を表す。
type BoneDefinition struct {
	Name        string
	ParentIndex int
	RestLocal   mmath.Transform
}

// CurveDefinition はスカラーカーブの定義を表す。
type CurveDefinition struct {
	Name         string
	DefaultValue float64
}

// Skeleton は参照スケルトン(親インデックス付きボーン列とカーブ名)を表す。
type Skeleton struct {
	Name   string
	Bones  []BoneDefinition
	Curves []CurveDefinition
}

// BoneIndex はボーン名からインデックスを返す。
func (s *Skeleton) BoneIndex(name string) int {
	if s == nil {
		return -1
	}
	for i, bone := range s.Bones {
		if bone.Name == name {
			return i
		}
	}
	return -1
}

// ImportSkeleton は階層を作り直し、ボーン・カーブとそれぞれのコントロールを生成する。
func (r *FKControlRig) ImportSkeleton(skeleton *Skeleton) error {
	if skeleton == nil {
		return fmt.Errorf("スケルトンがありません: %w", rig.ErrElementNotFound)
	}
	h := r.hierarchy
	h.Reset()

	boneKeys := make([]rig.ElementKey, len(skeleton.Bones))
	for i, bone := range skeleton.Bones {
		parent := rig.ElementKey{}
		if bone.ParentIndex >= 0 {
			if bone.ParentIndex >= i {
				h.Reset()
				return fmt.Errorf("bone=%s parent=%d index=%d: %w", bone.Name, bone.ParentIndex, i, rig.ErrCycle)
			}
			parent = boneKeys[bone.ParentIndex]
		}
		key, err := h.AddBone(bone.Name, parent, bone.RestLocal)
		if err != nil {
			h.Reset()
			return fmt.Errorf("ボーン追加に失敗しました: %w", err)
		}
		boneKeys[i] = key
	}
	for _, curve := range skeleton.Curves {
		if _, err := h.AddCurve(curve.Name, curve.DefaultValue); err != nil {
			h.Reset()
			return fmt.Errorf("カーブ追加に失敗しました: %w", err)
		}
	}

	if err := r.CreateControls(); err != nil {
		h.Reset()
		return err
	}
	r.SetControlOffsetsFromBoneInitials()
	logFkRigDebug("スケルトンを取り込みました: name=%s bones=%d curves=%d", skeleton.Name, len(skeleton.Bones), len(skeleton.Curves))
	return nil
}

// CreateControls はコントロールを持たないボーン・カーブにコントロールを追加する。
func (r *FKControlRig) CreateControls() error {
	h := r.hierarchy
	for _, bone := range h.Bones() {
		controlKey := r.ControlKeyFor(bone.Key)
		if h.Contains(controlKey) {
			continue
		}
		parent, _ := h.Parent(bone.Key)
		settings := rig.NewControlSettings(rig.CONTROL_TYPE_EULER_TRANSFORM)
		settings.DisplayName = bone.Key.Name
		if _, err := h.AddControl(controlKey.Name, parent, settings, mmath.NewTransform(), nil); err != nil {
			return fmt.Errorf("ボーンコントロール追加に失敗しました: bone=%s: %w", bone.Key.Name, err)
		}
	}
	for _, curve := range h.Curves() {
		controlKey := r.ControlKeyFor(curve.Key)
		if h.Contains(controlKey) {
			continue
		}
		settings := rig.NewControlSettings(rig.CONTROL_TYPE_FLOAT)
		settings.DisplayName = curve.Key.Name + " Curve"
		if _, err := h.AddControl(controlKey.Name, rig.ElementKey{}, settings, mmath.NewTransform(), rig.FloatValue(curve.CurveValue)); err != nil {
			return fmt.Errorf("カーブコントロール追加に失敗しました: curve=%s: %w", curve.Key.Name, err)
		}
	}
	return nil
}

// SetControlOffsetsFromBoneInitials は各ボーンの初期ローカルをコントロールのオフセットに設定する。
func (r *FKControlRig) SetControlOffsetsFromBoneInitials() {
	h := r.hierarchy
	for _, bone := range h.Bones() {
		h.SetControlOffset(r.ControlKeyFor(bone.Key), bone.InitialLocal)
	}
}
