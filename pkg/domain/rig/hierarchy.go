// 指示: miu200521358
package rig

import (
	"fmt"

	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
)

// Hierarchy はリグ要素の木を保持する。要素は親を高々1つ持ち、循環しない。
// 単一スレッドからの利用を前提とし、ロックを持たない。
type Hierarchy struct {
	elements   []*Element
	indexByKey map[ElementKey]int
}

// NewHierarchy は空の階層を生成する。
func NewHierarchy() *Hierarchy {
	return &Hierarchy{indexByKey: map[ElementKey]int{}}
}

// Reset は全要素を破棄する。
func (h *Hierarchy) Reset() {
	h.elements = nil
	h.indexByKey = map[ElementKey]int{}
}

// Num は要素数を返す。
func (h *Hierarchy) Num() int {
	if h == nil {
		return 0
	}
	return len(h.elements)
}

// Find はキーから要素を返す。
func (h *Hierarchy) Find(key ElementKey) (*Element, bool) {
	if h == nil {
		return nil, false
	}
	index, ok := h.indexByKey[key]
	if !ok {
		return nil, false
	}
	return h.elements[index], true
}

// Contains は要素が存在するか判定する。
func (h *Hierarchy) Contains(key ElementKey) bool {
	_, ok := h.Find(key)
	return ok
}

// AddBone はボーンを追加する。parent が無効キーの場合はルートとなる。
func (h *Hierarchy) AddBone(name string, parent ElementKey, initialLocal mmath.Transform) (ElementKey, error) {
	element, err := h.addElement(NewBoneKey(name), parent)
	if err != nil {
		return ElementKey{}, err
	}
	element.Local = initialLocal
	element.InitialLocal = initialLocal
	return element.Key, nil
}

// AddCurve はカーブを追加する。
func (h *Hierarchy) AddCurve(name string, value float64) (ElementKey, error) {
	element, err := h.addElement(NewCurveKey(name), ElementKey{})
	if err != nil {
		return ElementKey{}, err
	}
	element.CurveValue = value
	element.InitialCurveValue = value
	return element.Key, nil
}

// AddControl はコントロールを追加する。value は設定の型と一致していなければならない。
func (h *Hierarchy) AddControl(
	name string,
	parent ElementKey,
	settings ControlSettings,
	offset mmath.Transform,
	value ControlValue,
) (ElementKey, error) {
	if value == nil {
		value = NeutralControlValue(settings.ControlType)
	}
	if value != nil && value.ControlType() != settings.ControlType {
		return ElementKey{}, fmt.Errorf("%s: got=%s want=%s: %w", name, value.ControlType(), settings.ControlType, ErrControlTypeMismatch)
	}
	element, err := h.addElement(NewControlKey(name), parent)
	if err != nil {
		return ElementKey{}, err
	}
	preferred, _ := EulerOf(value)
	element.Control = &ControlElementData{
		Settings:       settings,
		Offset:         offset,
		Current:        value,
		Initial:        value,
		Active:         true,
		PreferredEuler: preferred,
		Space:          ParentSpace(),
	}
	return element.Key, nil
}

// addElement は要素を末尾へ追加し親子関係を張る。
func (h *Hierarchy) addElement(key ElementKey, parent ElementKey) (*Element, error) {
	if !key.IsValid() {
		return nil, fmt.Errorf("invalid key %s: %w", key, ErrElementNotFound)
	}
	if h.indexByKey == nil {
		h.indexByKey = map[ElementKey]int{}
	}
	if _, exists := h.indexByKey[key]; exists {
		return nil, fmt.Errorf("%s: %w", key, ErrElementExists)
	}
	parentIndex := -1
	if parent.IsValid() {
		index, ok := h.indexByKey[parent]
		if !ok {
			return nil, fmt.Errorf("parent %s of %s: %w", parent, key, ErrElementNotFound)
		}
		parentIndex = index
	}

	element := &Element{
		Key:          key,
		Index:        len(h.elements),
		ParentIndex:  parentIndex,
		Local:        mmath.NewTransform(),
		InitialLocal: mmath.NewTransform(),
	}
	h.elements = append(h.elements, element)
	h.indexByKey[key] = element.Index
	if parentIndex >= 0 {
		h.elements[parentIndex].Children = append(h.elements[parentIndex].Children, element.Index)
	}
	return element, nil
}

// SetParent は親を付け替える。循環する場合は ErrCycle を返す。
func (h *Hierarchy) SetParent(child ElementKey, parent ElementKey) error {
	childElement, ok := h.Find(child)
	if !ok {
		return fmt.Errorf("%s: %w", child, ErrElementNotFound)
	}
	newParentIndex := -1
	if parent.IsValid() {
		parentElement, ok := h.Find(parent)
		if !ok {
			return fmt.Errorf("%s: %w", parent, ErrElementNotFound)
		}
		for cursor := parentElement.Index; cursor >= 0; cursor = h.elements[cursor].ParentIndex {
			if cursor == childElement.Index {
				return fmt.Errorf("%s -> %s: %w", child, parent, ErrCycle)
			}
		}
		newParentIndex = parentElement.Index
	}

	h.detachFromParent(childElement)
	childElement.ParentIndex = newParentIndex
	if newParentIndex >= 0 {
		h.elements[newParentIndex].Children = append(h.elements[newParentIndex].Children, childElement.Index)
	}
	return nil
}

// RemoveElement は要素を削除する。子は削除した要素の親へ付け替える。
func (h *Hierarchy) RemoveElement(key ElementKey) error {
	element, ok := h.Find(key)
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrElementNotFound)
	}
	h.detachFromParent(element)
	for _, childIndex := range element.Children {
		child := h.elements[childIndex]
		child.ParentIndex = element.ParentIndex
		if element.ParentIndex >= 0 {
			parent := h.elements[element.ParentIndex]
			parent.Children = append(parent.Children, childIndex)
		}
	}
	element.Children = nil

	removedIndex := element.Index
	h.elements = append(h.elements[:removedIndex], h.elements[removedIndex+1:]...)
	h.reindex(removedIndex)
	return nil
}

// RenameElement は要素名を変更する。
func (h *Hierarchy) RenameElement(key ElementKey, newName string) (ElementKey, error) {
	element, ok := h.Find(key)
	if !ok {
		return ElementKey{}, fmt.Errorf("%s: %w", key, ErrElementNotFound)
	}
	newKey := ElementKey{Name: newName, Type: key.Type}
	if !newKey.IsValid() {
		return ElementKey{}, fmt.Errorf("invalid key %s: %w", newKey, ErrElementNotFound)
	}
	if _, exists := h.indexByKey[newKey]; exists {
		return ElementKey{}, fmt.Errorf("%s: %w", newKey, ErrElementExists)
	}
	delete(h.indexByKey, key)
	element.Key = newKey
	h.indexByKey[newKey] = element.Index
	return newKey, nil
}

// detachFromParent は親の子リストから要素を外す。
func (h *Hierarchy) detachFromParent(element *Element) {
	if element.ParentIndex < 0 {
		return
	}
	parent := h.elements[element.ParentIndex]
	children := parent.Children[:0]
	for _, childIndex := range parent.Children {
		if childIndex != element.Index {
			children = append(children, childIndex)
		}
	}
	parent.Children = children
}

// reindex は削除位置以降のインデックスを詰め直す。
func (h *Hierarchy) reindex(removedIndex int) {
	shift := func(index int) int {
		if index > removedIndex {
			return index - 1
		}
		return index
	}
	h.indexByKey = make(map[ElementKey]int, len(h.elements))
	for i, element := range h.elements {
		element.Index = i
		if element.ParentIndex >= 0 {
			element.ParentIndex = shift(element.ParentIndex)
		}
		for c := range element.Children {
			element.Children[c] = shift(element.Children[c])
		}
		h.indexByKey[element.Key] = i
	}
}

// Parent は親要素のキーを返す。
func (h *Hierarchy) Parent(key ElementKey) (ElementKey, bool) {
	element, ok := h.Find(key)
	if !ok || element.ParentIndex < 0 {
		return ElementKey{}, false
	}
	return h.elements[element.ParentIndex].Key, true
}

// Children は子要素のキーを返す。
func (h *Hierarchy) Children(key ElementKey) []ElementKey {
	element, ok := h.Find(key)
	if !ok {
		return nil
	}
	keys := make([]ElementKey, 0, len(element.Children))
	for _, childIndex := range element.Children {
		keys = append(keys, h.elements[childIndex].Key)
	}
	return keys
}

// Traverse はルートから親→子の順に走査する。fn が false を返した要素の子孫には降りない。
func (h *Hierarchy) Traverse(fn func(element *Element) bool) {
	if h == nil {
		return
	}
	for _, element := range h.elements {
		if element.ParentIndex < 0 {
			h.traverseFrom(element, fn)
		}
	}
}

// traverseFrom は指定要素以下を深さ優先で走査する。
func (h *Hierarchy) traverseFrom(element *Element, fn func(element *Element) bool) {
	if !fn(element) {
		return
	}
	for _, childIndex := range element.Children {
		h.traverseFrom(h.elements[childIndex], fn)
	}
}

// Elements は指定種別の要素を走査順で返す。
func (h *Hierarchy) Elements(elementType ElementType) []*Element {
	var result []*Element
	h.Traverse(func(element *Element) bool {
		if element.Key.Type == elementType {
			result = append(result, element)
		}
		return true
	})
	return result
}

// Bones はボーンを親→子の順で返す。
func (h *Hierarchy) Bones() []*Element {
	return h.Elements(ELEMENT_TYPE_BONE)
}

// Curves はカーブを返す。
func (h *Hierarchy) Curves() []*Element {
	return h.Elements(ELEMENT_TYPE_CURVE)
}

// ControlsInOrder はコントロールを評価順(階層の走査順)で返す。
func (h *Hierarchy) ControlsInOrder() []*Element {
	return h.Elements(ELEMENT_TYPE_CONTROL)
}

// LocalTransform はローカルトランスフォームを返す。
func (h *Hierarchy) LocalTransform(key ElementKey) (mmath.Transform, bool) {
	element, ok := h.Find(key)
	if !ok {
		return mmath.NewTransform(), false
	}
	switch {
	case element.IsBone():
		return element.Local, true
	case element.IsControl():
		return ControlValueToTransform(element.Control.Current)
	default:
		return mmath.NewTransform(), false
	}
}

// SetLocalTransform はローカルトランスフォームを設定する。
// コントロールの場合は型に合わせた値へ変換し、オイラー角は優先角に近いものを選ぶ。
func (h *Hierarchy) SetLocalTransform(key ElementKey, t mmath.Transform) bool {
	element, ok := h.Find(key)
	if !ok {
		return false
	}
	switch {
	case element.IsBone():
		element.Local = t
		return true
	case element.IsControl():
		value, ok := ControlValueFromTransform(element.Control.Settings.ControlType, t, element.Control.PreferredEuler)
		if !ok {
			return false
		}
		element.Control.Current = value
		if euler, ok := EulerOf(value); ok {
			element.Control.PreferredEuler = euler
		}
		return true
	default:
		return false
	}
}

// InitialLocalTransform は初期ローカルトランスフォームを返す。
func (h *Hierarchy) InitialLocalTransform(key ElementKey) (mmath.Transform, bool) {
	element, ok := h.Find(key)
	if !ok {
		return mmath.NewTransform(), false
	}
	switch {
	case element.IsBone():
		return element.InitialLocal, true
	case element.IsControl():
		return ControlValueToTransform(element.Control.Initial)
	default:
		return mmath.NewTransform(), false
	}
}

// SetInitialLocalTransform はボーンの初期ローカルトランスフォームを設定する。
func (h *Hierarchy) SetInitialLocalTransform(key ElementKey, t mmath.Transform) bool {
	element, ok := h.Find(key)
	if !ok || !element.IsBone() {
		return false
	}
	element.InitialLocal = t
	return true
}

// GlobalTransform は現在のグローバルトランスフォームを返す。
func (h *Hierarchy) GlobalTransform(key ElementKey) (mmath.Transform, bool) {
	element, ok := h.Find(key)
	if !ok {
		return mmath.NewTransform(), false
	}
	return h.globalOf(element, false), true
}

// InitialGlobalTransform は初期姿勢のグローバルトランスフォームを返す。
func (h *Hierarchy) InitialGlobalTransform(key ElementKey) (mmath.Transform, bool) {
	element, ok := h.Find(key)
	if !ok {
		return mmath.NewTransform(), false
	}
	return h.globalOf(element, true), true
}

// ParentGlobalTransform は親のグローバルトランスフォームを返す。ルートは恒等。
func (h *Hierarchy) ParentGlobalTransform(key ElementKey, initial bool) mmath.Transform {
	element, ok := h.Find(key)
	if !ok || element.ParentIndex < 0 {
		return mmath.NewTransform()
	}
	return h.globalOf(h.elements[element.ParentIndex], initial)
}

// globalOf は親を辿ってグローバルトランスフォームを計算する。
func (h *Hierarchy) globalOf(element *Element, initial bool) mmath.Transform {
	parentGlobal := mmath.NewTransform()
	if element.ParentIndex >= 0 {
		parentGlobal = h.globalOf(h.elements[element.ParentIndex], initial)
	}

	switch {
	case element.IsBone():
		local := element.Local
		if initial {
			local = element.InitialLocal
		}
		return local.Muled(parentGlobal)
	case element.IsControl():
		value := element.Control.Current
		if initial {
			value = element.Control.Initial
		}
		local, ok := ControlValueToTransform(value)
		if !ok {
			local = mmath.NewTransform()
		}
		if initial {
			return local.Muled(element.Control.Offset).Muled(parentGlobal)
		}
		switch element.Control.Space.SpaceType {
		case SPACE_TYPE_WORLD:
			return local
		case SPACE_TYPE_CONTROL_RIG:
			if spaceElement, ok := h.Find(element.Control.Space.ElementKey); ok && spaceElement != element {
				return local.Muled(h.globalOf(spaceElement, false))
			}
		}
		return local.Muled(element.Control.Offset).Muled(parentGlobal)
	default:
		return parentGlobal
	}
}

// CurveValue はカーブの現在値を返す。
func (h *Hierarchy) CurveValue(key ElementKey) (float64, bool) {
	element, ok := h.Find(key)
	if !ok || !element.IsCurve() {
		return 0, false
	}
	return element.CurveValue, true
}

// SetCurveValue はカーブの現在値を設定する。
func (h *Hierarchy) SetCurveValue(key ElementKey, value float64) bool {
	element, ok := h.Find(key)
	if !ok || !element.IsCurve() {
		return false
	}
	element.CurveValue = value
	return true
}

// ResetPoseToInitial は指定種別の要素を初期姿勢へ戻す。NONE を渡すと全種別を戻す。
func (h *Hierarchy) ResetPoseToInitial(elementType ElementType) {
	if h == nil {
		return
	}
	for _, element := range h.elements {
		if elementType != ELEMENT_TYPE_NONE && element.Key.Type != elementType {
			continue
		}
		switch {
		case element.IsBone():
			element.Local = element.InitialLocal
		case element.IsCurve():
			element.CurveValue = element.InitialCurveValue
		case element.IsControl():
			element.Control.Current = element.Control.Initial
		}
	}
}

// control はコントロール要素を返す。
func (h *Hierarchy) control(key ElementKey) (*Element, bool) {
	element, ok := h.Find(key)
	if !ok || !element.IsControl() {
		return nil, false
	}
	return element, true
}

// ControlValue はコントロールの現在値を返す。
func (h *Hierarchy) ControlValue(key ElementKey) (ControlValue, bool) {
	element, ok := h.control(key)
	if !ok {
		return nil, false
	}
	return element.Control.Current, true
}

// SetControlValue はコントロールの現在値を設定する。型が一致しない場合は状態を変えずにエラーを返す。
func (h *Hierarchy) SetControlValue(key ElementKey, value ControlValue) error {
	element, ok := h.control(key)
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrElementNotFound)
	}
	if err := checkControlValueType(element, value); err != nil {
		return err
	}
	element.Control.Current = value
	if euler, ok := EulerOf(value); ok {
		element.Control.PreferredEuler = euler
	}
	return nil
}

// InitialControlValue はコントロールの初期値を返す。
func (h *Hierarchy) InitialControlValue(key ElementKey) (ControlValue, bool) {
	element, ok := h.control(key)
	if !ok {
		return nil, false
	}
	return element.Control.Initial, true
}

// SetInitialControlValue はコントロールの初期値を設定する。
func (h *Hierarchy) SetInitialControlValue(key ElementKey, value ControlValue) error {
	element, ok := h.control(key)
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrElementNotFound)
	}
	if err := checkControlValueType(element, value); err != nil {
		return err
	}
	element.Control.Initial = value
	return nil
}

// checkControlValueType は値の型が設定と一致するか検証する。
func checkControlValueType(element *Element, value ControlValue) error {
	if value == nil || value.ControlType() != element.Control.Settings.ControlType {
		got := CONTROL_TYPE_UNSET
		if value != nil {
			got = value.ControlType()
		}
		return fmt.Errorf("%s: got=%s want=%s: %w", element.Key, got, element.Control.Settings.ControlType, ErrControlTypeMismatch)
	}
	return nil
}

// ControlSettings はコントロール設定を返す。
func (h *Hierarchy) ControlSettings(key ElementKey) (ControlSettings, bool) {
	element, ok := h.control(key)
	if !ok {
		return ControlSettings{}, false
	}
	return element.Control.Settings, true
}

// SetControlSettings はコントロール設定を置き換える。型が変わる場合は値を中立値へ戻す。
func (h *Hierarchy) SetControlSettings(key ElementKey, settings ControlSettings) bool {
	element, ok := h.control(key)
	if !ok {
		return false
	}
	if element.Control.Settings.ControlType != settings.ControlType {
		element.Control.Current = NeutralControlValue(settings.ControlType)
		element.Control.Initial = element.Control.Current
	}
	element.Control.Settings = settings
	return true
}

// ControlOffset はオフセットトランスフォームを返す。
func (h *Hierarchy) ControlOffset(key ElementKey) (mmath.Transform, bool) {
	element, ok := h.control(key)
	if !ok {
		return mmath.NewTransform(), false
	}
	return element.Control.Offset, true
}

// SetControlOffset はオフセットトランスフォームを設定する。
func (h *Hierarchy) SetControlOffset(key ElementKey, offset mmath.Transform) bool {
	element, ok := h.control(key)
	if !ok {
		return false
	}
	element.Control.Offset = offset
	return true
}

// IsControlActive はコントロールが有効か判定する。
func (h *Hierarchy) IsControlActive(key ElementKey) bool {
	element, ok := h.control(key)
	return ok && element.Control.Active
}

// SetControlActive はコントロールの有効状態を設定する。
func (h *Hierarchy) SetControlActive(key ElementKey, active bool) bool {
	element, ok := h.control(key)
	if !ok {
		return false
	}
	element.Control.Active = active
	return true
}

// ControlPreferredEuler はコントロールの優先オイラー角を返す。
func (h *Hierarchy) ControlPreferredEuler(key ElementKey) (mmath.Rotator, bool) {
	element, ok := h.control(key)
	if !ok {
		return mmath.Rotator{}, false
	}
	return element.Control.PreferredEuler, true
}

// SetControlPreferredEuler はコントロールの優先オイラー角を設定する。
func (h *Hierarchy) SetControlPreferredEuler(key ElementKey, euler mmath.Rotator) bool {
	element, ok := h.control(key)
	if !ok {
		return false
	}
	element.Control.PreferredEuler = euler
	return true
}

// ControlSpace はコントロールの評価空間を返す。
func (h *Hierarchy) ControlSpace(key ElementKey) (Space, bool) {
	element, ok := h.control(key)
	if !ok {
		return ParentSpace(), false
	}
	return element.Control.Space, true
}

// SetControlSpace はコントロールの評価空間を設定する。
func (h *Hierarchy) SetControlSpace(key ElementKey, space Space) bool {
	element, ok := h.control(key)
	if !ok {
		return false
	}
	if space.SpaceType == SPACE_TYPE_CONTROL_RIG && !h.Contains(space.ElementKey) {
		return false
	}
	element.Control.Space = space
	return true
}

// IsAnimatable はコントロールがキーを持てるか判定する。
func (h *Hierarchy) IsAnimatable(key ElementKey) bool {
	element, ok := h.control(key)
	return ok && element.Control.Settings.IsAnimatable()
}

// ShouldBeGrouped は子を持たないチャンネル型コントロールが、通常コントロールの親の下にあるか判定する。
func (h *Hierarchy) ShouldBeGrouped(key ElementKey) bool {
	element, ok := h.control(key)
	if !ok || !element.Control.Settings.ShouldBeGrouped() {
		return false
	}
	if len(element.Children) > 0 {
		return false
	}
	parent, ok := h.FirstParentControl(key)
	if !ok {
		return false
	}
	return parent.Control.Settings.AnimationType == ANIMATION_TYPE_CONTROL
}

// FirstParentControl は直接の親がコントロールであればそれを返す。
func (h *Hierarchy) FirstParentControl(key ElementKey) (*Element, bool) {
	element, ok := h.Find(key)
	if !ok || element.ParentIndex < 0 {
		return nil, false
	}
	parent := h.elements[element.ParentIndex]
	if !parent.IsControl() {
		return nil, false
	}
	return parent, true
}

// DisplayNameForUI は表示名を返す。未設定の場合は要素名を返す。
func (h *Hierarchy) DisplayNameForUI(key ElementKey) string {
	element, ok := h.Find(key)
	if !ok {
		return ""
	}
	if element.IsControl() && element.Control.Settings.DisplayName != "" {
		return element.Control.Settings.DisplayName
	}
	return element.Key.Name
}
