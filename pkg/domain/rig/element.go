// 指示: miu200521358
// Package rig はボーン・カーブ・コントロールからなるリグ階層を提供する。
package rig

import (
	"errors"
	"fmt"

	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
)

var (
	// ErrElementNotFound は要素が見つからないことを表す。
	ErrElementNotFound = errors.New("リグ要素が見つかりません")
	// ErrElementExists は同じキーの要素が既に存在することを表す。
	ErrElementExists = errors.New("リグ要素が既に存在します")
	// ErrCycle は親子関係が循環することを表す。
	ErrCycle = errors.New("リグ階層の親子関係が循環しています")
	// ErrControlTypeMismatch はコントロール値の型が設定と一致しないことを表す。
	ErrControlTypeMismatch = errors.New("コントロール値の型が設定と一致しません")
)

// ElementType はリグ要素の種別を表す。
type ElementType int

const (
	// ELEMENT_TYPE_NONE は未指定。
	ELEMENT_TYPE_NONE ElementType = iota
	// ELEMENT_TYPE_BONE はボーン。
	ELEMENT_TYPE_BONE
	// ELEMENT_TYPE_CURVE はカーブ。
	ELEMENT_TYPE_CURVE
	// ELEMENT_TYPE_CONTROL はコントロール。
	ELEMENT_TYPE_CONTROL
)

// String は種別名を返す。
func (t ElementType) String() string {
	switch t {
	case ELEMENT_TYPE_BONE:
		return "Bone"
	case ELEMENT_TYPE_CURVE:
		return "Curve"
	case ELEMENT_TYPE_CONTROL:
		return "Control"
	default:
		return "None"
	}
}

// ElementKey はリグ要素の識別子(名前と種別)を表す。
type ElementKey struct {
	Name string
	Type ElementType
}

// NewBoneKey はボーンのキーを生成する。
func NewBoneKey(name string) ElementKey {
	return ElementKey{Name: name, Type: ELEMENT_TYPE_BONE}
}

// NewCurveKey はカーブのキーを生成する。
func NewCurveKey(name string) ElementKey {
	return ElementKey{Name: name, Type: ELEMENT_TYPE_CURVE}
}

// NewControlKey はコントロールのキーを生成する。
func NewControlKey(name string) ElementKey {
	return ElementKey{Name: name, Type: ELEMENT_TYPE_CONTROL}
}

// IsValid は名前と種別が設定されているか判定する。
func (k ElementKey) IsValid() bool {
	return k.Name != "" && k.Type != ELEMENT_TYPE_NONE
}

// String は表示用文字列を返す。
func (k ElementKey) String() string {
	return fmt.Sprintf("%s(%s)", k.Name, k.Type)
}

// ControlElementData はコントロール固有のデータを表す。
type ControlElementData struct {
	Settings       ControlSettings
	Offset         mmath.Transform
	Current        ControlValue
	Initial        ControlValue
	Active         bool
	PreferredEuler mmath.Rotator
	Space          Space
}

// Element はリグ階層の要素を表す。
type Element struct {
	Key         ElementKey
	Index       int
	ParentIndex int
	Children    []int

	// ボーン用
	Local        mmath.Transform
	InitialLocal mmath.Transform

	// カーブ用
	CurveValue        float64
	InitialCurveValue float64

	// コントロール用
	Control *ControlElementData
}

// IsBone はボーンか判定する。
func (e *Element) IsBone() bool {
	return e != nil && e.Key.Type == ELEMENT_TYPE_BONE
}

// IsCurve はカーブか判定する。
func (e *Element) IsCurve() bool {
	return e != nil && e.Key.Type == ELEMENT_TYPE_CURVE
}

// IsControl はコントロールか判定する。
func (e *Element) IsControl() bool {
	return e != nil && e.Key.Type == ELEMENT_TYPE_CONTROL && e.Control != nil
}
