// 指示: miu200521358
package rig

// SpaceType はコントロールの評価親の種別を表す。
type SpaceType int

const (
	// SPACE_TYPE_PARENT は階層上の親(既定)。
	SPACE_TYPE_PARENT SpaceType = iota
	// SPACE_TYPE_WORLD はワールド。
	SPACE_TYPE_WORLD
	// SPACE_TYPE_CONTROL_RIG はリグ内の別要素。
	SPACE_TYPE_CONTROL_RIG
)

// Space はコントロールの評価親を表す。
type Space struct {
	SpaceType  SpaceType
	ElementKey ElementKey
}

// ParentSpace は既定の親空間を返す。
func ParentSpace() Space {
	return Space{SpaceType: SPACE_TYPE_PARENT}
}

// WorldSpace はワールド空間を返す。
func WorldSpace() Space {
	return Space{SpaceType: SPACE_TYPE_WORLD}
}

// ElementSpace は指定要素を親とする空間を返す。
func ElementSpace(key ElementKey) Space {
	return Space{SpaceType: SPACE_TYPE_CONTROL_RIG, ElementKey: key}
}

// Equals は同じ空間か判定する。
func (s Space) Equals(other Space) bool {
	if s.SpaceType != other.SpaceType {
		return false
	}
	if s.SpaceType != SPACE_TYPE_CONTROL_RIG {
		return true
	}
	return s.ElementKey == other.ElementKey
}
