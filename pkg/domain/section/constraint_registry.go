// 指示: miu200521358
package section

import (
	"github.com/google/uuid"
)

// Constraint はコントロールに付くトランスフォームコンストレイントを表す。
type Constraint struct {
	ID          uuid.UUID
	Name        string
	ControlName string
}

// ConstraintEvent はコンストレイントの変更種別を表す。
type ConstraintEvent int

const (
	// CONSTRAINT_EVENT_ADDED は追加。
	CONSTRAINT_EVENT_ADDED ConstraintEvent = iota
	// CONSTRAINT_EVENT_REMOVED は削除。
	CONSTRAINT_EVENT_REMOVED
)

// IConstraintListener はコンストレイントの変更通知を受け取る。
type IConstraintListener interface {
	OnConstraintChanged(event ConstraintEvent, constraint Constraint)
}

// IConstraintRegistry はコントロールごとのコンストレイントを提供する。
type IConstraintRegistry interface {
	ConstraintsFor(controlName string) []Constraint
	Subscribe(listener IConstraintListener)
	Unsubscribe(listener IConstraintListener)
}

// ConstraintRegistry はメモリ上のコンストレイント一覧。
type ConstraintRegistry struct {
	constraints []Constraint
	listeners   []IConstraintListener
}

// NewConstraintRegistry は空の一覧を生成する。
func NewConstraintRegistry() *ConstraintRegistry {
	return &ConstraintRegistry{}
}

// AddConstraint はコンストレイントを追加して購読者へ通知する。
func (r *ConstraintRegistry) AddConstraint(name, controlName string) Constraint {
	constraint := Constraint{ID: uuid.New(), Name: name, ControlName: controlName}
	r.constraints = append(r.constraints, constraint)
	r.notify(CONSTRAINT_EVENT_ADDED, constraint)
	return constraint
}

// RemoveConstraint はコンストレイントを削除して購読者へ通知する。
func (r *ConstraintRegistry) RemoveConstraint(id uuid.UUID) bool {
	for i, constraint := range r.constraints {
		if constraint.ID != id {
			continue
		}
		r.constraints = append(r.constraints[:i], r.constraints[i+1:]...)
		r.notify(CONSTRAINT_EVENT_REMOVED, constraint)
		return true
	}
	return false
}

// ConstraintsFor はコントロールのコンストレイントを登録順に返す。
func (r *ConstraintRegistry) ConstraintsFor(controlName string) []Constraint {
	constraints := make([]Constraint, 0)
	for _, constraint := range r.constraints {
		if constraint.ControlName == controlName {
			constraints = append(constraints, constraint)
		}
	}
	return constraints
}

// Subscribe は購読者を登録する。
func (r *ConstraintRegistry) Subscribe(listener IConstraintListener) {
	if listener == nil {
		return
	}
	for _, existing := range r.listeners {
		if existing == listener {
			return
		}
	}
	r.listeners = append(r.listeners, listener)
}

// Unsubscribe は購読者を外す。
func (r *ConstraintRegistry) Unsubscribe(listener IConstraintListener) {
	for i, existing := range r.listeners {
		if existing == listener {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

func (r *ConstraintRegistry) notify(event ConstraintEvent, constraint Constraint) {
	for _, listener := range r.listeners {
		listener.OnConstraintChanged(event, constraint)
	}
}

// SyncConstraints は登録済みコンストレイントの有効チャンネルをセクションへ揃える。
func (s *Section) SyncConstraints(registry IConstraintRegistry, controlNames []string) {
	changed := false
	for _, controlName := range controlNames {
		for _, constraint := range registry.ConstraintsFor(controlName) {
			if s.addConstraintChannel(constraint) {
				changed = true
			}
		}
	}
	if changed {
		s.proxyDirty = true
	}
}

// OnConstraintChanged はコンストレイントの追加・削除に合わせて有効チャンネルを増減する。
// 対応表は構成比較によらず作り直しが必要になる。
func (s *Section) OnConstraintChanged(event ConstraintEvent, constraint Constraint) {
	var changed bool
	switch event {
	case CONSTRAINT_EVENT_ADDED:
		changed = s.addConstraintChannel(constraint)
	case CONSTRAINT_EVENT_REMOVED:
		changed = s.removeConstraintChannel(constraint.ID)
	}
	if changed {
		s.proxyDirty = true
	}
}
