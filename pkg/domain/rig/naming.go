// 指示: miu200521358
package rig

import (
	"strings"

	"github.com/miu200521358/mu_fkrig/pkg/domain/model"
	"github.com/miu200521358/mu_fkrig/pkg/shared/base/logging"
)

const (
	// ControlSuffix はボーン用コントロール名の接尾辞。
	ControlSuffix = "_CONTROL"
	// CurveControlSuffix はカーブ用コントロール名の接尾辞。
	CurveControlSuffix = "_CURVE_CONTROL"
)

// NameCache はボーン・カーブ名からコントロール名への変換結果を保持する。
// ロックを持たないため、ワーカーごとに1つ生成して使う。
type NameCache struct {
	boneControlNames  map[string]string
	curveControlNames map[string]string
}

// NewNameCache は空のキャッシュを生成する。
func NewNameCache() *NameCache {
	return &NameCache{
		boneControlNames:  map[string]string{},
		curveControlNames: map[string]string{},
	}
}

// ControlNameFor は要素名に対応するコントロール名を返す。
// キャッシュは追記のみで、セッション中に無効化しない。nil レシーバでも計算だけ行う。
func (c *NameCache) ControlNameFor(elementName string, elementType ElementType) string {
	if elementName == "" {
		return ""
	}
	switch elementType {
	case ELEMENT_TYPE_BONE:
		return c.cached(c.boneTable(), elementName, ControlSuffix)
	case ELEMENT_TYPE_CURVE:
		return c.cached(c.curveTable(), elementName, CurveControlSuffix)
	case ELEMENT_TYPE_CONTROL:
		if !strings.HasSuffix(elementName, ControlSuffix) {
			logNamingDebug("%s: control=%s", model.FkRigWarningControlSuffixMissing, elementName)
		}
		return elementName
	default:
		return ""
	}
}

// TargetNameForControl はコントロール名から元の要素名を返す。接尾辞が無い場合は名前全体を返す。
func (c *NameCache) TargetNameForControl(controlName string, elementType ElementType) string {
	if controlName == "" {
		return ""
	}
	switch elementType {
	case ELEMENT_TYPE_BONE:
		return trimNameSuffix(controlName, ControlSuffix)
	case ELEMENT_TYPE_CURVE:
		return trimNameSuffix(controlName, CurveControlSuffix)
	case ELEMENT_TYPE_CONTROL:
		return controlName
	default:
		return ""
	}
}

// Len はキャッシュ済みの件数を返す。
func (c *NameCache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.boneControlNames) + len(c.curveControlNames)
}

// boneTable はボーン用テーブルを返す。
func (c *NameCache) boneTable() map[string]string {
	if c == nil {
		return nil
	}
	return c.boneControlNames
}

// curveTable はカーブ用テーブルを返す。
func (c *NameCache) curveTable() map[string]string {
	if c == nil {
		return nil
	}
	return c.curveControlNames
}

// cached はテーブルを引き、無ければ生成して追記する。
func (c *NameCache) cached(table map[string]string, name string, suffix string) string {
	if table == nil {
		return name + suffix
	}
	if controlName, ok := table[name]; ok {
		return controlName
	}
	controlName := name + suffix
	table[name] = controlName
	return controlName
}

// trimNameSuffix は最後に現れる接尾辞より前を返す。
func trimNameSuffix(name string, suffix string) string {
	index := strings.LastIndex(name, suffix)
	if index < 0 {
		return name
	}
	return name[:index]
}

// logNamingDebug は命名のデバッグログを出力する。
func logNamingDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}
