// 指示: miu200521358
// Package clipjson は JSON 形式のクリップ(姿勢サンプル列)とトラックの入出力を提供する。
package clipjson

import (
	"fmt"

	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
)

// ClipFrame は1サンプル分のボーンのローカルトランスフォームとカーブ値を表す。
type ClipFrame struct {
	Bones  map[string]mmath.Transform
	Curves map[string]float64
}

// NewClipFrame は空のサンプルを生成する。
func NewClipFrame() ClipFrame {
	return ClipFrame{Bones: map[string]mmath.Transform{}, Curves: map[string]float64{}}
}

// Clip はサンプル列を先頭から順に評価する姿勢元。
type Clip struct {
	Name   string
	Frames []ClipFrame
	index  int
}

// NewClip は空のクリップを生成する。
func NewClip(name string) *Clip {
	return &Clip{Name: name}
}

// AddFrame はサンプルを末尾へ追加する。
func (c *Clip) AddFrame(frame ClipFrame) {
	c.Frames = append(c.Frames, frame)
}

// NumSamples はサンプル数を返す。
func (c *Clip) NumSamples() int {
	if c == nil {
		return 0
	}
	return len(c.Frames)
}

// SetSampleIndex は評価位置を設定する。
func (c *Clip) SetSampleIndex(index int) error {
	if index < 0 || index >= c.NumSamples() {
		return fmt.Errorf("サンプル位置が範囲外です: index=%d samples=%d", index, c.NumSamples())
	}
	c.index = index
	return nil
}

// BoneLocalTransform は評価位置でのボーンのローカルトランスフォームを返す。
func (c *Clip) BoneLocalTransform(boneName string) (mmath.Transform, bool) {
	if c.NumSamples() == 0 {
		return mmath.NewTransform(), false
	}
	local, ok := c.Frames[c.index].Bones[boneName]
	return local, ok
}

// CurveValue は評価位置でのカーブ値を返す。
func (c *Clip) CurveValue(curveName string) (float64, bool) {
	if c.NumSamples() == 0 {
		return 0, false
	}
	value, ok := c.Frames[c.index].Curves[curveName]
	return value, ok
}
