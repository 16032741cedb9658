// 指示: miu200521358
package moutput

import (
	"github.com/miu200521358/mu_fkrig/pkg/domain/fkrig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
	"github.com/miu200521358/mu_fkrig/pkg/domain/section"
)

// IPoseSource はリグへ与える外部の姿勢の評価元を表す。
type IPoseSource interface {
	// BoneLocalTransform は現在の評価時刻でのボーンのローカルトランスフォームを返す。
	BoneLocalTransform(boneName string) (mmath.Transform, bool)
	// CurveValue は現在の評価時刻でのカーブ値を返す。
	CurveValue(curveName string) (float64, bool)
}

// ISampledPoseSource はサンプル列を持つ姿勢の評価元を表す。
type ISampledPoseSource interface {
	IPoseSource
	// NumSamples はサンプル数を返す。
	NumSamples() int
	// SetSampleIndex は評価時刻をサンプル位置へ進める。
	SetSampleIndex(index int) error
}

// ISkeletonReader はスケルトンの読み込み契約を表す。
type ISkeletonReader interface {
	// CanLoad は読み込み可能なパスか判定する。
	CanLoad(path string) bool
	// ReadSkeleton はパスからスケルトンを読み込む。
	ReadSkeleton(path string) (*fkrig.Skeleton, error)
}

// IClipReader はクリップの読み込み契約を表す。
type IClipReader interface {
	// CanLoad は読み込み可能なパスか判定する。
	CanLoad(path string) bool
	// ReadClip はパスからサンプル列の姿勢元を読み込む。
	ReadClip(path string) (ISampledPoseSource, error)
}

// ITrackWriter はトラックの保存契約を表す。
type ITrackWriter interface {
	// WriteTrack はトラックをパスへ保存する。
	WriteTrack(path string, track *section.Track) error
}
