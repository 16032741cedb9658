// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_fkrig/pkg/usecase/port/moutput"

// FkRigUsecaseDeps はFKリグのベイクユースケースの依存を表す。
type FkRigUsecaseDeps struct {
	SkeletonReader moutput.ISkeletonReader
	ClipReader     moutput.IClipReader
	TrackWriter    moutput.ITrackWriter
}

// FkRigUsecase はスケルトン読み込みからベイク・レイヤー統合・保存までをまとめたユースケースを表す。
type FkRigUsecase struct {
	skeletonReader moutput.ISkeletonReader
	clipReader     moutput.IClipReader
	trackWriter    moutput.ITrackWriter
}

// NewFkRigUsecase はFKリグのユースケースを生成する。
func NewFkRigUsecase(deps FkRigUsecaseDeps) *FkRigUsecase {
	return &FkRigUsecase{
		skeletonReader: deps.SkeletonReader,
		clipReader:     deps.ClipReader,
		trackWriter:    deps.TrackWriter,
	}
}
