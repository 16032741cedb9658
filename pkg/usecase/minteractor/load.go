// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_fkrig/pkg/domain/fkrig"
	"github.com/miu200521358/mu_fkrig/pkg/usecase/port/moutput"
)

// LoadSkeleton はスケルトンを読み込む。
func (uc *FkRigUsecase) LoadSkeleton(rep moutput.ISkeletonReader, path string) (*fkrig.Skeleton, error) {
	repo := rep
	if repo == nil {
		repo = uc.skeletonReader
	}
	if repo == nil {
		return nil, fmt.Errorf("スケルトン読み込みリポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("スケルトンパスが未指定です")
	}
	if !repo.CanLoad(path) {
		return nil, fmt.Errorf("スケルトンとして読み込めない拡張子です: %s", path)
	}
	skeleton, err := repo.ReadSkeleton(path)
	if err != nil {
		return nil, err
	}
	if skeleton == nil {
		return nil, fmt.Errorf("スケルトン読み込み結果が空です")
	}
	return skeleton, nil
}

// LoadClip はクリップを読み込む。
func (uc *FkRigUsecase) LoadClip(rep moutput.IClipReader, path string) (moutput.ISampledPoseSource, error) {
	repo := rep
	if repo == nil {
		repo = uc.clipReader
	}
	if repo == nil {
		return nil, fmt.Errorf("クリップ読み込みリポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("クリップパスが未指定です")
	}
	if !repo.CanLoad(path) {
		return nil, fmt.Errorf("クリップとして読み込めない拡張子です: %s", path)
	}
	source, err := repo.ReadClip(path)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("クリップ読み込み結果が空です")
	}
	return source, nil
}
