// 指示: miu200521358
package minteractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_fkrig/pkg/domain/fkrig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/section"
	"github.com/miu200521358/mu_fkrig/pkg/usecase/port/moutput"
)

// PreparedRig はベイク前に準備したリグ・トラック・姿勢元を表す。
type PreparedRig struct {
	Rig     *fkrig.FKControlRig
	Track   *section.Track
	Section *section.Section
	Source  moutput.ISampledPoseSource
}

// PrepareRig はスケルトンとクリップを読み込み、コントロールを生成したリグと空のセクションを準備する。
// トラック本体は保存しない。
func (uc *FkRigUsecase) PrepareRig(request BakeClipRequest) (*PreparedRig, error) {
	if strings.TrimSpace(request.SkeletonPath) == "" {
		return nil, fmt.Errorf("入力スケルトンパスが未指定です")
	}
	if strings.TrimSpace(request.ClipPath) == "" {
		return nil, fmt.Errorf("入力クリップパスが未指定です")
	}

	skeleton, err := uc.LoadSkeleton(request.SkeletonReader, request.SkeletonPath)
	if err != nil {
		return nil, err
	}
	r := fkrig.NewFKControlRig(fkrig.WithApplyMode(request.ApplyMode))
	if err := r.ImportSkeleton(skeleton); err != nil {
		return nil, fmt.Errorf("スケルトンの取り込みに失敗しました: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(request.ClipPath), filepath.Ext(request.ClipPath))
	s := section.NewSection(name, section.BLEND_TYPE_ABSOLUTE)
	s.RecreateWithHierarchy(r.Hierarchy(), true)
	track := section.NewTrack(skeleton.Name)
	track.AddSection(s)

	source, err := uc.LoadClip(request.ClipReader, request.ClipPath)
	if err != nil {
		return nil, err
	}
	logBakeInfo("リグを準備しました: skeleton=%s bones=%d curves=%d clip=%s samples=%d",
		skeleton.Name, len(skeleton.Bones), len(skeleton.Curves), name, source.NumSamples())
	return &PreparedRig{Rig: r, Track: track, Section: s, Source: source}, nil
}
