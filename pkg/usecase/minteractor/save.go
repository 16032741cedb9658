// 指示: miu200521358
package minteractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_fkrig/pkg/domain/section"
	"github.com/miu200521358/mu_fkrig/pkg/usecase/port/moutput"
)

// SaveTrack はトラックを保存する。
func (uc *FkRigUsecase) SaveTrack(rep moutput.ITrackWriter, path string, track *section.Track) error {
	writer := rep
	if writer == nil {
		writer = uc.trackWriter
	}
	if writer == nil {
		return fmt.Errorf("トラック保存リポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("保存先パスが未指定です")
	}
	if track == nil {
		return fmt.Errorf("保存対象トラックが未設定です")
	}
	if err := createOutputDir(path); err != nil {
		return err
	}
	return writer.WriteTrack(path, track)
}

// BakeClip はクリップをスケルトンのコントロールへベイクし、トラックとして保存する。
// 中断された場合は保存せずに途中までの結果を返す。
func (uc *FkRigUsecase) BakeClip(ctx context.Context, request BakeClipRequest) (*BakeClipResult, error) {
	outputPath, err := resolveTrackOutputPath(request.ClipPath, request.OutputPath)
	if err != nil {
		return nil, err
	}
	prepared, err := uc.PrepareRig(request)
	if err != nil {
		return nil, err
	}

	bake, err := uc.LoadAnimSequence(ctx, BakeRequest{
		Rig:              prepared.Rig,
		Section:          prepared.Section,
		Source:           prepared.Source,
		Settings:         request.Settings,
		ProgressReporter: request.ProgressReporter,
	})
	result := &BakeClipResult{Rig: prepared.Rig, Track: prepared.Track, Bake: bake, OutputPath: outputPath}
	if err != nil {
		return result, err
	}
	if err := uc.SaveTrack(request.TrackWriter, outputPath, prepared.Track); err != nil {
		return result, err
	}
	return result, nil
}

// resolveTrackOutputPath はトラック保存先パスを解決し、拡張子を検証する。
func resolveTrackOutputPath(inputPath string, outputPath string) (string, error) {
	resolved := strings.TrimSpace(outputPath)
	if resolved == "" {
		resolved = BuildDefaultOutputPath(inputPath)
	}
	if strings.TrimSpace(resolved) == "" {
		return "", fmt.Errorf("保存先トラックパスが未指定です")
	}
	if !strings.EqualFold(filepath.Ext(resolved), trackFileExt) {
		return "", fmt.Errorf("保存先拡張子が %s ではありません: %s", trackFileExt, resolved)
	}
	return resolved, nil
}
