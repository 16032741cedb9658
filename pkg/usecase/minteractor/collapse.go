// 指示: miu200521358
package minteractor

import (
	"context"
	"fmt"

	"github.com/miu200521358/mu_fkrig/pkg/domain/channel"
	"github.com/miu200521358/mu_fkrig/pkg/domain/fkrig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
	"github.com/miu200521358/mu_fkrig/pkg/domain/model"
	"github.com/miu200521358/mu_fkrig/pkg/domain/rig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/section"
)

// collapseSample は1フレーム分のレイヤー合成結果を表す。
type collapseSample struct {
	frame    channel.Frame
	controls []collapseControlSample
}

// collapseControlSample はコントロール1つ分の合成値と優先オイラー角を表す。
type collapseControlSample struct {
	key   rig.ElementKey
	value rig.ControlValue
	euler mmath.Rotator
}

// CollapseAllLayers はトラックの全レイヤーの合成結果を先頭の絶対値セクションへ焼き込み、他のレイヤーを削除する。
// 書き換えはトランザクション内で行い、記録中に中断された場合は開始時のセクションへ戻す。
func (uc *FkRigUsecase) CollapseAllLayers(ctx context.Context, request CollapseRequest) (*CollapseResult, error) {
	if request.Rig == nil {
		return nil, fmt.Errorf("統合対象リグが未設定です")
	}
	if request.Track == nil {
		return nil, fmt.Errorf("統合対象トラックが未設定です")
	}
	base, err := request.Track.BaseSection()
	if err != nil {
		return nil, err
	}
	settings := request.Settings.normalized()
	if settings.End < settings.Start {
		return nil, fmt.Errorf("統合範囲が不正です: start=%d end=%d", settings.Start, settings.End)
	}

	r := request.Rig
	h := r.Hierarchy()
	track := request.Track
	total := int(settings.End-settings.Start)/settings.FrameIncrement + 1
	result := &CollapseResult{}
	reportBakeProgress(request.ProgressReporter, BakeProgressEvent{Type: BakeProgressEventTypeStarted, Total: total})

	samples := make([]collapseSample, 0, total)
	for frame := settings.Start; frame <= settings.End; frame += channel.Frame(settings.FrameIncrement) {
		if err := ctx.Err(); err != nil {
			result.Warnings = []string{model.FkRigWarningBakeCancelled}
			reportBakeProgress(request.ProgressReporter, BakeProgressEvent{Type: BakeProgressEventTypeCancelled, Frame: frame, Total: total})
			return result, fmt.Errorf("%w: %w", ErrBakeCancelled, err)
		}
		track.Evaluate(h, frame)
		r.Execute(fkrig.EVENT_FORWARD)
		samples = append(samples, captureCollapseSample(h, frame))
		reportBakeProgress(request.ProgressReporter, BakeProgressEvent{
			Type: BakeProgressEventTypeFrameSampled, Frame: frame, Index: len(samples) - 1, Total: total,
		})
	}

	tx, err := section.BeginTrackTransaction(track)
	if err != nil {
		return result, err
	}
	result.RemovedSections = len(track.Sections) - 1
	track.Sections = []*section.Section{base}
	base.DeleteAllKeys()
	if base.Weight != nil {
		base.Weight.DeleteAllKeys()
		base.Weight.SetDefault(1)
	}
	reportBakeProgress(request.ProgressReporter, BakeProgressEvent{Type: BakeProgressEventTypeLayersRemoved, Total: total})

	for index, sample := range samples {
		if err := ctx.Err(); err != nil {
			tx.Cancel()
			result.RemovedSections = 0
			result.Warnings = []string{model.FkRigWarningCollapseRolledBack}
			reportBakeProgress(request.ProgressReporter, BakeProgressEvent{
				Type: BakeProgressEventTypeCancelled, Frame: sample.frame, Index: index, Total: total, Keys: result.Keys,
			})
			logBakeInfo("%s: track=%s frame=%d", model.FkRigWarningCollapseRolledBack, track.Name, sample.frame)
			return result, fmt.Errorf("%w: %w", ErrBakeCancelled, err)
		}
		sample.apply(r)
		result.Keys += RecordControlRigKey(base, r, sample.frame, index == 0, settings.Interpolation)
		result.Frames++
		reportBakeProgress(request.ProgressReporter, BakeProgressEvent{
			Type: BakeProgressEventTypeFrameRecorded, Frame: sample.frame, Index: index, Total: total, Keys: result.Keys,
		})
	}

	if settings.Reduce {
		result.ReducedKeys = reduceSectionChannels(base, settings.Tolerance, &channel.FrameRange{Start: settings.Start, End: settings.End})
		reportBakeProgress(request.ProgressReporter, BakeProgressEvent{Type: BakeProgressEventTypeReduced, Total: total, Keys: result.ReducedKeys})
	}
	tx.Commit()

	result.Completed = true
	reportBakeProgress(request.ProgressReporter, BakeProgressEvent{Type: BakeProgressEventTypeCompleted, Total: total, Keys: result.Keys})
	logBakeInfo("レイヤーを統合しました: track=%s frames=%d removed=%d keys=%d", track.Name, result.Frames, result.RemovedSections, result.Keys)
	return result, nil
}

// captureCollapseSample はアニメーション可能なコントロールの現在値を取得する。
func captureCollapseSample(h *rig.Hierarchy, frame channel.Frame) collapseSample {
	sample := collapseSample{frame: frame}
	for _, control := range h.ControlsInOrder() {
		if !h.IsAnimatable(control.Key) || control.Control.Current == nil {
			continue
		}
		euler := control.Control.PreferredEuler
		if current, ok := rig.EulerOf(control.Control.Current); ok {
			euler = current
		}
		sample.controls = append(sample.controls, collapseControlSample{
			key:   control.Key,
			value: control.Control.Current,
			euler: euler,
		})
	}
	return sample
}

// apply は取得した値をコントロールへ戻す。この書き込みはキーを記録しない。
func (s collapseSample) apply(r *fkrig.FKControlRig) {
	h := r.Hierarchy()
	for _, control := range s.controls {
		if err := r.SetControlValue(control.key, control.value, fkrig.SET_KEY_NEVER); err != nil {
			logBakeDebug("%s: control=%s err=%v", model.FkRigWarningControlTypeMismatch, control.key.Name, err)
			continue
		}
		h.SetControlPreferredEuler(control.key, control.euler)
	}
}
