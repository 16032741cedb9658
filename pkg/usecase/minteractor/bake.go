// 指示: miu200521358
package minteractor

import (
	"context"
	"fmt"
	"slices"

	"github.com/miu200521358/mu_fkrig/pkg/domain/channel"
	"github.com/miu200521358/mu_fkrig/pkg/domain/fkrig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/model"
	"github.com/miu200521358/mu_fkrig/pkg/domain/rig"
	"github.com/miu200521358/mu_fkrig/pkg/shared/base/logging"
	"github.com/miu200521358/mu_fkrig/pkg/usecase/port/moutput"
)

// LoadAnimSequence は姿勢元のサンプルを順に進めて逆伝播し、コントロール値をセクションへ記録する。
// 中断の確認はフレームごとに1回行う。中断時は記録済みのキーを残したまま ErrBakeCancelled を返す。
func (uc *FkRigUsecase) LoadAnimSequence(ctx context.Context, request BakeRequest) (*BakeResult, error) {
	if request.Rig == nil {
		return nil, fmt.Errorf("ベイク対象リグが未設定です")
	}
	if request.Section == nil {
		return nil, fmt.Errorf("ベイク先セクションが未設定です")
	}
	if request.Source == nil {
		return nil, fmt.Errorf("姿勢元が未設定です")
	}

	settings := request.Settings.normalized()
	r := request.Rig
	h := r.Hierarchy()
	s := request.Section
	source := request.Source
	total := source.NumSamples()
	warnings := newWarningSet()
	result := &BakeResult{}

	s.UpdateChannelProxy(h)
	reportBakeProgress(request.ProgressReporter, BakeProgressEvent{Type: BakeProgressEventTypeStarted, Total: total})
	logBakeInfo("ベイクを開始します: section=%s samples=%d start=%d interval=%d", s.Name, total, settings.Start, settings.Interval)

	for index := 0; index < total; index++ {
		if err := ctx.Err(); err != nil {
			warnings.add(model.FkRigWarningBakeCancelled)
			result.Warnings = warnings.ids()
			reportBakeProgress(request.ProgressReporter, BakeProgressEvent{
				Type: BakeProgressEventTypeCancelled, Index: index, Total: total, Keys: result.Keys,
			})
			logBakeInfo("%s: section=%s frames=%d keys=%d", model.FkRigWarningBakeCancelled, s.Name, result.Frames, result.Keys)
			return result, fmt.Errorf("%w: %w", ErrBakeCancelled, err)
		}
		if err := source.SetSampleIndex(index); err != nil {
			result.Warnings = warnings.ids()
			return result, fmt.Errorf("サンプル位置の設定に失敗しました: index=%d: %w", index, err)
		}
		if settings.ResetPose {
			h.ResetPoseToInitial(rig.ELEMENT_TYPE_BONE)
			h.ResetPoseToInitial(rig.ELEMENT_TYPE_CURVE)
		}
		applyPoseSource(h, source, warnings)

		r.Execute(fkrig.EVENT_INVERSE)
		if index == 0 {
			// 初回は優先オイラー角が初期値のままなので、もう一度評価して角度を揃える。
			r.Execute(fkrig.EVENT_INVERSE)
		}

		frame := settings.Start + channel.Frame(index*settings.Interval)
		result.Keys += RecordControlRigKey(s, r, frame, index == 0, settings.Interpolation)
		result.Frames++
		reportBakeProgress(request.ProgressReporter, BakeProgressEvent{
			Type: BakeProgressEventTypeFrameRecorded, Frame: frame, Index: index, Total: total, Keys: result.Keys,
		})
	}

	if settings.Reduce {
		result.ReducedKeys = reduceSectionChannels(s, settings.Tolerance, nil)
		reportBakeProgress(request.ProgressReporter, BakeProgressEvent{
			Type: BakeProgressEventTypeReduced, Total: total, Keys: result.ReducedKeys,
		})
	}

	result.Completed = true
	result.Warnings = warnings.ids()
	reportBakeProgress(request.ProgressReporter, BakeProgressEvent{
		Type: BakeProgressEventTypeCompleted, Total: total, Keys: result.Keys,
	})
	logBakeInfo("ベイクが完了しました: section=%s frames=%d keys=%d reduced=%d", s.Name, result.Frames, result.Keys, result.ReducedKeys)
	return result, nil
}

// applyPoseSource は姿勢元のボーン・カーブ値を階層へ書き込む。姿勢元に無い要素は現在値のまま残す。
func applyPoseSource(h *rig.Hierarchy, source moutput.IPoseSource, warnings *warningSet) {
	for _, bone := range h.Bones() {
		local, ok := source.BoneLocalTransform(bone.Key.Name)
		if !ok {
			warnings.add(model.FkRigWarningPoseBoneMissing)
			logBakeDebug("%s: bone=%s", model.FkRigWarningPoseBoneMissing, bone.Key.Name)
			continue
		}
		h.SetLocalTransform(bone.Key, local)
	}
	for _, curve := range h.Curves() {
		value, ok := source.CurveValue(curve.Key.Name)
		if !ok {
			warnings.add(model.FkRigWarningPoseCurveMissing)
			logBakeDebug("%s: curve=%s", model.FkRigWarningPoseCurveMissing, curve.Key.Name)
			continue
		}
		h.SetCurveValue(curve.Key, value)
	}
}

// warningSet は発生した警告IDを発生順に重複なく保持する。
type warningSet struct {
	values []string
}

func newWarningSet() *warningSet {
	return &warningSet{}
}

func (w *warningSet) add(id string) {
	if slices.Contains(w.values, id) {
		return
	}
	w.values = append(w.values, id)
}

func (w *warningSet) ids() []string {
	return slices.Clone(w.values)
}

// logBakeInfo はベイク処理の情報ログを出力する。
func logBakeInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logBakeDebug はベイク処理のデバッグログを出力する。
func logBakeDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}
