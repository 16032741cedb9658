// 指示: miu200521358
package minteractor

import (
	"errors"

	"github.com/miu200521358/mu_fkrig/pkg/domain/channel"
	"github.com/miu200521358/mu_fkrig/pkg/domain/fkrig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/section"
	"github.com/miu200521358/mu_fkrig/pkg/usecase/port/moutput"
)

// ErrBakeCancelled はベイク・レイヤー統合が中断されたことを表す。
var ErrBakeCancelled = errors.New("ベイクが中断されました")

// BakeSettings は範囲ベイクの設定を表す。
type BakeSettings struct {
	Start         channel.Frame
	Interval      int
	Interpolation channel.Interpolation
	Reduce        bool
	Tolerance     float64
	ResetPose     bool
}

// normalized は未指定の値を既定値で補う。
func (s BakeSettings) normalized() BakeSettings {
	if s.Interval <= 0 {
		s.Interval = 1
	}
	if s.Tolerance < 0 {
		s.Tolerance = 0
	}
	return s
}

// CollapseSettings はレイヤー統合の設定を表す。
type CollapseSettings struct {
	Start          channel.Frame
	End            channel.Frame
	FrameIncrement int
	Interpolation  channel.Interpolation
	Reduce         bool
	Tolerance      float64
}

// normalized は未指定の値を既定値で補う。
func (s CollapseSettings) normalized() CollapseSettings {
	if s.FrameIncrement <= 0 {
		s.FrameIncrement = 1
	}
	if s.Tolerance < 0 {
		s.Tolerance = 0
	}
	return s
}

// OptimizeSettings はキー削減の設定を表す。Range が nil ならカーブ全体を対象にする。
type OptimizeSettings struct {
	Tolerance float64
	Range     *channel.FrameRange
}

// BakeProgressEventType はベイク処理の進捗イベント種別を表す。
type BakeProgressEventType string

const (
	// BakeProgressEventTypeStarted はベイク開始イベントを表す。
	BakeProgressEventTypeStarted BakeProgressEventType = "started"
	// BakeProgressEventTypeFrameSampled はレイヤー合成結果の取得イベントを表す。
	BakeProgressEventTypeFrameSampled BakeProgressEventType = "frame_sampled"
	// BakeProgressEventTypeLayersRemoved は統合先以外のレイヤー削除イベントを表す。
	BakeProgressEventTypeLayersRemoved BakeProgressEventType = "layers_removed"
	// BakeProgressEventTypeFrameRecorded はフレームのキー記録イベントを表す。
	BakeProgressEventTypeFrameRecorded BakeProgressEventType = "frame_recorded"
	// BakeProgressEventTypeReduced はキー削減完了イベントを表す。
	BakeProgressEventTypeReduced BakeProgressEventType = "reduced"
	// BakeProgressEventTypeCompleted はベイク完了イベントを表す。
	BakeProgressEventTypeCompleted BakeProgressEventType = "completed"
	// BakeProgressEventTypeCancelled はベイク中断イベントを表す。
	BakeProgressEventTypeCancelled BakeProgressEventType = "cancelled"
)

// BakeProgressEvent はベイク処理の進捗イベントを表す。
type BakeProgressEvent struct {
	Type  BakeProgressEventType
	Frame channel.Frame
	Index int
	Total int
	Keys  int
}

// IBakeProgressReporter はベイク処理の進捗通知契約を表す。
type IBakeProgressReporter interface {
	// ReportBakeProgress はベイク処理進捗を通知する。
	ReportBakeProgress(event BakeProgressEvent)
}

// BakeRequest は範囲ベイク要求を表す。
type BakeRequest struct {
	Rig              *fkrig.FKControlRig
	Section          *section.Section
	Source           moutput.ISampledPoseSource
	Settings         BakeSettings
	ProgressReporter IBakeProgressReporter
}

// BakeResult は範囲ベイク結果を表す。
// 中断時も記録済みのフレーム数とキー数を返し、Completed は false になる。
type BakeResult struct {
	Completed   bool
	Frames      int
	Keys        int
	ReducedKeys int
	Warnings    []string
}

// CollapseRequest はレイヤー統合要求を表す。
type CollapseRequest struct {
	Rig              *fkrig.FKControlRig
	Track            *section.Track
	Settings         CollapseSettings
	ProgressReporter IBakeProgressReporter
}

// CollapseResult はレイヤー統合結果を表す。
type CollapseResult struct {
	Completed       bool
	Frames          int
	Keys            int
	ReducedKeys     int
	RemovedSections int
	Warnings        []string
}

// BakeClipRequest はクリップをスケルトンへベイクして保存する要求を表す。
type BakeClipRequest struct {
	SkeletonPath     string
	ClipPath         string
	OutputPath       string
	ApplyMode        fkrig.ApplyMode
	Settings         BakeSettings
	SkeletonReader   moutput.ISkeletonReader
	ClipReader       moutput.IClipReader
	TrackWriter      moutput.ITrackWriter
	ProgressReporter IBakeProgressReporter
}

// BakeClipResult はクリップのベイク結果を表す。
type BakeClipResult struct {
	Rig        *fkrig.FKControlRig
	Track      *section.Track
	Bake       *BakeResult
	OutputPath string
}

// reportBakeProgress はベイク処理の進捗を通知する。
func reportBakeProgress(reporter IBakeProgressReporter, event BakeProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportBakeProgress(event)
}
