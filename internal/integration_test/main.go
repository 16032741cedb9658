// 指示: miu200521358
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_fkrig/pkg/adapter/io_model/gltf"
	"github.com/miu200521358/mu_fkrig/pkg/adapter/io_motion/clipjson"
	"github.com/miu200521358/mu_fkrig/pkg/domain/channel"
	"github.com/miu200521358/mu_fkrig/pkg/domain/fkrig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
	"github.com/miu200521358/mu_fkrig/pkg/domain/rig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/section"
	"github.com/miu200521358/mu_fkrig/pkg/usecase/minteractor"
)

const (
	batchOutputDirMode   = 0o755
	batchFileMode        = 0o644
	layerOffsetAmplitude = 0.5
)

// batchScenario は1件分の生成条件を表す。
type batchScenario struct {
	Name           string
	BoneCount      int
	SampleCount    int
	ApplyMode      fkrig.ApplyMode
	AddLayer       bool
	CancelCollapse bool
}

var targetScenarios = []batchScenario{
	{Name: "chain_replace", BoneCount: 8, SampleCount: 60, ApplyMode: fkrig.APPLY_MODE_REPLACE},
	{Name: "chain_additive", BoneCount: 8, SampleCount: 60, ApplyMode: fkrig.APPLY_MODE_ADDITIVE},
	{Name: "chain_collapse", BoneCount: 16, SampleCount: 120, ApplyMode: fkrig.APPLY_MODE_REPLACE, AddLayer: true},
	{Name: "chain_collapse_cancel", BoneCount: 4, SampleCount: 30, ApplyMode: fkrig.APPLY_MODE_REPLACE, AddLayer: true, CancelCollapse: true},
	// {Name: "chain_long", BoneCount: 64, SampleCount: 1200, ApplyMode: fkrig.APPLY_MODE_REPLACE, AddLayer: true},
}

type batchConfig struct {
	OutputRoot string
	Samples    int
	Tolerance  float64
	DryRun     bool
	FailFast   bool
}

type batchEntry struct {
	Index    int
	Scenario batchScenario
	Dir      string
}

type batchResult struct {
	Entry           batchEntry
	Status          string
	Error           string
	OutputPath      string
	Frames          int
	Keys            int
	ReducedKeys     int
	RemovedSections int
	Unwound         int
	Duration        time.Duration
	Progress        string
}

func main() {
	config, err := parseBatchConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定エラー: %v\n", err)
		os.Exit(2)
	}

	entries := buildBatchEntries(targetScenarios, config)
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "対象シナリオがありません。targetScenarios を確認してください。")
		os.Exit(2)
	}

	if !config.DryRun {
		if err := os.MkdirAll(config.OutputRoot, batchOutputDirMode); err != nil {
			fmt.Fprintf(os.Stderr, "出力ルート作成失敗: %v\n", err)
			os.Exit(1)
		}
	}

	results := executeBatchScenarios(entries, config)
	printBatchSummary(results)
	for _, result := range results {
		if result.Status == "failed" {
			os.Exit(1)
		}
	}
}

// parseBatchConfig はバッチ実行設定を解析する。
func parseBatchConfig() (batchConfig, error) {
	defaultOutputRoot, err := resolveDefaultOutputRoot()
	if err != nil {
		return batchConfig{}, err
	}

	outputRoot := flag.String("output-root", defaultOutputRoot, "出力ルートディレクトリ")
	samples := flag.Int("samples", 0, "サンプル数の上書き(0ならシナリオ既定値)")
	tolerance := flag.Float64("tolerance", 1e-4, "キー削減の許容誤差")
	dryRun := flag.Bool("dry-run", false, "出力せずに実行計画だけ表示する")
	failFast := flag.Bool("fail-fast", false, "最初の失敗で中断する")
	flag.Parse()

	normalizedOutputRoot := strings.TrimSpace(*outputRoot)
	if normalizedOutputRoot == "" {
		return batchConfig{}, errors.New("output-root が空です")
	}
	if *samples < 0 {
		return batchConfig{}, fmt.Errorf("samples が不正です: %d", *samples)
	}
	return batchConfig{
		OutputRoot: filepath.Clean(normalizedOutputRoot),
		Samples:    *samples,
		Tolerance:  *tolerance,
		DryRun:     *dryRun,
		FailFast:   *failFast,
	}, nil
}

// resolveDefaultOutputRoot はソース位置基準の既定出力先を返す。
func resolveDefaultOutputRoot() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置の解決に失敗しました")
	}
	return filepath.Join(filepath.Dir(currentFile), "output"), nil
}

// buildBatchEntries はシナリオごとの出力先を組み立てる。
func buildBatchEntries(scenarios []batchScenario, config batchConfig) []batchEntry {
	entries := make([]batchEntry, 0, len(scenarios))
	for _, scenario := range scenarios {
		if strings.TrimSpace(scenario.Name) == "" || scenario.BoneCount <= 0 {
			continue
		}
		if config.Samples > 0 {
			scenario.SampleCount = config.Samples
		}
		entries = append(entries, batchEntry{
			Index:    len(entries) + 1,
			Scenario: scenario,
			Dir:      filepath.Join(config.OutputRoot, sanitizePathComponent(scenario.Name)),
		})
	}
	return entries
}

// executeBatchScenarios はシナリオを順に実行する。
func executeBatchScenarios(entries []batchEntry, config batchConfig) []batchResult {
	results := make([]batchResult, 0, len(entries))
	total := len(entries)
	for _, entry := range entries {
		fmt.Printf("[%d/%d] 開始: %s bones=%d samples=%d mode=%s\n",
			entry.Index, total, entry.Scenario.Name, entry.Scenario.BoneCount, entry.Scenario.SampleCount, entry.Scenario.ApplyMode)
		if config.DryRun {
			results = append(results, batchResult{Entry: entry, Status: "dry-run"})
			fmt.Printf("[%d/%d] DRY-RUN: %s\n", entry.Index, total, entry.Dir)
			continue
		}

		result := runScenario(entry, config)
		results = append(results, result)
		if result.Status == "failed" {
			fmt.Printf("[%d/%d] 失敗: %s (%s)\n", entry.Index, total, result.Error, result.Progress)
			if config.FailFast {
				break
			}
			continue
		}
		fmt.Printf("[%d/%d] 成功: %s frames=%d keys=%d reduced=%d removed=%d unwound=%d (%s) [%s]\n",
			entry.Index, total, result.OutputPath, result.Frames, result.Keys, result.ReducedKeys,
			result.RemovedSections, result.Unwound, result.Duration.Round(time.Millisecond), result.Progress)
	}
	return results
}

// runScenario はスケルトンとクリップを生成し、ベイク・統合・保存までを実行する。
func runScenario(entry batchEntry, config batchConfig) (result batchResult) {
	start := time.Now()
	result = batchResult{Entry: entry, Status: "failed"}
	progress := newBatchProgressCollector()
	defer func() {
		result.Duration = time.Since(start)
		result.Progress = progress.Summary()
	}()

	if err := os.MkdirAll(entry.Dir, batchOutputDirMode); err != nil {
		result.Error = fmt.Sprintf("出力フォルダ作成失敗: %v", err)
		return result
	}
	scenario := entry.Scenario
	skeletonPath := filepath.Join(entry.Dir, "skeleton.gltf")
	clipPath := filepath.Join(entry.Dir, "clip.json")
	if err := writeChainSkeleton(skeletonPath, scenario.BoneCount); err != nil {
		result.Error = fmt.Sprintf("スケルトン生成失敗: %v", err)
		return result
	}
	if err := clipjson.NewClipJsonRepository().Save(clipPath, buildSwingClip(scenario)); err != nil {
		result.Error = fmt.Sprintf("クリップ生成失敗: %v", err)
		return result
	}

	trackRepository := clipjson.NewTrackJsonRepository()
	uc := minteractor.NewFkRigUsecase(minteractor.FkRigUsecaseDeps{
		SkeletonReader: gltf.NewGltfRepository(),
		ClipReader:     clipjson.NewClipJsonRepository(),
		TrackWriter:    trackRepository,
	})
	bakePath := filepath.Join(entry.Dir, "bake.json")
	baked, err := uc.BakeClip(context.Background(), minteractor.BakeClipRequest{
		SkeletonPath:     skeletonPath,
		ClipPath:         clipPath,
		OutputPath:       bakePath,
		ApplyMode:        scenario.ApplyMode,
		Settings:         minteractor.BakeSettings{Interval: 1, Interpolation: channel.INTERPOLATION_CUBIC},
		ProgressReporter: progress,
	})
	if err != nil {
		result.Error = fmt.Sprintf("ベイク失敗: %v", err)
		return result
	}
	result.Frames = baked.Bake.Frames
	result.Keys = baked.Bake.Keys
	result.OutputPath = baked.OutputPath

	if scenario.AddLayer {
		lastFrame := channel.Frame(scenario.SampleCount - 1)
		addOffsetLayer(baked.Rig, baked.Track, lastFrame)

		ctx, cancel := context.WithCancel(context.Background())
		var reporter minteractor.IBakeProgressReporter = progress
		if scenario.CancelCollapse {
			reporter = &cancelOnLayersRemoved{next: progress, cancel: cancel}
		}
		collapsed, err := uc.CollapseAllLayers(ctx, minteractor.CollapseRequest{
			Rig:   baked.Rig,
			Track: baked.Track,
			Settings: minteractor.CollapseSettings{
				Start:         0,
				End:           lastFrame,
				Interpolation: channel.INTERPOLATION_CUBIC,
				Reduce:        true,
				Tolerance:     config.Tolerance,
			},
			ProgressReporter: reporter,
		})
		cancel()
		switch {
		case scenario.CancelCollapse && errors.Is(err, minteractor.ErrBakeCancelled):
			if len(baked.Track.Sections) != 2 {
				result.Error = fmt.Sprintf("統合中断後のレイヤー数が不正です: %d", len(baked.Track.Sections))
				return result
			}
		case err != nil:
			result.Error = fmt.Sprintf("統合失敗: %v", err)
			return result
		default:
			result.Keys = collapsed.Keys
			result.ReducedKeys = collapsed.ReducedKeys
			result.RemovedSections = collapsed.RemovedSections
		}
	}

	base, err := baked.Track.BaseSection()
	if err != nil {
		result.Error = fmt.Sprintf("基底セクション取得失敗: %v", err)
		return result
	}
	lastFrame := channel.Frame(scenario.SampleCount - 1)
	for _, name := range chainBoneNames(scenario.BoneCount) {
		result.Unwound += minteractor.FixRotationWinding(baked.Rig, base, name+rig.ControlSuffix, 0, lastFrame)
	}
	result.ReducedKeys += minteractor.OptimizeSection(baked.Rig, base, nil, minteractor.OptimizeSettings{Tolerance: config.Tolerance})

	outputPath := filepath.Join(entry.Dir, "track.json")
	if err := uc.SaveTrack(trackRepository, outputPath, baked.Track); err != nil {
		result.Error = fmt.Sprintf("保存失敗: %v", err)
		return result
	}
	result.OutputPath = outputPath
	result.Status = "success"
	return result
}

// chainBoneNames は連鎖ボーン名を返す。
func chainBoneNames(count int) []string {
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("Bone_%03d", i)
	}
	return names
}

// writeChainSkeleton は Y 方向へ1ずつ伸びる連鎖ボーンの glTF を書き出す。
func writeChainSkeleton(path string, boneCount int) error {
	names := chainBoneNames(boneCount)
	nodes := make([]map[string]any, 0, boneCount)
	for i, name := range names {
		node := map[string]any{"name": name}
		if i > 0 {
			node["translation"] = []float64{0, 1, 0}
		}
		if i+1 < boneCount {
			node["children"] = []int{i + 1}
		}
		nodes = append(nodes, node)
	}
	document := map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scenes": []any{map[string]any{"nodes": []int{0}}},
		"nodes":  nodes,
	}
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, batchFileMode)
}

// buildSwingClip は各ボーンを Z 軸回りに位相をずらして振るクリップを生成する。
// 末端側ほど振れ幅を大きくし、巻き戻しが必要な 180 度超えの角度も含める。
func buildSwingClip(scenario batchScenario) *clipjson.Clip {
	clip := clipjson.NewClip(scenario.Name)
	names := chainBoneNames(scenario.BoneCount)
	for sample := 0; sample < scenario.SampleCount; sample++ {
		frame := clipjson.NewClipFrame()
		phase := float64(sample) / float64(max(scenario.SampleCount-1, 1)) * 2 * math.Pi
		for i, name := range names {
			translation := mmath.NewVec3ByValues(0, 1, 0)
			if i == 0 {
				translation = mmath.NewVec3ByValues(0, 0, 0)
			}
			amplitude := math.Pi * float64(i+1) / float64(scenario.BoneCount)
			angle := amplitude * math.Sin(phase+float64(i)*0.25)
			frame.Bones[name] = mmath.NewTransformByValues(
				translation,
				mmath.NewQuaternionFromAxisAngle(mmath.UNIT_Z_VEC3, angle),
				mmath.ONE_VEC3,
			)
		}
		clip.AddFrame(frame)
	}
	return clip
}

// addOffsetLayer は末端ボーンのコントロールを持ち上げる加算レイヤーを追加する。
func addOffsetLayer(r *fkrig.FKControlRig, track *section.Track, lastFrame channel.Frame) {
	layer := section.NewSection("offset", section.BLEND_TYPE_ADDITIVE)
	layer.RecreateWithHierarchy(r.Hierarchy(), false)
	names := chainBoneNames(len(r.Hierarchy().Bones()))
	if len(names) == 0 {
		return
	}
	parameter := layer.FindTransformParameter(names[len(names)-1] + rig.ControlSuffix)
	if parameter == nil {
		return
	}
	parameter.Translation[1].AddKey(0, 0, channel.INTERPOLATION_CUBIC)
	parameter.Translation[1].AddKey(lastFrame/2, layerOffsetAmplitude, channel.INTERPOLATION_CUBIC)
	parameter.Translation[1].AddKey(lastFrame, 0, channel.INTERPOLATION_CUBIC)
	track.AddSection(layer)
}

// cancelOnLayersRemoved はレイヤー削除の直後に中断を要求する進捗通知。
type cancelOnLayersRemoved struct {
	next   minteractor.IBakeProgressReporter
	cancel context.CancelFunc
}

// ReportBakeProgress は進捗を転送し、レイヤー削除イベントで中断する。
func (c *cancelOnLayersRemoved) ReportBakeProgress(event minteractor.BakeProgressEvent) {
	c.next.ReportBakeProgress(event)
	if event.Type == minteractor.BakeProgressEventTypeLayersRemoved {
		c.cancel()
	}
}

// printBatchSummary はバッチ結果の集計を出力する。
func printBatchSummary(results []batchResult) {
	success := 0
	failed := 0
	dryRun := 0
	for _, result := range results {
		switch result.Status {
		case "success":
			success++
		case "failed":
			failed++
		case "dry-run":
			dryRun++
		}
	}
	fmt.Printf("完了: success=%d failed=%d dry-run=%d total=%d\n", success, failed, dryRun, len(results))
	if failed == 0 {
		return
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Entry.Index < results[j].Entry.Index
	})
	fmt.Println("失敗一覧:")
	for _, result := range results {
		if result.Status != "failed" {
			continue
		}
		fmt.Printf("- [%d] %s: %s\n", result.Entry.Index, result.Entry.Scenario.Name, result.Error)
	}
}

// sanitizePathComponent はファイル名に使えない文字を置換する。
func sanitizePathComponent(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "unnamed"
	}
	replacer := strings.NewReplacer(
		"<", "_",
		">", "_",
		":", "_",
		"\"", "_",
		"/", "_",
		"\\", "_",
		"|", "_",
		"?", "_",
		"*", "_",
	)
	sanitized := strings.TrimSpace(replacer.Replace(trimmed))
	sanitized = strings.Trim(sanitized, ". ")
	if sanitized == "" {
		return "unnamed"
	}
	return sanitized
}

// batchProgressCollector はベイク進捗イベントを種別ごとに数える。
type batchProgressCollector struct {
	counts   map[minteractor.BakeProgressEventType]int
	lastKeys int
}

func newBatchProgressCollector() *batchProgressCollector {
	return &batchProgressCollector{counts: map[minteractor.BakeProgressEventType]int{}}
}

// ReportBakeProgress は進捗イベントを記録する。
func (c *batchProgressCollector) ReportBakeProgress(event minteractor.BakeProgressEvent) {
	if c == nil {
		return
	}
	c.counts[event.Type]++
	if event.Type == minteractor.BakeProgressEventTypeFrameRecorded {
		c.lastKeys = event.Keys
	}
}

// Summary は集計結果を1行で返す。
func (c *batchProgressCollector) Summary() string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf(
		"recorded=%d sampled=%d reduced=%d cancelled=%d completed=%d keys=%d",
		c.counts[minteractor.BakeProgressEventTypeFrameRecorded],
		c.counts[minteractor.BakeProgressEventTypeFrameSampled],
		c.counts[minteractor.BakeProgressEventTypeReduced],
		c.counts[minteractor.BakeProgressEventTypeCancelled],
		c.counts[minteractor.BakeProgressEventTypeCompleted],
		c.lastKeys,
	)
}
