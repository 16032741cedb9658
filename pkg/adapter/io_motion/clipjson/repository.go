// 指示: miu200521358
package clipjson

import (
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/miu200521358/mu_fkrig/pkg/adapter/io_common"
	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
	"github.com/miu200521358/mu_fkrig/pkg/shared/base/logging"
	"github.com/miu200521358/mu_fkrig/pkg/usecase/port/moutput"
)

const jsonFileExt = ".json"

// clipDocument はクリップJSONのトップレベル要素を表す。
type clipDocument struct {
	Name   string              `json:"name"`
	Frames []clipFrameDocument `json:"frames"`
}

// clipFrameDocument は1サンプル分の要素を表す。
type clipFrameDocument struct {
	Bones  map[string]boneTransformDocument `json:"bones"`
	Curves map[string]float64               `json:"curves,omitempty"`
}

// boneTransformDocument はボーンのローカルトランスフォームを表す。
// rotation は XYZW の四元数、euler は Roll/Pitch/Yaw の度で、rotation を優先する。
type boneTransformDocument struct {
	Translation []float64 `json:"translation,omitempty"`
	Rotation    []float64 `json:"rotation,omitempty"`
	Euler       []float64 `json:"euler,omitempty"`
	Scale       []float64 `json:"scale,omitempty"`
}

// ClipJsonRepository はクリップJSONの入出力を表す。
type ClipJsonRepository struct{}

// NewClipJsonRepository はClipJsonRepositoryを生成する。
func NewClipJsonRepository() *ClipJsonRepository {
	return &ClipJsonRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *ClipJsonRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), jsonFileExt)
}

// ReadClip はクリップJSONを読み込み、サンプル列の姿勢元を返す。
func (r *ClipJsonRepository) ReadClip(path string) (moutput.ISampledPoseSource, error) {
	clip, err := r.Load(path)
	if err != nil {
		return nil, err
	}
	return clip, nil
}

// Load はクリップJSONを読み込む。
func (r *ClipJsonRepository) Load(path string) (*Clip, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	doc := clipDocument{}
	if err := readJSONFile(path, &doc); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(doc.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	clip := NewClip(name)
	for frameIndex, frameDoc := range doc.Frames {
		frame := NewClipFrame()
		for boneName, boneDoc := range frameDoc.Bones {
			local, err := boneDoc.toTransform()
			if err != nil {
				return nil, io_common.NewIoParseFailed("ボーン姿勢の解析に失敗しました: frame=%d bone=%s", err, frameIndex, boneName)
			}
			frame.Bones[boneName] = local
		}
		maps.Copy(frame.Curves, frameDoc.Curves)
		clip.AddFrame(frame)
	}
	logClipDebug("クリップを読み込みました: file=%s samples=%d", filepath.Base(path), clip.NumSamples())
	return clip, nil
}

// Save はクリップをJSONとして保存する。
func (r *ClipJsonRepository) Save(path string, clip *Clip) error {
	if clip == nil {
		return io_common.NewIoSaveFailed("保存対象クリップがありません", nil)
	}
	doc := clipDocument{Name: clip.Name, Frames: make([]clipFrameDocument, 0, len(clip.Frames))}
	for _, frame := range clip.Frames {
		frameDoc := clipFrameDocument{Bones: make(map[string]boneTransformDocument, len(frame.Bones))}
		for boneName, local := range frame.Bones {
			frameDoc.Bones[boneName] = newBoneTransformDocument(local)
		}
		if len(frame.Curves) > 0 {
			frameDoc.Curves = maps.Clone(frame.Curves)
		}
		doc.Frames = append(doc.Frames, frameDoc)
	}
	return writeJSONFile(path, doc)
}

// newBoneTransformDocument はトランスフォームを文書要素へ変換する。
func newBoneTransformDocument(local mmath.Transform) boneTransformDocument {
	return boneTransformDocument{
		Translation: []float64{local.Translation.X, local.Translation.Y, local.Translation.Z},
		Rotation:    []float64{local.Rotation.X(), local.Rotation.Y(), local.Rotation.Z(), local.Rotation.W()},
		Scale:       []float64{local.Scale.X, local.Scale.Y, local.Scale.Z},
	}
}

// toTransform は文書要素をトランスフォームへ変換する。省略した要素は恒等値になる。
func (d boneTransformDocument) toTransform() (mmath.Transform, error) {
	local := mmath.NewTransform()
	if len(d.Translation) > 0 {
		v, err := parseVec3(d.Translation, "translation")
		if err != nil {
			return local, err
		}
		local.Translation = v
	}
	if len(d.Scale) > 0 {
		v, err := parseVec3(d.Scale, "scale")
		if err != nil {
			return local, err
		}
		local.Scale = v
	}
	switch {
	case len(d.Rotation) > 0:
		if len(d.Rotation) != 4 {
			return local, io_common.NewIoParseFailed("rotation の要素数が不正です: %d", nil, len(d.Rotation))
		}
		local.Rotation = mmath.NewQuaternionByValues(d.Rotation[0], d.Rotation[1], d.Rotation[2], d.Rotation[3]).Normalized()
	case len(d.Euler) > 0:
		v, err := parseVec3(d.Euler, "euler")
		if err != nil {
			return local, err
		}
		local.Rotation = mmath.NewRotatorByValues(v.X, v.Y, v.Z).Quaternion()
	}
	return local, nil
}

// parseVec3 はスライスをVec3へ変換する。
func parseVec3(values []float64, label string) (mmath.Vec3, error) {
	if len(values) != 3 {
		return mmath.ZERO_VEC3, io_common.NewIoParseFailed("%s の要素数が不正です: %d", nil, label, len(values))
	}
	return mmath.NewVec3ByValues(values[0], values[1], values[2]), nil
}

// readJSONFile はJSONファイルを読み込んで out へ展開する。
func readJSONFile(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return io_common.NewIoFileNotFound(path, err)
		}
		return io_common.NewIoParseFailed("ファイルの読み取りに失敗しました", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return io_common.NewIoParseFailed("JSONの解析に失敗しました: %s", err, filepath.Base(path))
	}
	return nil
}

// writeJSONFile は値を整形済みJSONとして保存する。
func writeJSONFile(path string, value any) error {
	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return io_common.NewIoSaveFailed("JSONの生成に失敗しました", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return io_common.NewIoSaveFailed("ファイルの書き込みに失敗しました: %s", err, path)
	}
	return nil
}

// sortedKeys はマップのキーを昇順で返す。
func sortedKeys[V any](values map[string]V) []string {
	return slices.Sorted(maps.Keys(values))
}

// logClipDebug はクリップ入出力のデバッグログを出力する。
func logClipDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}
