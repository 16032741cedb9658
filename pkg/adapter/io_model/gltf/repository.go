// 指示: miu200521358
package gltf

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/miu200521358/mu_fkrig/pkg/adapter/io_common"
	"github.com/miu200521358/mu_fkrig/pkg/domain/fkrig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
	"github.com/miu200521358/mu_fkrig/pkg/shared/base/logging"
)

const (
	glbHeaderLength   = 12
	glbChunkHeadSize  = 8
	glbMagic          = 0x46546C67
	glbJSONChunkType  = 0x4E4F534A
	glbMinValidLength = glbHeaderLength + glbChunkHeadSize
)

// LoadProgressEventType はスケルトン読込進捗イベント種別を表す。
type LoadProgressEventType string

const (
	// LoadProgressEventTypeFileReadComplete はファイル読込完了イベントを表す。
	LoadProgressEventTypeFileReadComplete LoadProgressEventType = "file_read_complete"
	// LoadProgressEventTypeJsonParsed はJSON解析完了イベントを表す。
	LoadProgressEventTypeJsonParsed LoadProgressEventType = "json_parsed"
	// LoadProgressEventTypeCompleted はスケルトン読込完了イベントを表す。
	LoadProgressEventTypeCompleted LoadProgressEventType = "completed"
)

// LoadProgressEvent はスケルトン読込進捗イベントを表す。
type LoadProgressEvent struct {
	Type          LoadProgressEventType
	FileSizeBytes int
	NodeCount     int
	BoneCount     int
	CurveCount    int
}

// GltfRepository は glTF/GLB/VRM のノード階層を参照スケルトンとして読み込む。
type GltfRepository struct {
	loadProgressReporter func(LoadProgressEvent)
}

// NewGltfRepository はGltfRepositoryを生成する。
func NewGltfRepository() *GltfRepository {
	return &GltfRepository{}
}

// SetLoadProgressReporter は読込進捗受信コールバックを設定する。
func (r *GltfRepository) SetLoadProgressReporter(reporter func(LoadProgressEvent)) {
	if r == nil {
		return
	}
	r.loadProgressReporter = reporter
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *GltfRepository) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf", ".vrm":
		return true
	default:
		return false
	}
}

// InferName はパスから表示名を推定する。
func (r *GltfRepository) InferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// ReadSkeleton はノード階層からボーン列を、モーフターゲットと表情定義からカーブ列を作る。
// ボーン列は親が必ず先に並ぶ順序へ並べ替える。
func (r *GltfRepository) ReadSkeleton(path string) (*fkrig.Skeleton, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	loadTargetName := filepath.Base(path)
	logGltfInfo("スケルトン読込開始: file=%s", loadTargetName)

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, io_common.NewIoFileNotFound(path, err)
		}
		return nil, io_common.NewIoParseFailed("ファイルの読み取りに失敗しました", err)
	}
	r.reportLoadProgress(LoadProgressEvent{Type: LoadProgressEventTypeFileReadComplete, FileSizeBytes: len(b)})

	jsonChunk := b
	if !strings.EqualFold(filepath.Ext(path), ".gltf") {
		jsonChunk, err = parseGLBJSONChunk(b)
		if err != nil {
			return nil, err
		}
	}
	doc := gltfDocument{}
	if err := json.Unmarshal(jsonChunk, &doc); err != nil {
		return nil, io_common.NewIoParseFailed("glTF JSONの解析に失敗しました", err)
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeJsonParsed,
		FileSizeBytes: len(b),
		NodeCount:     len(doc.Nodes),
	})
	logGltfDebug("JSON解析完了: nodes=%d meshes=%d", len(doc.Nodes), len(doc.Meshes))

	parentIndexes, err := buildNodeParentIndexes(doc.Nodes)
	if err != nil {
		return nil, err
	}
	order, err := buildParentFirstOrder(doc.Nodes, parentIndexes)
	if err != nil {
		return nil, err
	}

	skeleton := &fkrig.Skeleton{Name: r.InferName(path)}
	if err := appendSkeletonBones(skeleton, doc.Nodes, parentIndexes, order); err != nil {
		return nil, err
	}
	appendSkeletonCurves(skeleton, &doc)

	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeCompleted,
		FileSizeBytes: len(b),
		NodeCount:     len(doc.Nodes),
		BoneCount:     len(skeleton.Bones),
		CurveCount:    len(skeleton.Curves),
	})
	logGltfInfo("スケルトン読込完了: file=%s bones=%d curves=%d", loadTargetName, len(skeleton.Bones), len(skeleton.Curves))
	return skeleton, nil
}

// reportLoadProgress は読込進捗イベントを通知する。
func (r *GltfRepository) reportLoadProgress(event LoadProgressEvent) {
	if r == nil || r.loadProgressReporter == nil {
		return
	}
	r.loadProgressReporter(event)
}

// logGltfInfo はスケルトン読込のINFOログを出力する。
func logGltfInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logGltfDebug はスケルトン読込のデバッグログを出力する。
func logGltfDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logGltfWarn はスケルトン読込の警告ログを出力する。
func logGltfWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}

// gltfDocument はスケルトン読込時に必要なglTFトップレベル要素を表す。
type gltfDocument struct {
	Asset          gltfAsset                  `json:"asset"`
	Meshes         []gltfMesh                 `json:"meshes"`
	ExtensionsUsed []string                   `json:"extensionsUsed"`
	Nodes          []gltfNode                 `json:"nodes"`
	Extensions     map[string]json.RawMessage `json:"extensions"`
}

// gltfAsset はglTF asset要素を表す。
type gltfAsset struct {
	Version   string `json:"version"`
	Generator string `json:"generator"`
}

// gltfNode はglTF node要素を表す。
type gltfNode struct {
	Name        string    `json:"name"`
	Mesh        *int      `json:"mesh"`
	Children    []int     `json:"children"`
	Matrix      []float64 `json:"matrix"`
	Translation []float64 `json:"translation"`
	Rotation    []float64 `json:"rotation"`
	Scale       []float64 `json:"scale"`
}

// gltfMesh はglTF mesh要素を表す。
type gltfMesh struct {
	Name       string          `json:"name"`
	Primitives []gltfPrimitive `json:"primitives"`
	Weights    []float64       `json:"weights"`
	Extras     *gltfExtras     `json:"extras"`
}

// gltfPrimitive はglTF mesh primitive要素を表す。
type gltfPrimitive struct {
	Targets []map[string]int `json:"targets"`
	Extras  *gltfExtras      `json:"extras"`
}

// gltfExtras は extras のモーフターゲット名を表す。
type gltfExtras struct {
	TargetNames []string `json:"targetNames"`
}

// vrm1ExpressionsExtension は VRM1 expressions の名前だけを表す。
type vrm1ExpressionsExtension struct {
	Expressions struct {
		Preset map[string]json.RawMessage `json:"preset"`
		Custom map[string]json.RawMessage `json:"custom"`
	} `json:"expressions"`
}

// vrm0BlendShapeExtension は VRM0 blendShapeGroups の名前だけを表す。
type vrm0BlendShapeExtension struct {
	BlendShapeMaster struct {
		BlendShapeGroups []struct {
			Name       string `json:"name"`
			PresetName string `json:"presetName"`
		} `json:"blendShapeGroups"`
	} `json:"blendShapeMaster"`
}

// parseGLBJSONChunk はGLBバイナリからJSONチャンクを取り出す。
func parseGLBJSONChunk(b []byte) ([]byte, error) {
	if len(b) < glbMinValidLength {
		return nil, io_common.NewIoParseFailed("GLBヘッダが不足しています", nil)
	}
	magic := binary.LittleEndian.Uint32(b[0:4])
	if magic != glbMagic {
		return nil, io_common.NewIoParseFailed("GLBマジックが不正です", nil)
	}
	version := binary.LittleEndian.Uint32(b[4:8])
	if version != 2 {
		return nil, io_common.NewIoFormatNotSupported("GLBバージョンが未対応です: %d", nil, version)
	}
	totalLength := binary.LittleEndian.Uint32(b[8:12])
	if totalLength > uint32(len(b)) {
		return nil, io_common.NewIoParseFailed("GLB全体長が不正です", nil)
	}

	offset := glbHeaderLength
	for offset+glbChunkHeadSize <= len(b) {
		chunkLength := int(binary.LittleEndian.Uint32(b[offset : offset+4]))
		chunkType := binary.LittleEndian.Uint32(b[offset+4 : offset+8])
		chunkStart := offset + glbChunkHeadSize
		chunkEnd := chunkStart + chunkLength
		if chunkLength < 0 || chunkEnd > len(b) {
			return nil, io_common.NewIoParseFailed("GLBチャンク長が不正です", nil)
		}
		if chunkType == glbJSONChunkType {
			return b[chunkStart:chunkEnd], nil
		}
		offset = chunkEnd
	}
	return nil, io_common.NewIoParseFailed("GLB JSONチャンクが見つかりません", nil)
}

// buildNodeParentIndexes はnode配列から親インデックス配列を生成する。
func buildNodeParentIndexes(nodes []gltfNode) ([]int, error) {
	parentIndexes := make([]int, len(nodes))
	for i := range parentIndexes {
		parentIndexes[i] = -1
	}
	for parentIndex, node := range nodes {
		for _, childIndex := range node.Children {
			if childIndex < 0 || childIndex >= len(nodes) {
				return nil, io_common.NewIoParseFailed("node.children のindexが不正です: %d", nil, childIndex)
			}
			if parentIndexes[childIndex] == -1 {
				parentIndexes[childIndex] = parentIndex
			}
		}
	}
	return parentIndexes, nil
}

// buildParentFirstOrder は根から深さ優先でnodeを辿り、親が先に並ぶnode順を返す。
// 根から辿れないnodeが残る場合は親子関係が循環している。
func buildParentFirstOrder(nodes []gltfNode, parents []int) ([]int, error) {
	order := make([]int, 0, len(nodes))
	visited := make([]bool, len(nodes))
	var visit func(nodeIndex int)
	visit = func(nodeIndex int) {
		if visited[nodeIndex] {
			return
		}
		visited[nodeIndex] = true
		order = append(order, nodeIndex)
		for _, childIndex := range nodes[nodeIndex].Children {
			if parents[childIndex] == nodeIndex {
				visit(childIndex)
			}
		}
	}
	for nodeIndex := range nodes {
		if parents[nodeIndex] < 0 {
			visit(nodeIndex)
		}
	}
	if len(order) != len(nodes) {
		for nodeIndex, ok := range visited {
			if !ok {
				return nil, io_common.NewIoParseFailed("node親子関係に循環があります: %d", nil, nodeIndex)
			}
		}
	}
	return order, nil
}

// appendSkeletonBones は並べ替えたnode順にボーン定義を追加する。
func appendSkeletonBones(skeleton *fkrig.Skeleton, nodes []gltfNode, parents []int, order []int) error {
	boneIndexByNode := make(map[int]int, len(order))
	usedNames := map[string]int{}
	for _, nodeIndex := range order {
		node := nodes[nodeIndex]
		restLocal, err := nodeLocalTransform(node)
		if err != nil {
			return err
		}
		parentBoneIndex := -1
		if parentNodeIndex := parents[nodeIndex]; parentNodeIndex >= 0 {
			parentBoneIndex = boneIndexByNode[parentNodeIndex]
		}
		boneIndexByNode[nodeIndex] = len(skeleton.Bones)
		skeleton.Bones = append(skeleton.Bones, fkrig.BoneDefinition{
			Name:        ensureUniqueBoneName(resolveNodeBoneName(nodeIndex, node.Name), usedNames),
			ParentIndex: parentBoneIndex,
			RestLocal:   restLocal,
		})
	}
	return nil
}

// nodeLocalTransform はnode要素からローカルトランスフォームを生成する。
func nodeLocalTransform(node gltfNode) (mmath.Transform, error) {
	if len(node.Matrix) > 0 {
		if len(node.Matrix) != 16 {
			return mmath.NewTransform(), io_common.NewIoParseFailed("node.matrix の要素数が不正です: %d", nil, len(node.Matrix))
		}
		var values [16]float64
		copy(values[:], node.Matrix)
		return mmath.NewTransformFromMatrix(values), nil
	}

	translation, err := parseVec3(node.Translation, mmath.ZERO_VEC3, "node.translation")
	if err != nil {
		return mmath.NewTransform(), err
	}
	scale, err := parseVec3(node.Scale, mmath.ONE_VEC3, "node.scale")
	if err != nil {
		return mmath.NewTransform(), err
	}
	rotation, err := parseQuaternion(node.Rotation)
	if err != nil {
		return mmath.NewTransform(), err
	}
	return mmath.NewTransformByValues(translation, rotation, scale), nil
}

// parseVec3 はスライスをVec3へ変換する。
func parseVec3(values []float64, defaultValue mmath.Vec3, label string) (mmath.Vec3, error) {
	if len(values) == 0 {
		return defaultValue, nil
	}
	if len(values) != 3 {
		return mmath.ZERO_VEC3, io_common.NewIoParseFailed("%s の要素数が不正です: %d", nil, label, len(values))
	}
	return mmath.NewVec3ByValues(values[0], values[1], values[2]), nil
}

// parseQuaternion はスライスをQuaternionへ変換する。
func parseQuaternion(values []float64) (mmath.Quaternion, error) {
	if len(values) == 0 {
		return mmath.NewQuaternion(), nil
	}
	if len(values) != 4 {
		return mmath.NewQuaternion(), io_common.NewIoParseFailed("node.rotation の要素数が不正です: %d", nil, len(values))
	}
	return mmath.NewQuaternionByValues(values[0], values[1], values[2], values[3]).Normalized(), nil
}

// resolveNodeBoneName はnode名からボーン名を決定する。
func resolveNodeBoneName(nodeIndex int, nodeName string) string {
	trimmed := strings.TrimSpace(nodeName)
	if trimmed != "" {
		return trimmed
	}
	return fmt.Sprintf("node_%03d", nodeIndex)
}

// ensureUniqueBoneName は同名ボーンの重複を回避する。
func ensureUniqueBoneName(name string, used map[string]int) string {
	if used == nil {
		return name
	}
	if _, ok := used[name]; !ok {
		used[name] = 1
		return name
	}
	index := used[name]
	used[name] = index + 1
	return fmt.Sprintf("%s_%d", name, index)
}

// appendSkeletonCurves はモーフターゲットと VRM 表情定義をカーブとして追加する。
// 同名のカーブは先に見つかったものだけを残す。
func appendSkeletonCurves(skeleton *fkrig.Skeleton, doc *gltfDocument) {
	seen := map[string]struct{}{}
	appendCurve := func(name string, defaultValue float64) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			logGltfDebug("同名カーブを省略しました: curve=%s", name)
			return
		}
		seen[name] = struct{}{}
		skeleton.Curves = append(skeleton.Curves, fkrig.CurveDefinition{Name: name, DefaultValue: defaultValue})
	}

	for meshIndex, mesh := range doc.Meshes {
		names := meshTargetNames(meshIndex, mesh)
		for targetIndex, name := range names {
			defaultValue := 0.0
			if targetIndex < len(mesh.Weights) {
				defaultValue = mesh.Weights[targetIndex]
			}
			appendCurve(name, defaultValue)
		}
	}
	for _, name := range vrmExpressionNames(doc.Extensions) {
		appendCurve(name, 0)
	}
}

// meshTargetNames はmeshのモーフターゲット名を返す。名前が無いターゲットは連番名にする。
func meshTargetNames(meshIndex int, mesh gltfMesh) []string {
	if mesh.Extras != nil && len(mesh.Extras.TargetNames) > 0 {
		return mesh.Extras.TargetNames
	}
	targetCount := 0
	for _, primitive := range mesh.Primitives {
		if primitive.Extras != nil && len(primitive.Extras.TargetNames) > 0 {
			return primitive.Extras.TargetNames
		}
		targetCount = max(targetCount, len(primitive.Targets))
	}
	meshName := strings.TrimSpace(mesh.Name)
	if meshName == "" {
		meshName = fmt.Sprintf("mesh_%03d", meshIndex)
	}
	names := make([]string, targetCount)
	for i := range names {
		names[i] = fmt.Sprintf("%s_target_%03d", meshName, i)
	}
	return names
}

// vrmExpressionNames は VRM1 expressions または VRM0 blendShapeGroups の表情名を返す。
// 両方ある場合は VRM1 を優先する。
func vrmExpressionNames(extensions map[string]json.RawMessage) []string {
	if extensions == nil {
		return nil
	}
	if raw, ok := extensions["VRMC_vrm"]; ok {
		source := vrm1ExpressionsExtension{}
		if err := json.Unmarshal(raw, &source); err != nil {
			logGltfWarn("VRM1表情定義の解析に失敗したため継続します: err=%s", err.Error())
			return nil
		}
		names := slices.Sorted(maps.Keys(source.Expressions.Preset))
		return append(names, slices.Sorted(maps.Keys(source.Expressions.Custom))...)
	}
	raw, ok := extensions["VRM"]
	if !ok {
		return nil
	}
	source := vrm0BlendShapeExtension{}
	if err := json.Unmarshal(raw, &source); err != nil {
		logGltfWarn("VRM0表情定義の解析に失敗したため継続します: err=%s", err.Error())
		return nil
	}
	names := make([]string, 0, len(source.BlendShapeMaster.BlendShapeGroups))
	for _, group := range source.BlendShapeMaster.BlendShapeGroups {
		name := strings.TrimSpace(group.Name)
		if name == "" {
			name = strings.TrimSpace(group.PresetName)
		}
		names = append(names, name)
	}
	return names
}
