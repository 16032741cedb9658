// 指示: miu200521358
package clipjson

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/miu200521358/mu_fkrig/pkg/adapter/io_common"
	"github.com/miu200521358/mu_fkrig/pkg/domain/channel"
	"github.com/miu200521358/mu_fkrig/pkg/domain/rig"
	"github.com/miu200521358/mu_fkrig/pkg/domain/section"
)

// trackDocument はトラックJSONのトップレベル要素を表す。
type trackDocument struct {
	Name     string            `json:"name"`
	Sections []sectionDocument `json:"sections"`
}

// sectionDocument はセクションの永続要素を表す。対応表は保存しない。
type sectionDocument struct {
	ID               string                       `json:"id"`
	Name             string                       `json:"name"`
	BlendType        string                       `json:"blendType"`
	Weight           floatChannelDocument         `json:"weight"`
	Scalars          []floatParameterDocument     `json:"scalars,omitempty"`
	Bools            []boolParameterDocument      `json:"bools,omitempty"`
	Enums            []enumParameterDocument      `json:"enums,omitempty"`
	Integers         []integerParameterDocument   `json:"integers,omitempty"`
	Vector2Ds        []vectorParameterDocument    `json:"vector2ds,omitempty"`
	Vectors          []vectorParameterDocument    `json:"vectors,omitempty"`
	Transforms       []transformParameterDocument `json:"transforms,omitempty"`
	Spaces           []spaceChannelDocument       `json:"spaces,omitempty"`
	Constraints      []constraintChannelDocument  `json:"constraints,omitempty"`
	DisabledControls []string                     `json:"disabledControls,omitempty"`
}

type floatKeyDocument struct {
	Frame         int     `json:"frame"`
	Value         float64 `json:"value"`
	Interpolation string  `json:"interpolation"`
	ArriveTangent float64 `json:"arriveTangent"`
	LeaveTangent  float64 `json:"leaveTangent"`
}

type floatChannelDocument struct {
	Default *float64           `json:"default,omitempty"`
	Keys    []floatKeyDocument `json:"keys"`
}

type steppedKeyDocument[T comparable] struct {
	Frame int `json:"frame"`
	Value T   `json:"value"`
}

type steppedChannelDocument[T comparable] struct {
	Default *T                      `json:"default,omitempty"`
	Keys    []steppedKeyDocument[T] `json:"keys"`
}

type floatParameterDocument struct {
	Name    string               `json:"name"`
	Channel floatChannelDocument `json:"channel"`
}

type boolParameterDocument struct {
	Name    string                       `json:"name"`
	Channel steppedChannelDocument[bool] `json:"channel"`
}

type enumParameterDocument struct {
	Name    string                        `json:"name"`
	Channel steppedChannelDocument[uint8] `json:"channel"`
}

type integerParameterDocument struct {
	Name    string                        `json:"name"`
	Channel steppedChannelDocument[int32] `json:"channel"`
}

type vectorParameterDocument struct {
	Name     string                 `json:"name"`
	Channels []floatChannelDocument `json:"channels"`
}

// transformParameterDocument は回転を Roll, Pitch, Yaw の順で持つ。
type transformParameterDocument struct {
	Name        string                 `json:"name"`
	Translation []floatChannelDocument `json:"translation"`
	Rotation    []floatChannelDocument `json:"rotation"`
	Scale       []floatChannelDocument `json:"scale"`
}

type spaceKeyDocument struct {
	Space       string `json:"space"`
	ElementName string `json:"elementName,omitempty"`
	ElementType string `json:"elementType,omitempty"`
}

type spaceChannelDocument struct {
	Control string                                   `json:"control"`
	Channel steppedChannelDocument[spaceKeyDocument] `json:"channel"`
}

type constraintChannelDocument struct {
	ID      string                       `json:"id"`
	Name    string                       `json:"name"`
	Control string                       `json:"control"`
	Active  steppedChannelDocument[bool] `json:"active"`
}

// TrackJsonRepository はトラックJSONの入出力を表す。
type TrackJsonRepository struct{}

// NewTrackJsonRepository はTrackJsonRepositoryを生成する。
func NewTrackJsonRepository() *TrackJsonRepository {
	return &TrackJsonRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *TrackJsonRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), jsonFileExt)
}

// WriteTrack はトラックの永続要素をJSONとして保存する。
func (r *TrackJsonRepository) WriteTrack(path string, track *section.Track) error {
	if track == nil {
		return io_common.NewIoSaveFailed("保存対象トラックがありません", nil)
	}
	if !r.CanLoad(path) {
		return io_common.NewIoExtInvalid(path, nil)
	}
	doc := trackDocument{Name: track.Name, Sections: make([]sectionDocument, 0, len(track.Sections))}
	for _, s := range track.Sections {
		doc.Sections = append(doc.Sections, newSectionDocument(s))
	}
	if err := writeJSONFile(path, doc); err != nil {
		return err
	}
	logClipDebug("トラックを保存しました: file=%s sections=%d", filepath.Base(path), len(track.Sections))
	return nil
}

// ReadTrack はトラックJSONを読み込む。
func (r *TrackJsonRepository) ReadTrack(path string) (*section.Track, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	doc := trackDocument{}
	if err := readJSONFile(path, &doc); err != nil {
		return nil, err
	}
	track := section.NewTrack(doc.Name)
	for index, sectionDoc := range doc.Sections {
		s, err := sectionDoc.toSection()
		if err != nil {
			return nil, io_common.NewIoParseFailed("セクションの解析に失敗しました: index=%d", err, index)
		}
		track.AddSection(s)
	}
	return track, nil
}

// newSectionDocument はセクションを文書要素へ変換する。
func newSectionDocument(s *section.Section) sectionDocument {
	doc := sectionDocument{
		ID:               s.ID.String(),
		Name:             s.Name,
		BlendType:        s.BlendType.String(),
		Weight:           newFloatChannelDocument(s.Weight),
		DisabledControls: sortedKeys(s.ControlNameMask),
	}
	for _, p := range s.ScalarParameters {
		doc.Scalars = append(doc.Scalars, floatParameterDocument{Name: p.ParameterName, Channel: newFloatChannelDocument(p.Channel)})
	}
	for _, p := range s.BoolParameters {
		doc.Bools = append(doc.Bools, boolParameterDocument{Name: p.ParameterName, Channel: newSteppedChannelDocument(p.Channel)})
	}
	for _, p := range s.EnumParameters {
		doc.Enums = append(doc.Enums, enumParameterDocument{Name: p.ParameterName, Channel: newSteppedChannelDocument(p.Channel)})
	}
	for _, p := range s.IntegerParameters {
		doc.Integers = append(doc.Integers, integerParameterDocument{Name: p.ParameterName, Channel: newSteppedChannelDocument(p.Channel)})
	}
	for _, p := range s.Vector2DParameters {
		doc.Vector2Ds = append(doc.Vector2Ds, vectorParameterDocument{Name: p.ParameterName, Channels: newFloatChannelDocuments(p.Channels[:])})
	}
	for _, p := range s.VectorParameters {
		doc.Vectors = append(doc.Vectors, vectorParameterDocument{Name: p.ParameterName, Channels: newFloatChannelDocuments(p.Channels[:])})
	}
	for _, p := range s.TransformParameters {
		doc.Transforms = append(doc.Transforms, transformParameterDocument{
			Name:        p.ParameterName,
			Translation: newFloatChannelDocuments(p.Translation[:]),
			Rotation:    newFloatChannelDocuments(p.Rotation[:]),
			Scale:       newFloatChannelDocuments(p.Scale[:]),
		})
	}
	for _, sc := range s.SpaceChannels {
		doc.Spaces = append(doc.Spaces, spaceChannelDocument{
			Control: sc.ControlName,
			Channel: mapSteppedChannelDocument(sc.Channel, newSpaceKeyDocument),
		})
	}
	for _, cc := range s.ConstraintsChannels {
		doc.Constraints = append(doc.Constraints, constraintChannelDocument{
			ID:      cc.ConstraintID.String(),
			Name:    cc.ConstraintName,
			Control: cc.ControlName,
			Active:  newSteppedChannelDocument(cc.ActiveChannel),
		})
	}
	return doc
}

// toSection は文書要素からセクションを復元する。
func (d sectionDocument) toSection() (*section.Section, error) {
	blendType := section.BLEND_TYPE_ABSOLUTE
	if strings.EqualFold(d.BlendType, section.BLEND_TYPE_ADDITIVE.String()) {
		blendType = section.BLEND_TYPE_ADDITIVE
	}
	s := section.NewSection(d.Name, blendType)
	if d.ID != "" {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			return nil, err
		}
		s.ID = id
	}
	s.Weight = d.Weight.toChannel()
	for _, p := range d.Scalars {
		s.ScalarParameters = append(s.ScalarParameters, section.ScalarParameter{ParameterName: p.Name, Channel: p.Channel.toChannel()})
	}
	for _, p := range d.Bools {
		s.BoolParameters = append(s.BoolParameters, section.BoolParameter{ParameterName: p.Name, Channel: p.Channel.toChannel()})
	}
	for _, p := range d.Enums {
		s.EnumParameters = append(s.EnumParameters, section.EnumParameter{ParameterName: p.Name, Channel: p.Channel.toChannel()})
	}
	for _, p := range d.Integers {
		s.IntegerParameters = append(s.IntegerParameters, section.IntegerParameter{ParameterName: p.Name, Channel: p.Channel.toChannel()})
	}
	for _, p := range d.Vector2Ds {
		channels, err := toFloatChannels(p.Channels, 2)
		if err != nil {
			return nil, err
		}
		s.Vector2DParameters = append(s.Vector2DParameters, section.Vector2DParameter{
			ParameterName: p.Name,
			Channels:      [2]*channel.FloatChannel{channels[0], channels[1]},
		})
	}
	for _, p := range d.Vectors {
		channels, err := toFloatChannels(p.Channels, 3)
		if err != nil {
			return nil, err
		}
		s.VectorParameters = append(s.VectorParameters, section.VectorParameter{ParameterName: p.Name, Channels: [3]*channel.FloatChannel(channels)})
	}
	for _, p := range d.Transforms {
		parameter := section.TransformParameter{ParameterName: p.Name}
		for _, group := range []struct {
			docs []floatChannelDocument
			dst  *[3]*channel.FloatChannel
		}{{p.Translation, &parameter.Translation}, {p.Rotation, &parameter.Rotation}, {p.Scale, &parameter.Scale}} {
			channels, err := toFloatChannels(group.docs, 3)
			if err != nil {
				return nil, err
			}
			*group.dst = [3]*channel.FloatChannel(channels)
		}
		s.TransformParameters = append(s.TransformParameters, parameter)
	}
	for _, sc := range d.Spaces {
		s.SpaceChannels = append(s.SpaceChannels, section.SpaceChannel{
			ControlName: sc.Control,
			Channel:     mapSteppedChannel(sc.Channel, spaceKeyDocument.toSpaceKey),
		})
	}
	for _, cc := range d.Constraints {
		id, err := uuid.Parse(cc.ID)
		if err != nil {
			return nil, err
		}
		s.ConstraintsChannels = append(s.ConstraintsChannels, section.ConstraintAndActiveChannel{
			ConstraintID:   id,
			ConstraintName: cc.Name,
			ControlName:    cc.Control,
			ActiveChannel:  cc.Active.toChannel(),
		})
	}
	for _, name := range d.DisabledControls {
		s.SetControlNameMask(name, false)
	}
	return s, nil
}

func newFloatChannelDocument(c *channel.FloatChannel) floatChannelDocument {
	doc := floatChannelDocument{Keys: []floatKeyDocument{}}
	if c == nil {
		return doc
	}
	if value, ok := c.DefaultValue(); ok {
		doc.Default = &value
	}
	for _, key := range c.Keys {
		doc.Keys = append(doc.Keys, floatKeyDocument{
			Frame:         int(key.Frame),
			Value:         key.Value,
			Interpolation: key.Interpolation.String(),
			ArriveTangent: key.ArriveTangent,
			LeaveTangent:  key.LeaveTangent,
		})
	}
	return doc
}

func newFloatChannelDocuments(channels []*channel.FloatChannel) []floatChannelDocument {
	docs := make([]floatChannelDocument, 0, len(channels))
	for _, c := range channels {
		docs = append(docs, newFloatChannelDocument(c))
	}
	return docs
}

// toChannel はキーを追加し直してチャンネルを復元する。接線は補間方式から再計算する。
func (d floatChannelDocument) toChannel() *channel.FloatChannel {
	c := channel.NewFloatChannel()
	for _, key := range d.Keys {
		interpolation, _ := channel.ParseInterpolation(key.Interpolation)
		c.AddKey(channel.Frame(key.Frame), key.Value, interpolation)
	}
	if d.Default != nil {
		c.SetDefault(*d.Default)
	}
	return c
}

func toFloatChannels(docs []floatChannelDocument, count int) ([]*channel.FloatChannel, error) {
	if len(docs) != count {
		return nil, io_common.NewIoParseFailed("チャンネル数が不正です: got=%d want=%d", nil, len(docs), count)
	}
	channels := make([]*channel.FloatChannel, 0, count)
	for _, doc := range docs {
		channels = append(channels, doc.toChannel())
	}
	return channels, nil
}

func newSteppedChannelDocument[T comparable](c *channel.SteppedChannel[T]) steppedChannelDocument[T] {
	return mapSteppedChannelDocument(c, func(value T) T { return value })
}

func mapSteppedChannelDocument[T comparable, D comparable](c *channel.SteppedChannel[T], convert func(T) D) steppedChannelDocument[D] {
	doc := steppedChannelDocument[D]{Keys: []steppedKeyDocument[D]{}}
	if c == nil {
		return doc
	}
	if c.HasDefault {
		value := convert(c.Default)
		doc.Default = &value
	}
	for _, key := range c.Keys {
		doc.Keys = append(doc.Keys, steppedKeyDocument[D]{Frame: int(key.Frame), Value: convert(key.Value)})
	}
	return doc
}

func (d steppedChannelDocument[T]) toChannel() *channel.SteppedChannel[T] {
	return mapSteppedChannel(d, func(value T) T { return value })
}

func mapSteppedChannel[D comparable, T comparable](d steppedChannelDocument[D], convert func(D) T) *channel.SteppedChannel[T] {
	c := &channel.SteppedChannel[T]{}
	for _, key := range d.Keys {
		c.AddKey(channel.Frame(key.Frame), convert(key.Value))
	}
	if d.Default != nil {
		c.SetDefault(convert(*d.Default))
	}
	return c
}

func newSpaceKeyDocument(key section.SpaceKey) spaceKeyDocument {
	switch key.SpaceType {
	case rig.SPACE_TYPE_WORLD:
		return spaceKeyDocument{Space: "world"}
	case rig.SPACE_TYPE_CONTROL_RIG:
		return spaceKeyDocument{Space: "element", ElementName: key.ElementKey.Name, ElementType: key.ElementKey.Type.String()}
	default:
		return spaceKeyDocument{Space: "parent"}
	}
}

func (d spaceKeyDocument) toSpaceKey() section.SpaceKey {
	switch d.Space {
	case "world":
		return section.SpaceKey{SpaceType: rig.SPACE_TYPE_WORLD}
	case "element":
		return section.SpaceKey{
			SpaceType:  rig.SPACE_TYPE_CONTROL_RIG,
			ElementKey: rig.ElementKey{Name: d.ElementName, Type: parseElementType(d.ElementType)},
		}
	default:
		return section.SpaceKey{SpaceType: rig.SPACE_TYPE_PARENT}
	}
}

func parseElementType(name string) rig.ElementType {
	for _, elementType := range []rig.ElementType{rig.ELEMENT_TYPE_BONE, rig.ELEMENT_TYPE_CURVE, rig.ELEMENT_TYPE_CONTROL} {
		if elementType.String() == name {
			return elementType
		}
	}
	return rig.ELEMENT_TYPE_NONE
}
