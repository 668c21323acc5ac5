// 指示: miu200521358
package model

import (
	"bytes"
	"math"

	"github.com/goccy/go-json"
)

// Skins はスキン一覧。配列形式と名前キー形式の両方を保持する。
type Skins struct {
	// Keyed は入力が名前キー形式だった場合 true。
	Keyed bool
	Items []*Skin
}

// Skin は1スキン分の添付一覧を表す。
type Skin struct {
	Name string
	// Bones はスキン専用ボーン一覧。入力に無い場合 nil。
	Bones []string
	// Attachments はスロット名 -> 添付名 -> 添付。
	Attachments map[string]map[string]*Attachment
	Extra       map[string]json.RawMessage
}

// Attachment はスキン添付を表す。ウェイト付き頂点のみ型付きで保持する。
type Attachment struct {
	Fields map[string]json.RawMessage
	// Weighted は vertices を頂点ごとのボーンウェイトとして復号できた場合 true。
	Weighted bool
	Vertices []WeightedVertex
}

// WeightedVertex は1頂点に影響するボーンウェイト列。
type WeightedVertex struct {
	Bones []BoneWeight
}

// BoneWeight は頂点に対する1ボーン分の影響。
type BoneWeight struct {
	BoneIndex int
	X         float64
	Y         float64
	Weight    float64
}

// UnmarshalJSON はスキン一覧を配列形式または名前キー形式として復号する。
func (s *Skins) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*s = Skins{}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		items := []*Skin{}
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		s.Items = items
		return nil
	}
	raw := map[string]map[string]map[string]*Attachment{}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	s.Keyed = true
	for _, name := range sortedKeys(raw) {
		s.Items = append(s.Items, &Skin{Name: name, Attachments: raw[name]})
	}
	return nil
}

// MarshalJSON は入力と同じ形式で書き出す。
func (s *Skins) MarshalJSON() ([]byte, error) {
	if !s.Keyed {
		items := s.Items
		if items == nil {
			items = []*Skin{}
		}
		return json.Marshal(items)
	}
	keyed := make(map[string]map[string]map[string]*Attachment, len(s.Items))
	for _, skin := range s.Items {
		if skin == nil {
			continue
		}
		attachments := skin.Attachments
		if attachments == nil {
			attachments = map[string]map[string]*Attachment{}
		}
		keyed[skin.Name] = attachments
	}
	return json.Marshal(keyed)
}

// UnmarshalJSON は配列形式のスキンを復号する。
func (s *Skin) UnmarshalJSON(data []byte) error {
	raw, err := decodeRawObject(data)
	if err != nil {
		return err
	}
	*s = Skin{}
	if _, err := raw.take("name", &s.Name); err != nil {
		return err
	}
	bones := []string{}
	found, err := raw.take("bones", &bones)
	if err != nil {
		return err
	}
	if found {
		s.Bones = bones
	}
	attachments := map[string]map[string]*Attachment{}
	found, err = raw.take("attachments", &attachments)
	if err != nil {
		return err
	}
	if found {
		s.Attachments = attachments
	}
	s.Extra = raw.rest()
	return nil
}

// MarshalJSON は配列形式のスキンを書き出す。
func (s *Skin) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.field("name", s.Name)
	if s.Bones != nil {
		w.field("bones", s.Bones)
	}
	w.extras(s.Extra)
	if s.Attachments != nil {
		w.field("attachments", s.Attachments)
	}
	return w.bytes()
}

// VertexCount は vertexCount、無ければ uvs の半数を返す。判定できない場合は0。
func (a *Attachment) VertexCount() int {
	var count float64
	if value, ok := a.Fields["vertexCount"]; ok {
		if err := json.Unmarshal(value, &count); err == nil && !math.IsNaN(count) {
			return int(math.Floor(count))
		}
	}
	if value, ok := a.Fields["uvs"]; ok {
		uvs := []json.RawMessage{}
		if err := json.Unmarshal(value, &uvs); err == nil {
			return len(uvs) / 2
		}
	}
	return 0
}

// UnmarshalJSON は添付を復号し、ウェイト付き頂点列を頂点単位に分解する。
func (a *Attachment) UnmarshalJSON(data []byte) error {
	raw, err := decodeRawObject(data)
	if err != nil {
		return err
	}
	*a = Attachment{Fields: raw.rest()}
	vertexCount := a.VertexCount()
	value, ok := a.Fields["vertices"]
	if !ok || vertexCount <= 0 {
		return nil
	}
	packed := []float64{}
	if err := json.Unmarshal(value, &packed); err != nil {
		return nil
	}
	if len(packed) <= vertexCount*2 {
		return nil
	}
	vertices, ok := unpackWeightedVertices(packed)
	if !ok {
		return nil
	}
	delete(a.Fields, "vertices")
	a.Weighted = true
	a.Vertices = vertices
	return nil
}

// MarshalJSON は添付を書き出す。ウェイト付き頂点はここで詰め直す。
func (a *Attachment) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	if a.Weighted {
		w.field("vertices", packWeightedVertices(a.Vertices))
		w.extras(a.Fields, "vertices")
	} else {
		w.extras(a.Fields)
	}
	return w.bytes()
}

// unpackWeightedVertices は [ボーン数, (index, x, y, weight)×ボーン数, ...] を分解する。
func unpackWeightedVertices(packed []float64) ([]WeightedVertex, bool) {
	vertices := make([]WeightedVertex, 0)
	cursor := 0
	for cursor < len(packed) {
		boneCount := int(math.Floor(packed[cursor]))
		if boneCount <= 0 {
			return nil, false
		}
		end := cursor + 1 + boneCount*4
		if end > len(packed) {
			return nil, false
		}
		vertex := WeightedVertex{Bones: make([]BoneWeight, 0, boneCount)}
		for offset := cursor + 1; offset < end; offset += 4 {
			vertex.Bones = append(vertex.Bones, BoneWeight{
				BoneIndex: int(math.Floor(packed[offset])),
				X:         packed[offset+1],
				Y:         packed[offset+2],
				Weight:    packed[offset+3],
			})
		}
		vertices = append(vertices, vertex)
		cursor = end
	}
	return vertices, true
}

func packWeightedVertices(vertices []WeightedVertex) []float64 {
	packed := make([]float64, 0)
	for _, vertex := range vertices {
		packed = append(packed, float64(len(vertex.Bones)))
		for _, weight := range vertex.Bones {
			packed = append(packed, float64(weight.BoneIndex), weight.X, weight.Y, weight.Weight)
		}
	}
	return packed
}

// ForEachAttachment は全添付をスキン名、スロット名、添付名の順に走査する。
func (s *Skins) ForEachAttachment(visit func(skin *Skin, slotName, attachmentName string, attachment *Attachment)) {
	if s == nil {
		return
	}
	for _, skin := range s.Items {
		if skin == nil {
			continue
		}
		for _, slotName := range sortedKeys(skin.Attachments) {
			attachments := skin.Attachments[slotName]
			for _, attachmentName := range sortedKeys(attachments) {
				if attachment := attachments[attachmentName]; attachment != nil {
					visit(skin, slotName, attachmentName, attachment)
				}
			}
		}
	}
}
