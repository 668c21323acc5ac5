// 指示: miu200521358
package model

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/mmath"
	"github.com/tiendc/go-deepcopy"
)

// Bone はスケルトンのボーンを表す。座標と回転は親ローカル。
type Bone struct {
	Name     string
	Parent   string
	X        float64
	Y        float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
	Length   float64
	Extra    map[string]json.RawMessage
}

// NewBone は既定スケールのボーンを生成する。
func NewBone(name, parent string) *Bone {
	return &Bone{Name: name, Parent: parent, ScaleX: 1, ScaleY: 1}
}

// LocalTransform はボーンのローカル変換を返す。
func (b *Bone) LocalTransform() mmath.BoneTransform {
	return mmath.BoneTransform{X: b.X, Y: b.Y, Rotation: b.Rotation, ScaleX: b.ScaleX, ScaleY: b.ScaleY}
}

// Clone はボーンの深い複製を返す。
func (b *Bone) Clone() *Bone {
	var out Bone
	if err := deepcopy.Copy(&out, b); err != nil {
		panic(fmt.Sprintf("ボーンの複製に失敗しました: %v", err))
	}
	return &out
}

// UnmarshalJSON はボーンを復号する。
func (b *Bone) UnmarshalJSON(data []byte) error {
	raw, err := decodeRawObject(data)
	if err != nil {
		return err
	}
	*b = Bone{ScaleX: 1, ScaleY: 1}
	if _, err := raw.take("name", &b.Name); err != nil {
		return err
	}
	if _, err := raw.take("parent", &b.Parent); err != nil {
		return err
	}
	raw.takeNumber("length", &b.Length)
	raw.takeNumber("rotation", &b.Rotation)
	raw.takeNumber("x", &b.X)
	raw.takeNumber("y", &b.Y)
	raw.takeNumber("scaleX", &b.ScaleX)
	raw.takeNumber("scaleY", &b.ScaleY)
	b.Extra = raw.rest()
	return nil
}

// MarshalJSON は既定値のフィールドを省略して書き出す。
func (b *Bone) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.field("name", b.Name)
	if b.Parent != "" {
		w.field("parent", b.Parent)
	}
	if b.Length != 0 {
		w.field("length", b.Length)
	}
	if b.Rotation != 0 {
		w.field("rotation", b.Rotation)
	}
	if b.X != 0 {
		w.field("x", b.X)
	}
	if b.Y != 0 {
		w.field("y", b.Y)
	}
	if b.ScaleX != 1 {
		w.field("scaleX", b.ScaleX)
	}
	if b.ScaleY != 1 {
		w.field("scaleY", b.ScaleY)
	}
	w.extras(b.Extra)
	return w.bytes()
}

// Slot はスロットを表す。
type Slot struct {
	Name  string
	Bone  string
	Extra map[string]json.RawMessage
}

// UnmarshalJSON はスロットを復号する。
func (s *Slot) UnmarshalJSON(data []byte) error {
	raw, err := decodeRawObject(data)
	if err != nil {
		return err
	}
	*s = Slot{}
	if _, err := raw.take("name", &s.Name); err != nil {
		return err
	}
	if _, err := raw.take("bone", &s.Bone); err != nil {
		return err
	}
	s.Extra = raw.rest()
	return nil
}

// MarshalJSON はスロットを書き出す。
func (s *Slot) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.field("name", s.Name)
	w.field("bone", s.Bone)
	w.extras(s.Extra)
	return w.bytes()
}

// Constraint は IK / transform / path 制約を表す。
type Constraint struct {
	Name   string
	Target string
	// Bones は入力に bones が無い場合 nil、空配列の場合は長さ0。
	Bones []string
	Extra map[string]json.RawMessage
}

// UnmarshalJSON は制約を復号する。
func (c *Constraint) UnmarshalJSON(data []byte) error {
	raw, err := decodeRawObject(data)
	if err != nil {
		return err
	}
	*c = Constraint{}
	if _, err := raw.take("name", &c.Name); err != nil {
		return err
	}
	if _, err := raw.take("target", &c.Target); err != nil {
		return err
	}
	bones := []string{}
	found, err := raw.take("bones", &bones)
	if err != nil {
		return err
	}
	if found {
		c.Bones = bones
	}
	c.Extra = raw.rest()
	return nil
}

// MarshalJSON は制約を書き出す。
func (c *Constraint) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.field("name", c.Name)
	if c.Bones != nil {
		w.field("bones", c.Bones)
	}
	if c.Target != "" {
		w.field("target", c.Target)
	}
	w.extras(c.Extra)
	return w.bytes()
}

// Animation はアニメーション1件。ボーン別タイムラインは未加工の JSON で保持する。
type Animation struct {
	Bones map[string]json.RawMessage
	Extra map[string]json.RawMessage
}

// UnmarshalJSON はアニメーションを復号する。
func (a *Animation) UnmarshalJSON(data []byte) error {
	raw, err := decodeRawObject(data)
	if err != nil {
		return err
	}
	*a = Animation{}
	bones := map[string]json.RawMessage{}
	found, err := raw.take("bones", &bones)
	if err != nil {
		return err
	}
	if found {
		a.Bones = bones
	}
	a.Extra = raw.rest()
	return nil
}

// MarshalJSON はアニメーションを書き出す。
func (a *Animation) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	if a.Bones != nil {
		w.field("bones", a.Bones)
	}
	w.extras(a.Extra)
	return w.bytes()
}

// Skeleton はスケルトン JSON 全体を表す。
type Skeleton struct {
	Bones      []*Bone
	Slots      []*Slot
	IK         []*Constraint
	Transform  []*Constraint
	Path       []*Constraint
	Skins      *Skins
	Animations map[string]*Animation
	Extra      map[string]json.RawMessage
}

// UnmarshalJSON はスケルトンを復号する。bones が配列でない場合はエラー。
func (s *Skeleton) UnmarshalJSON(data []byte) error {
	raw, err := decodeRawObject(data)
	if err != nil {
		return err
	}
	*s = Skeleton{}
	bones := []*Bone{}
	found, err := raw.take("bones", &bones)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("bones 配列がありません")
	}
	s.Bones = bones
	if err := takeSlice(raw, "slots", &s.Slots); err != nil {
		return err
	}
	if err := takeSlice(raw, "ik", &s.IK); err != nil {
		return err
	}
	if err := takeSlice(raw, "transform", &s.Transform); err != nil {
		return err
	}
	if err := takeSlice(raw, "path", &s.Path); err != nil {
		return err
	}
	skins := &Skins{}
	found, err = raw.take("skins", skins)
	if err != nil {
		return err
	}
	if found {
		s.Skins = skins
	}
	animations := map[string]*Animation{}
	found, err = raw.take("animations", &animations)
	if err != nil {
		return err
	}
	if found {
		s.Animations = animations
	}
	s.Extra = raw.rest()
	return nil
}

func takeSlice[T any](raw rawObject, key string, dst *[]T) error {
	values := []T{}
	found, err := raw.take(key, &values)
	if err != nil {
		return err
	}
	if found {
		*dst = values
	}
	return nil
}

// MarshalJSON はスケルトンを書き出す。
func (s *Skeleton) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	if header, ok := s.Extra["skeleton"]; ok {
		w.raw("skeleton", header)
	}
	bones := s.Bones
	if bones == nil {
		bones = []*Bone{}
	}
	w.field("bones", bones)
	if s.Slots != nil {
		w.field("slots", s.Slots)
	}
	if s.IK != nil {
		w.field("ik", s.IK)
	}
	if s.Transform != nil {
		w.field("transform", s.Transform)
	}
	if s.Path != nil {
		w.field("path", s.Path)
	}
	if s.Skins != nil {
		w.field("skins", s.Skins)
	}
	w.extras(s.Extra, "skeleton")
	if s.Animations != nil {
		w.field("animations", s.Animations)
	}
	return w.bytes()
}

// Clone はスケルトンの深い複製を返す。
func (s *Skeleton) Clone() *Skeleton {
	if s == nil {
		return nil
	}
	var out Skeleton
	if err := deepcopy.Copy(&out, s); err != nil {
		// 複製対象は JSON 由来の値のみで失敗しない。
		panic(fmt.Sprintf("スケルトンの複製に失敗しました: %v", err))
	}
	return &out
}

// BoneNames はボーン名集合を返す。
func (s *Skeleton) BoneNames() map[string]struct{} {
	names := make(map[string]struct{}, len(s.Bones))
	for _, bone := range s.Bones {
		if bone != nil && bone.Name != "" {
			names[bone.Name] = struct{}{}
		}
	}
	return names
}

// BoneByName は名前でボーンを引く。
func (s *Skeleton) BoneByName(name string) (*Bone, bool) {
	for _, bone := range s.Bones {
		if bone != nil && bone.Name == name {
			return bone, true
		}
	}
	return nil, false
}

// Constraints は IK / transform / path 制約を種別付きで返す。
func (s *Skeleton) Constraints() []LabeledConstraints {
	return []LabeledConstraints{
		{Label: ConstraintLabelIK, Items: &s.IK},
		{Label: ConstraintLabelTransform, Items: &s.Transform},
		{Label: ConstraintLabelPath, Items: &s.Path},
	}
}

// LabeledConstraints は制約種別と一覧への参照。
type LabeledConstraints struct {
	Label string
	Items *[]*Constraint
}

const (
	ConstraintLabelIK        = "ik"
	ConstraintLabelTransform = "transform"
	ConstraintLabelPath      = "path"
)

// SlotNames はスロット名集合を返す。
func (s *Skeleton) SlotNames() map[string]struct{} {
	names := make(map[string]struct{}, len(s.Slots))
	for _, slot := range s.Slots {
		if slot != nil && slot.Name != "" {
			names[slot.Name] = struct{}{}
		}
	}
	return names
}
