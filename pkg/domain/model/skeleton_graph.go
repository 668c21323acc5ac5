// 指示: miu200521358
package model

import (
	"fmt"
	"sort"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/mmath"
)

// WorldTransforms は全ボーンのワールド変換を返す。親が存在しないボーンはルート扱い、循環は打ち切る。
func (s *Skeleton) WorldTransforms() map[string]mmath.BoneTransform {
	byName := make(map[string]*Bone, len(s.Bones))
	for _, bone := range s.Bones {
		if bone != nil && bone.Name != "" {
			if _, exists := byName[bone.Name]; !exists {
				byName[bone.Name] = bone
			}
		}
	}
	world := make(map[string]mmath.BoneTransform, len(byName))
	visiting := make(map[string]bool, len(byName))
	var resolve func(name string) (mmath.BoneTransform, bool)
	resolve = func(name string) (mmath.BoneTransform, bool) {
		if transform, ok := world[name]; ok {
			return transform, true
		}
		bone, ok := byName[name]
		if !ok {
			return mmath.BoneTransform{}, false
		}
		if visiting[name] {
			return mmath.BoneTransform{}, false
		}
		visiting[name] = true
		local := bone.LocalTransform()
		var composed mmath.BoneTransform
		if parent, ok := resolve(bone.Parent); ok && bone.Parent != "" {
			composed = mmath.Compose(local, &parent)
		} else {
			composed = mmath.Compose(local, nil)
		}
		visiting[name] = false
		world[name] = composed
		return composed, true
	}
	for _, bone := range s.Bones {
		if bone != nil && bone.Name != "" {
			resolve(bone.Name)
		}
	}
	return world
}

// Roots は親を持たないボーンを出現順で返す。
func (s *Skeleton) Roots() []*Bone {
	roots := make([]*Bone, 0, 1)
	for _, bone := range s.Bones {
		if bone != nil && bone.Parent == "" {
			roots = append(roots, bone)
		}
	}
	return roots
}

// ValidateTree はボーン木の整合性を検証し、違反内容を返す。
// ルートがちょうど1つ、名前が一意、親が存在し、循環が無いことを確認する。
func (s *Skeleton) ValidateTree() []string {
	violations := make([]string, 0)
	byName := make(map[string]*Bone, len(s.Bones))
	for index, bone := range s.Bones {
		if bone == nil || bone.Name == "" {
			violations = append(violations, fmt.Sprintf("bones[%d] に名前がありません", index))
			continue
		}
		if _, exists := byName[bone.Name]; exists {
			violations = append(violations, fmt.Sprintf("ボーン名が重複しています: %s", bone.Name))
			continue
		}
		byName[bone.Name] = bone
	}
	if roots := s.Roots(); len(roots) != 1 {
		violations = append(violations, fmt.Sprintf("ルートボーン数が不正です: %d", len(roots)))
	}
	for _, bone := range s.Bones {
		if bone == nil || bone.Parent == "" {
			continue
		}
		if _, ok := byName[bone.Parent]; !ok {
			violations = append(violations, fmt.Sprintf("親ボーンが存在しません: %s -> %s", bone.Name, bone.Parent))
			continue
		}
		seen := map[string]struct{}{bone.Name: {}}
		current := byName[bone.Parent]
		for current != nil {
			if _, looped := seen[current.Name]; looped {
				violations = append(violations, fmt.Sprintf("ボーン階層が循環しています: %s", bone.Name))
				break
			}
			seen[current.Name] = struct{}{}
			if current.Parent == "" {
				break
			}
			current = byName[current.Parent]
		}
	}
	return violations
}

// MissingBoneReferences はボーンを参照する全要素のうち、存在しないボーン名を検出順で返す。
// 対象はスロット、制約の target と bones、アニメーションのボーンキー、スキンの bones 一覧。
func (s *Skeleton) MissingBoneReferences() []string {
	bones := s.BoneNames()
	slots := s.SlotNames()
	missing := make([]string, 0)
	seen := make(map[string]struct{})
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := bones[name]; ok {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		missing = append(missing, name)
	}
	for _, slot := range s.Slots {
		if slot != nil {
			add(slot.Bone)
		}
	}
	for _, group := range s.Constraints() {
		for _, constraint := range *group.Items {
			if constraint == nil {
				continue
			}
			if !(group.Label == ConstraintLabelPath && isSlotName(slots, constraint.Target)) {
				add(constraint.Target)
			}
			for _, name := range constraint.Bones {
				add(name)
			}
		}
	}
	for _, animationName := range s.AnimationNames() {
		animation := s.Animations[animationName]
		if animation == nil {
			continue
		}
		for _, boneName := range sortedKeys(animation.Bones) {
			add(boneName)
		}
	}
	if s.Skins != nil {
		for _, skin := range s.Skins.Items {
			if skin == nil {
				continue
			}
			for _, name := range skin.Bones {
				add(name)
			}
		}
	}
	return missing
}

func isSlotName(slots map[string]struct{}, name string) bool {
	_, ok := slots[name]
	return ok
}

// AnimationNames はアニメーション名を名前順で返す。
func (s *Skeleton) AnimationNames() []string {
	names := make([]string, 0, len(s.Animations))
	for name := range s.Animations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
