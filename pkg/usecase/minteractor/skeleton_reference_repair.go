// 指示: miu200521358
package minteractor

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
)

// constraintLabels はレポートに出す制約種別名。
var constraintLabels = map[string]string{
	model.ConstraintLabelIK:        "IK",
	model.ConstraintLabelTransform: "transform",
	model.ConstraintLabelPath:      "path",
}

// cachedReference は参照解決結果。ok が false の場合は除外済み。
type cachedReference struct {
	name string
	ok   bool
}

// referenceRepairer は作り直したボーン一覧に合わせて旧ボーンへの参照を修復する。
type referenceRepairer struct {
	originalBones   []*model.Bone
	originalByName  map[string]*model.Bone
	converted       *model.Skeleton
	rootName        string
	policy          string
	report          *model.SkeletonConversionReport
	boneNames       map[string]struct{}
	normalizedIndex normalizedNameIndex
	cache           map[string]cachedReference
}

func newReferenceRepairer(
	original *model.Skeleton,
	converted *model.Skeleton,
	rootName string,
	policy string,
	report *model.SkeletonConversionReport,
) *referenceRepairer {
	originalByName := make(map[string]*model.Bone, len(original.Bones))
	for _, bone := range original.Bones {
		if bone != nil && bone.Name != "" {
			if _, exists := originalByName[bone.Name]; !exists {
				originalByName[bone.Name] = bone
			}
		}
	}
	boneNames := converted.BoneNames()
	names := make([]string, 0, len(converted.Bones))
	for _, bone := range converted.Bones {
		names = append(names, bone.Name)
	}
	return &referenceRepairer{
		originalBones:   original.Bones,
		originalByName:  originalByName,
		converted:       converted,
		rootName:        rootName,
		policy:          policy,
		report:          report,
		boneNames:       boneNames,
		normalizedIndex: newNormalizedNameIndex(names),
		cache:           map[string]cachedReference{},
	}
}

// resolve は旧ボーン名を新しいボーン名へ解決する。完全一致、正規化一致、ポリシーの順に判定する。
func (r *referenceRepairer) resolve(name, context string, allowSkip bool) (string, bool, error) {
	if name == "" {
		return "", false, nil
	}
	if cached, ok := r.cache[name]; ok {
		return cached.name, cached.ok, nil
	}
	if _, ok := r.boneNames[name]; ok {
		r.cache[name] = cachedReference{name: name, ok: true}
		return name, true, nil
	}
	if match, ok := r.normalizedIndex.resolve(name); ok {
		r.cache[name] = cachedReference{name: match, ok: true}
		return match, true, nil
	}

	switch {
	case r.policy == model.MismatchPolicyStrictFail:
		return "", false, merrors.NewInputError("fbx-first 変換で \"%s\" (%s) を再割当できません", name, context)
	case r.policy == model.MismatchPolicySkipMissing && allowSkip:
		r.cache[name] = cachedReference{}
		r.report.Warnings = append(r.report.Warnings, fmt.Sprintf(
			"Skipped unresolved bone reference \"%s\" (%s).", name, context,
		))
		return "", false, nil
	}

	compatibility := r.ensureCompatibilityBone(name, map[string]struct{}{})
	r.cache[name] = cachedReference{name: compatibility, ok: true}
	r.report.Warnings = append(r.report.Warnings, fmt.Sprintf(
		"Added compatibility bone \"%s\" for unresolved %s.", name, context,
	))
	return compatibility, true, nil
}

// remap は resolve した上で名前が変わった参照を数える。
func (r *referenceRepairer) remap(name, context string) (string, bool, error) {
	resolved, ok, err := r.resolve(name, context, true)
	if err != nil {
		return "", false, err
	}
	if ok && resolved != name {
		r.report.RemappedReferences++
	}
	return resolved, ok, nil
}

// ensureCompatibilityBone は旧ボーンを複製した互換ボーンを追加する。親も必要なら再帰的に追加し、循環時はルートに付ける。
func (r *referenceRepairer) ensureCompatibilityBone(name string, stack map[string]struct{}) string {
	if name == "" {
		return r.rootName
	}
	if _, ok := r.boneNames[name]; ok {
		return name
	}
	if _, looping := stack[name]; looping {
		return r.rootName
	}

	stack[name] = struct{}{}
	originalBone := r.originalByName[name]
	parentName := r.rootName
	if originalBone != nil && originalBone.Parent != "" && originalBone.Parent != name {
		parentName = r.ensureCompatibilityBone(originalBone.Parent, stack)
	}
	delete(stack, name)

	var bone *model.Bone
	if originalBone != nil {
		bone = originalBone.Clone()
	} else {
		bone = model.NewBone(name, "")
	}
	bone.Name = name
	bone.Parent = parentName
	if parentName == name {
		bone.Parent = ""
	}
	r.converted.Bones = append(r.converted.Bones, bone)
	r.boneNames[name] = struct{}{}
	r.report.CompatibilityBonesAdded = append(r.report.CompatibilityBonesAdded, name)
	return name
}

func nameOrUnknown(name string) string {
	if name == "" {
		return "unknown"
	}
	return name
}

// repairSlots はスロットの bone を付け替える。除外された場合はルートへ付け替える。
func (r *referenceRepairer) repairSlots() error {
	for _, slot := range r.converted.Slots {
		if slot == nil || slot.Bone == "" {
			continue
		}
		resolved, ok, err := r.remap(slot.Bone, fmt.Sprintf("slot \"%s\"", nameOrUnknown(slot.Name)))
		if err != nil {
			return err
		}
		if !ok {
			resolved = r.rootName
		}
		slot.Bone = resolved
	}
	return nil
}

// repairConstraints は IK / transform / path 制約の target と bones を付け替える。
// skip-missing では target を失ったか bones が空になった制約を除く。スロットを指す path の target は対象外。
func (r *referenceRepairer) repairConstraints() error {
	slotNames := r.converted.SlotNames()
	for _, group := range r.converted.Constraints() {
		label := constraintLabels[group.Label]
		repaired := make([]*model.Constraint, 0, len(*group.Items))
		for _, constraint := range *group.Items {
			if constraint == nil {
				continue
			}
			constraintName := nameOrUnknown(constraint.Name)
			targetLost := false
			_, targetIsSlot := slotNames[constraint.Target]
			if constraint.Target != "" && !(group.Label == model.ConstraintLabelPath && targetIsSlot) {
				resolved, ok, err := r.remap(constraint.Target, fmt.Sprintf("%s target \"%s\"", label, constraintName))
				if err != nil {
					return err
				}
				if ok {
					constraint.Target = resolved
				} else {
					constraint.Target = ""
					targetLost = true
				}
			}
			if constraint.Bones != nil {
				bones := make([]string, 0, len(constraint.Bones))
				for _, boneName := range constraint.Bones {
					resolved, ok, err := r.remap(boneName, fmt.Sprintf("%s bones \"%s\"", label, constraintName))
					if err != nil {
						return err
					}
					if ok {
						bones = append(bones, resolved)
					}
				}
				constraint.Bones = bones
			}
			if r.policy == model.MismatchPolicySkipMissing && (targetLost || (constraint.Bones != nil && len(constraint.Bones) == 0)) {
				r.report.Warnings = append(r.report.Warnings, fmt.Sprintf(
					"Dropped %s constraint \"%s\" due to unresolved bone references.", label, constraintName,
				))
				continue
			}
			repaired = append(repaired, constraint)
		}
		if *group.Items != nil {
			*group.Items = repaired
		}
	}
	return nil
}

// repairAnimations は全アニメーションのボーン別タイムラインのキーを付け替える。同じボーンに集まった場合は統合する。
func (r *referenceRepairer) repairAnimations() error {
	for _, animationName := range r.converted.AnimationNames() {
		animation := r.converted.Animations[animationName]
		if animation == nil || animation.Bones == nil {
			continue
		}
		keys := make([]string, 0, len(animation.Bones))
		for key := range animation.Bones {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		next := make(map[string]json.RawMessage, len(animation.Bones))
		for _, boneName := range keys {
			resolved, ok, err := r.remap(boneName, fmt.Sprintf("animation \"%s\"", animationName))
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			timeline := animation.Bones[boneName]
			if existing, dup := next[resolved]; dup {
				next[resolved] = mergeTimelineObjects(existing, timeline)
				r.report.Warnings = append(r.report.Warnings, fmt.Sprintf(
					"Merged duplicate animation bone timelines into \"%s\" while remapping \"%s\".", resolved, animationName,
				))
				continue
			}
			next[resolved] = timeline
		}
		animation.Bones = next
	}
	return nil
}

// mergeTimelineObjects はタイムライン種別単位で後勝ちに統合する。オブジェクトでない場合は後者を採用する。
func mergeTimelineObjects(base, overlay json.RawMessage) json.RawMessage {
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return overlay
	}
	extra := map[string]json.RawMessage{}
	if err := json.Unmarshal(overlay, &extra); err != nil {
		return overlay
	}
	for key, value := range extra {
		merged[key] = value
	}
	encoded, err := json.Marshal(merged)
	if err != nil {
		return overlay
	}
	return encoded
}

// repairSkinBones はスキン専用ボーン一覧を付け替える。解決できない名前は除く。
func (r *referenceRepairer) repairSkinBones() error {
	if r.converted.Skins == nil {
		return nil
	}
	for _, skin := range r.converted.Skins.Items {
		if skin == nil || skin.Bones == nil {
			continue
		}
		bones := make([]string, 0, len(skin.Bones))
		for _, boneName := range skin.Bones {
			resolved, ok, err := r.remap(boneName, fmt.Sprintf("skin bones \"%s\"", nameOrUnknown(skin.Name)))
			if err != nil {
				return err
			}
			if ok {
				bones = append(bones, resolved)
			}
		}
		skin.Bones = bones
	}
	return nil
}

// dropMissing は skip-missing で残った未解決参照を除去し、スロットはルートへ付け替える。
func (r *referenceRepairer) dropMissing(missing []string) {
	missingSet := make(map[string]struct{}, len(missing))
	for _, name := range missing {
		missingSet[name] = struct{}{}
	}
	isMissing := func(name string) bool {
		_, ok := missingSet[name]
		return ok
	}
	filter := func(names []string) []string {
		if names == nil {
			return nil
		}
		kept := make([]string, 0, len(names))
		for _, name := range names {
			if !isMissing(name) {
				kept = append(kept, name)
			}
		}
		return kept
	}

	for _, slot := range r.converted.Slots {
		if slot != nil && isMissing(slot.Bone) {
			slot.Bone = r.rootName
		}
	}
	for _, group := range r.converted.Constraints() {
		if *group.Items == nil {
			continue
		}
		kept := make([]*model.Constraint, 0, len(*group.Items))
		for _, constraint := range *group.Items {
			if constraint == nil {
				continue
			}
			constraint.Bones = filter(constraint.Bones)
			if isMissing(constraint.Target) {
				continue
			}
			kept = append(kept, constraint)
		}
		*group.Items = kept
	}
	for _, animation := range r.converted.Animations {
		if animation == nil {
			continue
		}
		for boneName := range animation.Bones {
			if isMissing(boneName) {
				delete(animation.Bones, boneName)
			}
		}
	}
	if r.converted.Skins != nil {
		for _, skin := range r.converted.Skins.Items {
			if skin != nil {
				skin.Bones = filter(skin.Bones)
			}
		}
	}
}
