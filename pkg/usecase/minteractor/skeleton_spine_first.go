// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/mmath"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
)

// convertSpineFirst は既存ボーンを全て残し、対応の無いソースノードをボーンとして追加する。
func convertSpineFirst(
	skeleton *model.Skeleton,
	nodes []*sourceNode,
	humanoid *model.CanonicalHumanoid,
	entries []model.TargetBoneEntry,
	policy string,
	report *model.SkeletonConversionReport,
) (*model.Skeleton, error) {
	if len(skeleton.Bones) > 0 {
		if violations := skeleton.ValidateTree(); len(violations) > 0 {
			return nil, merrors.NewInputError("入力スケルトンのボーン階層が不正です: %s", strings.Join(violations, ", "))
		}
	}

	converted := skeleton.Clone()
	existing := converted.BoneNames()
	existingNames := make([]string, 0, len(converted.Bones))
	for _, bone := range converted.Bones {
		existingNames = append(existingNames, bone.Name)
	}
	normalizedIndex := newNormalizedNameIndex(existingNames)

	sourceToBone := map[string]string{}
	for _, anchor := range canonicalAnchors(humanoid, entries) {
		if _, ok := existing[anchor.boneName]; ok {
			sourceToBone[anchor.sourceName] = anchor.boneName
		}
	}

	geometry := buildConversionGeometry(nodes, humanoid, entries, converted, report)
	for _, node := range geometry.nodes {
		if _, mapped := sourceToBone[node.name]; mapped {
			continue
		}
		if _, ok := existing[node.name]; ok {
			sourceToBone[node.name] = node.name
			continue
		}
		if match, ok := normalizedIndex.resolve(node.name); ok {
			sourceToBone[node.name] = match
		}
	}

	rootName := ensureFallbackRoot(converted, report)
	if rootName == "" {
		return nil, merrors.NewInputError("spine-first 変換でルートボーンを決定できません")
	}

	usedNames := converted.BoneNames()
	workingWorld := converted.WorldTransforms()
	unresolved := make([]string, 0)

	for _, node := range geometry.nodes {
		if _, mapped := sourceToBone[node.name]; mapped {
			continue
		}
		switch policy {
		case model.MismatchPolicyStrictFail:
			unresolved = append(unresolved, node.name)
			continue
		case model.MismatchPolicySkipMissing:
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"Skipped unmapped FBX source node \"%s\" due to skeleton mismatch policy.", node.name,
			))
			continue
		}

		boneName := generateUniqueBoneName(node.name, usedNames)
		parentName, ok := sourceToBone[node.parentName]
		if !ok || node.parentName == "" {
			parentName = rootName
		}
		parentWorld, ok := workingWorld[parentName]
		if !ok {
			parentWorld = mmath.IdentityTransform()
		}
		bone := geometry.placeBone(node, boneName, parentName, parentWorld)
		converted.Bones = append(converted.Bones, bone)
		report.AddedBones = append(report.AddedBones, boneName)
		sourceToBone[node.name] = boneName
		workingWorld[boneName] = mmath.Compose(bone.LocalTransform(), &parentWorld)
	}

	if len(unresolved) > 0 {
		return nil, merrors.NewInputError(
			"spine-first 変換は strict-fail ポリシーにより失敗しました。未対応ノード: %s", strings.Join(unresolved, ", "),
		)
	}
	return converted, nil
}

// ensureFallbackRoot は最初の親なしボーン (無ければ先頭ボーン) の名前を返す。ボーンが無い場合は root を追加する。
func ensureFallbackRoot(skeleton *model.Skeleton, report *model.SkeletonConversionReport) string {
	if len(skeleton.Bones) > 0 {
		for _, bone := range skeleton.Bones {
			if bone != nil && bone.Parent == "" {
				return bone.Name
			}
		}
		if skeleton.Bones[0] != nil {
			return skeleton.Bones[0].Name
		}
		return ""
	}
	skeleton.Bones = append(skeleton.Bones, model.NewBone(model.RootBoneName, ""))
	report.AddedBones = append(report.AddedBones, model.RootBoneName)
	return model.RootBoneName
}
