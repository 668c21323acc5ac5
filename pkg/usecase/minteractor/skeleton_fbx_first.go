// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/mmath"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
)

// convertFbxFirst はルートボーンのみ残してソース階層からボーンを作り直し、既存の参照を修復する。
func convertFbxFirst(
	original *model.Skeleton,
	nodes []*sourceNode,
	humanoid *model.CanonicalHumanoid,
	entries []model.TargetBoneEntry,
	policy string,
	report *model.SkeletonConversionReport,
) (*model.Skeleton, error) {
	geometry := buildConversionGeometry(nodes, humanoid, entries, original, report)
	converted := original.Clone()

	rootBone := pickRebuildRoot(converted)
	rootBone.Parent = ""
	rootName := rootBone.Name

	preferredNames := map[string]string{}
	for _, anchor := range canonicalAnchors(humanoid, entries) {
		preferredNames[anchor.sourceName] = anchor.boneName
	}

	usedNames := map[string]struct{}{rootName: {}}
	sourceToBone := make(map[string]string, len(geometry.nodes))
	for _, node := range geometry.nodes {
		preferred, ok := preferredNames[node.name]
		if !ok || preferred == "" {
			preferred = sanitizeBoneName(node.name)
		}
		if preferred == rootName {
			preferred += "_fbx"
		}
		sourceToBone[node.name] = generateUniqueBoneName(preferred, usedNames)
	}

	newBones := []*model.Bone{rootBone}
	workingWorld := map[string]mmath.BoneTransform{rootName: rootBone.LocalTransform()}
	for _, node := range geometry.nodes {
		boneName := sourceToBone[node.name]
		parentName, ok := sourceToBone[node.parentName]
		if !ok || node.parentName == "" {
			parentName = rootName
		}
		parentWorld, ok := workingWorld[parentName]
		if !ok {
			parentWorld = mmath.IdentityTransform()
		}
		bone := geometry.placeBone(node, boneName, parentName, parentWorld)
		newBones = append(newBones, bone)
		report.AddedBones = append(report.AddedBones, boneName)
		workingWorld[boneName] = mmath.Compose(bone.LocalTransform(), &parentWorld)
	}
	converted.Bones = newBones

	repairer := newReferenceRepairer(original, converted, rootName, policy, report)
	if err := repairer.repairSlots(); err != nil {
		return nil, err
	}
	if err := repairer.repairConstraints(); err != nil {
		return nil, err
	}
	if err := repairer.repairAnimations(); err != nil {
		return nil, err
	}
	if err := repairer.repairSkinWeights(); err != nil {
		return nil, err
	}
	if err := repairer.repairSkinBones(); err != nil {
		return nil, err
	}

	if missing := converted.MissingBoneReferences(); len(missing) > 0 {
		joined := strings.Join(missing, ", ")
		switch policy {
		case model.MismatchPolicyStrictFail:
			return nil, merrors.NewInputError("fbx-first 変換で未解決の参照が残りました: %s", joined)
		case model.MismatchPolicySkipMissing:
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"FBX-first conversion dropped or redirected unresolved references: %s.", joined,
			))
			repairer.dropMissing(missing)
		default:
			for _, name := range missing {
				repairer.ensureCompatibilityBone(name, map[string]struct{}{})
			}
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"Added compatibility bones for unresolved references: %s.", joined,
			))
		}
	}

	if missing := converted.MissingBoneReferences(); len(missing) > 0 {
		return nil, merrors.NewInvariantError(
			"fbx-first 変換後の検証に失敗しました。未解決の参照: %s", strings.Join(missing, ", "),
		)
	}
	return converted, nil
}

// pickRebuildRoot は最初の親なしボーン、無ければ root という名前のボーン、それも無ければ新しい root を返す。
func pickRebuildRoot(skeleton *model.Skeleton) *model.Bone {
	for _, bone := range skeleton.Bones {
		if bone != nil && bone.Name != "" && bone.Parent == "" {
			return bone
		}
	}
	for _, bone := range skeleton.Bones {
		if bone != nil && bone.Name == model.RootBoneName {
			return bone
		}
	}
	return model.NewBone(model.RootBoneName, "")
}
