// 指示: miu200521358
package minteractor

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/mmath"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
)

// newConversionTarget は root / hips / legacy の3ボーンと参照を持つスケルトンを作る。
func newConversionTarget() *model.Skeleton {
	hips := model.NewBone("hips", "root")
	hips.Y = 10
	legacy := model.NewBone("legacy", "hips")
	legacy.Y = 5
	return &model.Skeleton{
		Bones: []*model.Bone{model.NewBone("root", ""), hips, legacy},
		Slots: []*model.Slot{
			{Name: "body", Bone: "legacy"},
			{Name: "torso", Bone: "hips"},
		},
		Skins: &model.Skins{Items: []*model.Skin{{
			Name: "default",
			Attachments: map[string]map[string]*model.Attachment{
				"body": {"mesh": {
					Fields:   map[string]json.RawMessage{"type": json.RawMessage(`"mesh"`)},
					Weighted: true,
					Vertices: []model.WeightedVertex{{Bones: []model.BoneWeight{{BoneIndex: 2, Weight: 1}}}},
				}},
			},
		}}},
		Animations: map[string]*model.Animation{
			"idle": {Bones: map[string]json.RawMessage{"legacy": json.RawMessage(`{"rotate":[]}`)}},
		},
	}
}

func newConversionMotion() *model.DecodedMotion {
	return newTestMotion(
		[]float64{0, 1},
		&model.JointTrack{Name: "Hips", Positions: []mmath.Vec3{{Y: 1}, {Y: 1}}},
		&model.JointTrack{Name: "Spine", ParentName: "Hips", Positions: []mmath.Vec3{{Y: 2}, {Y: 2}}},
		&model.JointTrack{Name: "Head", ParentName: "Spine", Positions: []mmath.Vec3{{Y: 3}, {Y: 3}}},
	)
}

func newConversionProfile() *model.RetargetProfile {
	return &model.RetargetProfile{
		TargetBones: map[string]model.TargetBoneMapping{"hips": {Bone: "hips"}},
	}
}

func boneNamesOf(skeleton *model.Skeleton) []string {
	names := make([]string, 0, len(skeleton.Bones))
	for _, bone := range skeleton.Bones {
		names = append(names, bone.Name)
	}
	return names
}

func TestConvertSkeletonDisabledReturnsInput(t *testing.T) {
	target := newConversionTarget()
	result, err := ConvertSkeleton(target, nil, nil, newConversionProfile(), SkeletonConversionOptions{})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if result.Skeleton != target {
		t.Fatalf("disabled conversion should return the input skeleton")
	}
	if result.Report.Mode != model.SkeletonModeDisabled {
		t.Fatalf("mode: got=%s want=%s", result.Report.Mode, model.SkeletonModeDisabled)
	}
}

func TestConvertSkeletonSpineFirstAddsUnmappedNodes(t *testing.T) {
	target := newConversionTarget()
	result, err := ConvertSkeleton(target, newConversionMotion(), nil, newConversionProfile(), SkeletonConversionOptions{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	added := result.Report.AddedBones
	if len(added) != 2 || added[0] != "Spine" || added[1] != "Head" {
		t.Fatalf("added bones: got=%v want=[Spine Head]", added)
	}
	spine, ok := result.Skeleton.BoneByName("Spine")
	if !ok || spine.Parent != "hips" {
		t.Fatalf("Spine parent: got=%+v", spine)
	}
	head, ok := result.Skeleton.BoneByName("Head")
	if !ok || head.Parent != "Spine" {
		t.Fatalf("Head parent: got=%+v", head)
	}
	if len(target.Bones) != 3 {
		t.Fatalf("input skeleton changed: got=%v", boneNamesOf(target))
	}
	if violations := result.Skeleton.ValidateTree(); len(violations) != 0 {
		t.Fatalf("tree violations: %v", violations)
	}
	if !strings.Contains(strings.Join(result.Report.Warnings, "\n"), "fell back to sampled track parent names") {
		t.Fatalf("fallback hierarchy warning missing: %v", result.Report.Warnings)
	}
}

func TestConvertSkeletonSpineFirstPolicies(t *testing.T) {
	_, err := ConvertSkeleton(newConversionTarget(), newConversionMotion(), nil, newConversionProfile(), SkeletonConversionOptions{
		Enabled:        true,
		MismatchPolicy: model.MismatchPolicyStrictFail,
	})
	if !merrors.IsInputError(err) {
		t.Fatalf("strict-fail error kind: got=%v want=%v", merrors.Classify(err), merrors.KindInput)
	}
	if !strings.Contains(err.Error(), "Spine") {
		t.Fatalf("strict-fail error should name nodes: %v", err)
	}

	result, err := ConvertSkeleton(newConversionTarget(), newConversionMotion(), nil, newConversionProfile(), SkeletonConversionOptions{
		Enabled:        true,
		MismatchPolicy: model.MismatchPolicySkipMissing,
	})
	if err != nil {
		t.Fatalf("skip-missing failed: %v", err)
	}
	if len(result.Report.AddedBones) != 0 || len(result.Skeleton.Bones) != 3 {
		t.Fatalf("skip-missing should not add bones: got=%v", boneNamesOf(result.Skeleton))
	}
}

func TestConvertSkeletonSpineFirstRejectsInvalidInputTree(t *testing.T) {
	target := newConversionTarget()
	target.Bones = append(target.Bones, model.NewBone("stray", ""))
	_, err := ConvertSkeleton(target, newConversionMotion(), nil, newConversionProfile(), SkeletonConversionOptions{
		Enabled: true,
	})
	if !merrors.IsInputError(err) {
		t.Fatalf("error kind: got=%v want=%v", merrors.Classify(err), merrors.KindInput)
	}
}

func TestConvertSkeletonFbxFirstAddsCompatibilityBones(t *testing.T) {
	target := newConversionTarget()
	result, err := ConvertSkeleton(target, newConversionMotion(), nil, newConversionProfile(), SkeletonConversionOptions{
		Enabled: true,
		Mode:    model.SkeletonModeFbxFirst,
	})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	want := []string{"root", "hips", "Spine", "Head", "legacy"}
	got := boneNamesOf(result.Skeleton)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("bones: got=%v want=%v", got, want)
	}
	legacy, _ := result.Skeleton.BoneByName("legacy")
	if legacy.Parent != "hips" {
		t.Fatalf("legacy parent: got=%s want=%s", legacy.Parent, "hips")
	}
	if compat := result.Report.CompatibilityBonesAdded; len(compat) != 1 || compat[0] != "legacy" {
		t.Fatalf("compatibility bones: got=%v", compat)
	}
	weight := result.Skeleton.Skins.Items[0].Attachments["body"]["mesh"].Vertices[0].Bones[0]
	if weight.BoneIndex != 4 {
		t.Fatalf("weight bone index: got=%d want=%d", weight.BoneIndex, 4)
	}
	if missing := result.Skeleton.MissingBoneReferences(); len(missing) != 0 {
		t.Fatalf("missing references: %v", missing)
	}
	if original := target.Skins.Items[0].Attachments["body"]["mesh"].Vertices[0].Bones[0]; original.BoneIndex != 2 {
		t.Fatalf("input skin changed: got=%d want=%d", original.BoneIndex, 2)
	}
}

func TestConvertSkeletonFbxFirstSkipMissingRedirects(t *testing.T) {
	result, err := ConvertSkeleton(newConversionTarget(), newConversionMotion(), nil, newConversionProfile(), SkeletonConversionOptions{
		Enabled:        true,
		Mode:           model.SkeletonModeFbxFirst,
		MismatchPolicy: model.MismatchPolicySkipMissing,
	})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if slot := result.Skeleton.Slots[0]; slot.Bone != "root" {
		t.Fatalf("slot bone: got=%s want=%s", slot.Bone, "root")
	}
	if _, ok := result.Skeleton.Animations["idle"].Bones["legacy"]; ok {
		t.Fatalf("unresolved animation timeline should be dropped")
	}
	weight := result.Skeleton.Skins.Items[0].Attachments["body"]["mesh"].Vertices[0].Bones[0]
	if weight.BoneIndex != 0 {
		t.Fatalf("weight bone index: got=%d want=%d", weight.BoneIndex, 0)
	}
	if len(result.Report.CompatibilityBonesAdded) != 0 {
		t.Fatalf("skip-missing should not add compatibility bones: %v", result.Report.CompatibilityBonesAdded)
	}
}

func TestConvertSkeletonFbxFirstStrictFail(t *testing.T) {
	_, err := ConvertSkeleton(newConversionTarget(), newConversionMotion(), nil, newConversionProfile(), SkeletonConversionOptions{
		Enabled:        true,
		Mode:           model.SkeletonModeFbxFirst,
		MismatchPolicy: model.MismatchPolicyStrictFail,
	})
	if !merrors.IsInputError(err) {
		t.Fatalf("error kind: got=%v want=%v", merrors.Classify(err), merrors.KindInput)
	}
}

func TestConvertSkeletonFbxFirstBreaksSourceCycles(t *testing.T) {
	motion := newConversionMotion()
	motion.Skeleton = &model.SourceSkeleton{Nodes: []model.SourceSkeletonNode{
		{Name: "Hips"},
		{Name: "A", ParentName: "B"},
		{Name: "B", ParentName: "A"},
	}}
	result, err := ConvertSkeleton(newConversionTarget(), motion, nil, newConversionProfile(), SkeletonConversionOptions{
		Enabled: true,
		Mode:    model.SkeletonModeFbxFirst,
	})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if violations := result.Skeleton.ValidateTree(); len(violations) != 0 {
		t.Fatalf("tree violations: %v", violations)
	}
	a, ok := result.Skeleton.BoneByName("A")
	if !ok {
		t.Fatalf("bone A missing: %v", boneNamesOf(result.Skeleton))
	}
	if a.Parent != "B" {
		t.Fatalf("A parent: got=%s want=%s", a.Parent, "B")
	}
	if !strings.Contains(strings.Join(result.Report.Warnings, "\n"), `cycle broken at "B"`) {
		t.Fatalf("cycle warning missing: %v", result.Report.Warnings)
	}
}

func TestBreakSourceCyclesKeepsAcyclicChains(t *testing.T) {
	nodes := []*sourceNode{
		{name: "Hips"},
		{name: "Spine", parentName: "Hips"},
		{name: "X", parentName: "Z"},
		{name: "Y", parentName: "X"},
		{name: "Z", parentName: "Y"},
	}
	warnings := breakSourceCycles(nodes)
	if len(warnings) != 1 {
		t.Fatalf("warnings: got=%v want=1 entry", warnings)
	}
	if nodes[1].parentName != "Hips" {
		t.Fatalf("Spine parent: got=%s want=%s", nodes[1].parentName, "Hips")
	}
	if nodes[3].parentName != "" {
		t.Fatalf("Y parent: got=%s want=empty", nodes[3].parentName)
	}
	applySourceDepth(nodes)
	if nodes[2].depth != 2 {
		t.Fatalf("X depth: got=%d want=%d", nodes[2].depth, 2)
	}
}

func TestNormalizeSkeletonOptionsFallsBack(t *testing.T) {
	normalized, warnings := normalizeSkeletonOptions(SkeletonConversionOptions{
		Enabled: true,
		Mode:    "Bogus",
		Scope:   " FULL-HIERARCHY ",
	})
	if normalized.Mode != model.SkeletonModeSpineFirst {
		t.Fatalf("mode: got=%s want=%s", normalized.Mode, model.SkeletonModeSpineFirst)
	}
	if normalized.Scope != model.SkeletonScopeFullHierarchy {
		t.Fatalf("scope: got=%s want=%s", normalized.Scope, model.SkeletonScopeFullHierarchy)
	}
	if normalized.MismatchPolicy != model.MismatchPolicyAutoAddBones {
		t.Fatalf("policy: got=%s want=%s", normalized.MismatchPolicy, model.MismatchPolicyAutoAddBones)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], `"bogus"`) {
		t.Fatalf("warnings: got=%v", warnings)
	}
}

func TestGenerateUniqueBoneName(t *testing.T) {
	used := map[string]struct{}{"Spine": {}}
	if got := generateUniqueBoneName("Spine", used); got != "Spine_fbx_1" {
		t.Fatalf("collision: got=%s want=%s", got, "Spine_fbx_1")
	}
	if got := generateUniqueBoneName("mixamorig:Head", used); got != "mixamorig_Head" {
		t.Fatalf("sanitized: got=%s want=%s", got, "mixamorig_Head")
	}
}
