// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
)

func TestNormalizeNameFoldsWidthAndCase(t *testing.T) {
	cases := map[string]string{
		"Mixamorig:Hips": "mixamorighips",
		"ＬｅｆｔＡｒｍ":        "leftarm",
		" spine_01 ":     "spine01",
		"::":             "",
	}
	for input, want := range cases {
		if got := normalizeName(input); got != want {
			t.Fatalf("normalizeName(%q): got=%q want=%q", input, got, want)
		}
	}
}

func TestSanitizeBoneName(t *testing.T) {
	if got := sanitizeBoneName("mixamorig:Left Arm"); got != "mixamorig_Left_Arm" {
		t.Fatalf("sanitizeBoneName: got=%s want=%s", got, "mixamorig_Left_Arm")
	}
	if got := sanitizeBoneName(" :: "); got != fallbackBoneName {
		t.Fatalf("sanitizeBoneName empty: got=%s want=%s", got, fallbackBoneName)
	}
}

func TestNormalizedNameIndexRequiresUniqueMatch(t *testing.T) {
	index := newNormalizedNameIndex([]string{"ARM_L", "arm-l", "Head"})
	if _, ok := index.resolve("arml"); ok {
		t.Fatalf("ambiguous name should not resolve")
	}
	got, ok := index.resolve("HEAD")
	if !ok || got != "Head" {
		t.Fatalf("resolve head: got=%s ok=%v", got, ok)
	}
	index.add("Neck")
	if got, ok := index.resolve("neck"); !ok || got != "Neck" {
		t.Fatalf("resolve neck: got=%s ok=%v", got, ok)
	}
}

func TestDeriveAnimationName(t *testing.T) {
	cases := []struct {
		filename string
		override string
		want     string
	}{
		{filename: "motions/Walk Cycle.fbx", want: "FBX_Walk_Cycle"},
		{filename: `C:\mocap\run-fast.glb`, want: "FBX_run_fast"},
		{filename: "idle.json", override: "loop", want: "FBX_loop"},
		{filename: "idle.json", override: "fbx_loop", want: "fbx_loop"},
		{filename: "", want: "FBX_animation"},
	}
	for _, tc := range cases {
		if got := DeriveAnimationName(tc.filename, tc.override); got != tc.want {
			t.Fatalf("DeriveAnimationName(%q, %q): got=%s want=%s", tc.filename, tc.override, got, tc.want)
		}
	}
}

func TestResolveAnimationNameCollision(t *testing.T) {
	existing := map[string]*model.Animation{}
	if got := resolveAnimationNameCollision("FBX walk", existing); got != "FBX_walk" {
		t.Fatalf("no collision: got=%s want=%s", got, "FBX_walk")
	}
	existing["FBX_walk"] = &model.Animation{}
	if got := resolveAnimationNameCollision("FBX_walk", existing); got != "FBX_walk_fbx" {
		t.Fatalf("first collision: got=%s want=%s", got, "FBX_walk_fbx")
	}
	existing["FBX_walk_fbx"] = &model.Animation{}
	if got := resolveAnimationNameCollision("FBX_walk", existing); got != "FBX_walk_fbx_2" {
		t.Fatalf("second collision: got=%s want=%s", got, "FBX_walk_fbx_2")
	}
	if got := sanitizeAnimationName("  "); got != model.DefaultAnimationName {
		t.Fatalf("empty name: got=%s want=%s", got, model.DefaultAnimationName)
	}
}

func TestMergeAnimationKeepsInputSkeleton(t *testing.T) {
	skeleton := &model.Skeleton{
		Bones:      []*model.Bone{model.NewBone("root", "")},
		Animations: map[string]*model.Animation{"FBX_walk": {}},
	}
	result := MergeAnimation(skeleton, "FBX_walk", &model.Animation{})
	if result.AnimationName != "FBX_walk_fbx" {
		t.Fatalf("animation name: got=%s want=%s", result.AnimationName, "FBX_walk_fbx")
	}
	if len(skeleton.Animations) != 1 {
		t.Fatalf("input animations changed: got=%d want=%d", len(skeleton.Animations), 1)
	}
	if len(result.Skeleton.Animations) != 2 {
		t.Fatalf("merged animations: got=%d want=%d", len(result.Skeleton.Animations), 2)
	}

	empty := MergeAnimation(&model.Skeleton{Bones: []*model.Bone{model.NewBone("root", "")}}, "", &model.Animation{})
	if empty.AnimationName != model.DefaultAnimationName {
		t.Fatalf("default name: got=%s want=%s", empty.AnimationName, model.DefaultAnimationName)
	}
}
