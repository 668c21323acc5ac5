// 指示: miu200521358
package minteractor

import (
	"strings"
	"testing"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
)

func newRetargetSkeleton() *model.Skeleton {
	return &model.Skeleton{
		Bones: []*model.Bone{
			model.NewBone("root", ""),
			model.NewBone("HIPS", "root"),
		},
	}
}

func newHipsProjection(angles ...float64) *model.ProjectedMotion {
	frameTimes := make([]float64, len(angles))
	translations := make([]model.Translation2D, len(angles))
	for i := range angles {
		frameTimes[i] = float64(i) * 0.5
		translations[i] = model.Translation2D{X: float64(i), Y: 0.5}
	}
	return &model.ProjectedMotion{
		Fps:             2,
		FrameTimes:      frameTimes,
		JointAngles:     map[model.CanonicalJoint][]float64{model.JointHips: angles},
		HipsTranslation: translations,
	}
}

func hipsProfile() *model.RetargetProfile {
	return &model.RetargetProfile{
		TargetBones: map[string]model.TargetBoneMapping{
			"hips": {Bone: "HIPS", Translate: true},
		},
	}
}

func TestRetargetBuildsRelativeRotationKeys(t *testing.T) {
	result, err := Retarget(newRetargetSkeleton(), newHipsProjection(10, 20, 30), hipsProfile(), RetargetOptions{})
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	timeline := result.Animation.Bones["HIPS"]
	if timeline == nil {
		t.Fatalf("HIPS timeline missing")
	}
	want := []model.RotateKey{{Time: 0, Angle: -10}, {Time: 0.5, Angle: 0}, {Time: 1, Angle: 10}}
	if len(timeline.Rotate) != len(want) {
		t.Fatalf("rotate keys: got=%v want=%v", timeline.Rotate, want)
	}
	for i := range want {
		if timeline.Rotate[i] != want[i] {
			t.Fatalf("rotate key %d: got=%v want=%v", i, timeline.Rotate[i], want[i])
		}
	}
	if len(timeline.Translate) != 0 {
		t.Fatalf("in_place should not write translate keys: got=%v", timeline.Translate)
	}
	if result.AnimationName != model.DefaultAnimationName {
		t.Fatalf("animation name: got=%s want=%s", result.AnimationName, model.DefaultAnimationName)
	}
	if result.Duration != 1 {
		t.Fatalf("duration: got=%v want=%v", result.Duration, 1)
	}
	if len(result.MappedBones) != 1 || result.MappedBones[0] != "HIPS" {
		t.Fatalf("mapped bones: got=%v", result.MappedBones)
	}
	if result.SideSwapApplied {
		t.Fatalf("side swap should not apply without calibration data")
	}
}

func TestRetargetWritesTranslationWhenRootMotionEnabled(t *testing.T) {
	result, err := Retarget(newRetargetSkeleton(), newHipsProjection(0, 0), hipsProfile(), RetargetOptions{RootMotion: "root"})
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	translate := result.Animation.Bones["HIPS"].Translate
	if len(translate) != 2 {
		t.Fatalf("translate keys: got=%v", translate)
	}
	if translate[1] != (model.TranslateKey{Time: 0.5, X: 1, Y: 0.5}) {
		t.Fatalf("translate key: got=%+v", translate[1])
	}
}

func TestRetargetAppliesAdjustmentAndLimits(t *testing.T) {
	profile := hipsProfile()
	multiplier := 3.0
	offset := 1.0
	maxAngle := 20.0
	profile.JointAdjustments = map[string]model.JointAdjustment{
		"HIPS": {Multiplier: &multiplier, Offset: &offset},
	}
	profile.Limits.MaxAngle = &maxAngle

	result, err := Retarget(newRetargetSkeleton(), newHipsProjection(10, 20, 30), profile, RetargetOptions{})
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	rotate := result.Animation.Bones["HIPS"].Rotate
	if rotate[0].Angle != -29 || rotate[1].Angle != 1 || rotate[2].Angle != 20 {
		t.Fatalf("adjusted angles: got=%v", rotate)
	}
}

func TestRetargetEvaluatesExpression(t *testing.T) {
	profile := hipsProfile()
	profile.JointAdjustments = map[string]model.JointAdjustment{
		"hips": {Expression: "value * 2 + frame"},
	}
	result, err := Retarget(newRetargetSkeleton(), newHipsProjection(10, 20, 30), profile, RetargetOptions{})
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	rotate := result.Animation.Bones["HIPS"].Rotate
	if rotate[0].Angle != -20 || rotate[1].Angle != 1 || rotate[2].Angle != 22 {
		t.Fatalf("expression angles: got=%v", rotate)
	}

	profile.JointAdjustments["hips"] = model.JointAdjustment{Expression: "(value * 2"}
	_, err = Retarget(newRetargetSkeleton(), newHipsProjection(10, 20, 30), profile, RetargetOptions{})
	if !merrors.IsInputError(err) {
		t.Fatalf("invalid expression error kind: got=%v want=%v", merrors.Classify(err), merrors.KindInput)
	}
}

func TestRetargetReducesKeysWhenNotUniform(t *testing.T) {
	uniform := false
	result, err := Retarget(
		newRetargetSkeleton(),
		newHipsProjection(10, 10, 10, 30),
		hipsProfile(),
		RetargetOptions{Timeline: model.TimelineConfig{UniformKeyframes: &uniform}},
	)
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	rotate := result.Animation.Bones["HIPS"].Rotate
	if len(rotate) != 2 || rotate[0].Angle != 0 || rotate[1].Angle != 20 {
		t.Fatalf("reduced keys: got=%v", rotate)
	}
}

func TestRetargetWarnsMissingTargetBone(t *testing.T) {
	profile := hipsProfile()
	profile.TargetBones["spine"] = model.TargetBoneMapping{Bone: "SPINE"}
	result, err := Retarget(newRetargetSkeleton(), newHipsProjection(0, 1), profile, RetargetOptions{})
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	found := false
	for _, warning := range result.Warnings {
		if strings.Contains(warning, `Target bone "SPINE" is missing`) {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing bone warning not found: %v", result.Warnings)
	}
}

func TestRetargetFillsMissingSourceWithStaticKeys(t *testing.T) {
	profile := &model.RetargetProfile{
		TargetBones: map[string]model.TargetBoneMapping{"leftArm": {Bone: "HIPS"}},
	}
	result, err := Retarget(newRetargetSkeleton(), newHipsProjection(5, 6), profile, RetargetOptions{})
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	for _, key := range result.Animation.Bones["HIPS"].Rotate {
		if key.Angle != 0 {
			t.Fatalf("static key expected: got=%v", key)
		}
	}

	fill := false
	_, err = Retarget(
		newRetargetSkeleton(),
		newHipsProjection(5, 6),
		profile,
		RetargetOptions{Timeline: model.TimelineConfig{FillMissingWithZero: &fill}},
	)
	if !merrors.IsInputError(err) {
		t.Fatalf("no timeline error kind: got=%v want=%v", merrors.Classify(err), merrors.KindInput)
	}
}

func TestRetargetRequiresMappedBones(t *testing.T) {
	_, err := Retarget(newRetargetSkeleton(), newHipsProjection(0, 1), &model.RetargetProfile{}, RetargetOptions{})
	if !merrors.IsInputError(err) {
		t.Fatalf("error kind: got=%v want=%v", merrors.Classify(err), merrors.KindInput)
	}
}

func TestResolveRootMotion(t *testing.T) {
	if got := resolveRootMotion("", nil); got != model.RootMotionInPlace {
		t.Fatalf("default: got=%s want=%s", got, model.RootMotionInPlace)
	}
	if got := resolveRootMotion("", &model.RetargetProfile{RootMotion: "Root"}); got != "root" {
		t.Fatalf("profile: got=%s want=%s", got, "root")
	}
	if got := resolveRootMotion("none", &model.RetargetProfile{RootMotion: "root"}); got != model.RootMotionNone {
		t.Fatalf("option: got=%s want=%s", got, model.RootMotionNone)
	}
}
