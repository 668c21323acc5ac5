// 指示: miu200521358
package minteractor

import (
	"fmt"
	"math"
	"strings"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/mmath"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/infra/logging"
)

const (
	defaultReferenceFrameCount = 3
	defaultMinAngle            = -360.0
	defaultMaxAngle            = 360.0
	defaultRotationEpsilonDeg  = 0.2
	defaultTranslationEpsilon  = 0.12
)

// RetargetOptions はリターゲットの呼び出し側設定。未指定項目はプロファイル、既定値の順に解決する。
type RetargetOptions struct {
	AnimationName string
	RootMotion    string
	Timeline      model.TimelineConfig
}

// RetargetResult はリターゲット結果。
type RetargetResult struct {
	AnimationName          string
	Duration               float64
	Fps                    float64
	MappedBones            []string
	MissingCanonicalJoints []model.CanonicalJoint
	Warnings               []string
	SideSwapApplied        bool
	Animation              *model.GeneratedAnimation
}

// resolvedTimeline は解決済みのキーフレーム生成設定。
type resolvedTimeline struct {
	uniformKeyframes      bool
	reduceRotationKeys    bool
	reduceTranslationKeys bool
	fillMissingWithZero   bool
	referenceFrameCount   int
}

// resolveTimeline は呼び出し設定、プロファイル、既定値の順に生成設定を解決する。
func resolveTimeline(options model.TimelineConfig, profile model.TimelineConfig) resolvedTimeline {
	pickBool := func(call, prof *bool, fallback bool) bool {
		if call != nil {
			return *call
		}
		if prof != nil {
			return *prof
		}
		return fallback
	}
	uniform := pickBool(options.UniformKeyframes, profile.UniformKeyframes, true)
	referenceCount := defaultReferenceFrameCount
	if options.ReferenceFrameCount != nil {
		referenceCount = *options.ReferenceFrameCount
	} else if profile.ReferenceFrameCount != nil {
		referenceCount = *profile.ReferenceFrameCount
	}
	if referenceCount < 1 {
		referenceCount = 1
	}
	return resolvedTimeline{
		uniformKeyframes:      uniform,
		reduceRotationKeys:    pickBool(options.ReduceRotationKeys, profile.ReduceRotationKeys, !uniform),
		reduceTranslationKeys: pickBool(options.ReduceTranslationKeys, profile.ReduceTranslationKeys, !uniform),
		fillMissingWithZero:   pickBool(options.FillMissingWithZero, profile.FillMissingWithZero, true),
		referenceFrameCount:   referenceCount,
	}
}

// resolveRootMotion は呼び出し設定、プロファイル、in_place の順にルートモーション方式を決める。
func resolveRootMotion(option string, profile *model.RetargetProfile) string {
	mode := strings.TrimSpace(option)
	if mode == "" && profile != nil {
		mode = strings.TrimSpace(profile.RootMotion)
	}
	if mode == "" {
		mode = model.RootMotionInPlace
	}
	return strings.ToLower(mode)
}

// Retarget は投影済みモーションをプロファイルに従って出力ボーンのタイムラインへ変換する。
func Retarget(
	skeleton *model.Skeleton,
	projected *model.ProjectedMotion,
	profile *model.RetargetProfile,
	options RetargetOptions,
) (*RetargetResult, error) {
	if skeleton == nil {
		return nil, merrors.NewInputError("リターゲットには有効なスケルトンJSONが必要です")
	}
	if projected == nil || len(projected.FrameTimes) == 0 {
		return nil, merrors.NewInputError("リターゲットする投影フレームがありません")
	}
	if profile == nil {
		profile = &model.RetargetProfile{}
	}

	expressions, err := compileKeyExpressions(profile)
	if err != nil {
		return nil, err
	}

	warnings := make([]string, 0, len(projected.Warnings)+4)
	warnings = append(warnings, projected.Warnings...)

	boneNames := skeleton.BoneNames()
	setupWorld := skeleton.WorldTransforms()
	swapSides, sideWarning := shouldSwapSides(projected.SourceSide, profile.SideCalibration, setupWorld)
	if sideWarning != "" {
		warnings = append(warnings, sideWarning)
	}

	timeline := resolveTimeline(options.Timeline, profile.Timeline)
	rootMotion := resolveRootMotion(options.RootMotion, profile)
	translationAllowed := !model.IsRootMotionStatic(rootMotion)

	frameCount := len(projected.FrameTimes)
	zeroAngles := make([]float64, frameCount)
	fallbackWarned := map[string]struct{}{}

	animation := &model.GeneratedAnimation{Bones: map[string]*model.BoneTimeline{}}
	mappedBones := make([]string, 0)
	mapped := map[string]struct{}{}

	for _, entry := range profile.OrderedTargetBones() {
		if _, ok := boneNames[entry.Bone]; !ok {
			warnings = append(warnings, fmt.Sprintf("Target bone \"%s\" is missing in skeleton.", entry.Bone))
			continue
		}

		joint := model.CanonicalJoint(entry.Joint)
		sourceJoint, sourceAngles, fallbackWarning := resolveSourceAngles(projected, joint, swapSides)
		if fallbackWarning != "" {
			key := fmt.Sprintf("%s|%s", joint, sourceJoint)
			if _, warned := fallbackWarned[key]; !warned {
				fallbackWarned[key] = struct{}{}
				warnings = append(warnings, fallbackWarning)
			}
		}
		if sourceAngles == nil {
			if !timeline.fillMissingWithZero {
				warnings = append(warnings, fmt.Sprintf("Source joint \"%s\" has no projected angle data.", sourceJoint))
				continue
			}
			sourceAngles = zeroAngles
			warnings = append(warnings, fmt.Sprintf(
				"Source joint \"%s\" has no projected angle data; writing static keys for \"%s\".",
				sourceJoint, entry.Bone,
			))
		}

		rotateKeys, err := buildRotationKeys(
			projected.FrameTimes,
			sourceAngles,
			profile.Adjustment(entry.Joint, entry.Bone),
			lookupKeyExpression(expressions, profile, entry.Joint, entry.Bone),
			profile.Limits,
			timeline,
		)
		if err != nil {
			return nil, err
		}
		if len(rotateKeys) == 0 {
			continue
		}

		boneTimeline, ok := animation.Bones[entry.Bone]
		if !ok {
			boneTimeline = &model.BoneTimeline{}
			animation.Bones[entry.Bone] = boneTimeline
		}
		boneTimeline.Rotate = rotateKeys
		if _, ok := mapped[entry.Bone]; !ok {
			mapped[entry.Bone] = struct{}{}
			mappedBones = append(mappedBones, entry.Bone)
		}

		if entry.Translate && translationAllowed && joint == model.JointHips {
			translateKeys := buildTranslationKeys(
				projected.FrameTimes,
				projected.HipsTranslation,
				profile.TranslationScaleOrDefault(),
				profile.Limits,
				timeline,
			)
			if len(translateKeys) > 0 {
				boneTimeline.Translate = translateKeys
			}
		}
		logging.DefaultLogger().Debug(
			"リターゲット: %s -> %s (source=%s, keys=%d)", entry.Joint, entry.Bone, sourceJoint, len(rotateKeys),
		)
	}

	if len(animation.Bones) == 0 {
		return nil, merrors.NewInputError("リターゲットで生成されたボーンタイムラインがありません")
	}

	animationName := strings.TrimSpace(options.AnimationName)
	if animationName == "" {
		animationName = model.DefaultAnimationName
	}

	missing := make([]model.CanonicalJoint, len(projected.MissingCanonicalJoints))
	copy(missing, projected.MissingCanonicalJoints)

	logging.DefaultLogger().Info(
		"リターゲット完了: アニメーション=%s ボーン数=%d 左右反転=%t", animationName, len(mappedBones), swapSides,
	)

	return &RetargetResult{
		AnimationName:          animationName,
		Duration:               projected.FrameTimes[frameCount-1],
		Fps:                    projected.Fps,
		MappedBones:            mappedBones,
		MissingCanonicalJoints: missing,
		Warnings:               warnings,
		SideSwapApplied:        swapSides,
		Animation:              animation,
	}, nil
}

// shouldSwapSides はソースと出力スケルトンの左右の向きが逆か判定する。判定できない場合は理由を返す。
func shouldSwapSides(
	side model.SourceSide,
	calibration model.SideCalibration,
	setupWorld map[string]mmath.BoneTransform,
) (bool, string) {
	sourceLeft := firstNonEmpty(calibration.SourceLeftJoint, model.JointLeftArm.String())
	sourceRight := firstNonEmpty(calibration.SourceRightJoint, model.JointRightArm.String())
	targetLeftBone := firstNonEmpty(calibration.TargetLeftBone, model.DefaultSideCalibrationLeftBone)
	targetRightBone := firstNonEmpty(calibration.TargetRightBone, model.DefaultSideCalibrationRightBone)

	if !side.IsAvailable() {
		return false, fmt.Sprintf(
			"Side auto-calibration skipped: source %s/%s first-frame X is unavailable.", sourceLeft, sourceRight,
		)
	}
	targetLeft, leftOk := setupWorld[targetLeftBone]
	targetRight, rightOk := setupWorld[targetRightBone]
	if !leftOk || !rightOk {
		return false, fmt.Sprintf(
			"Side auto-calibration skipped: target bones %s/%s were not found in skeleton.", targetLeftBone, targetRightBone,
		)
	}

	sourceDelta := *side.LeftArmX - *side.RightArmX
	targetDelta := targetLeft.X - targetRight.X
	if math.Abs(sourceDelta) <= mmath.Epsilon || math.Abs(targetDelta) <= mmath.Epsilon {
		return false, "Side auto-calibration skipped: arm side spread is too small to infer handedness."
	}
	return sourceDelta*targetDelta < 0, ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// sourceJointFor は左右反転時に反対側の関節を返す。
func sourceJointFor(joint model.CanonicalJoint, swapSides bool) model.CanonicalJoint {
	if !swapSides {
		return joint
	}
	return joint.Mirrored()
}

// resolveSourceAngles は関節自身、代替候補の順に角度列を探す。代替を使った場合は警告文を返す。
func resolveSourceAngles(
	projected *model.ProjectedMotion,
	joint model.CanonicalJoint,
	swapSides bool,
) (model.CanonicalJoint, []float64, string) {
	chain := append([]model.CanonicalJoint{joint}, joint.Fallbacks()...)
	for index, candidate := range chain {
		sourceJoint := sourceJointFor(candidate, swapSides)
		angles := projected.JointAngles[sourceJoint]
		if len(angles) == 0 {
			continue
		}
		warning := ""
		if index > 0 {
			warning = fmt.Sprintf(
				"Source joint \"%s\" missing; using fallback \"%s\" for \"%s\".",
				sourceJointFor(joint, swapSides), sourceJoint, joint,
			)
		}
		return sourceJoint, angles, warning
	}
	return sourceJointFor(joint, swapSides), nil, ""
}

// referenceAngle は先頭 count 件の有限値平均を基準角度とする。全て非有限なら先頭値、それも無効なら0。
func referenceAngle(angles []float64, count int) float64 {
	if mean, ok := mmath.MeanOfLeading(angles, count); ok {
		return mean
	}
	if len(angles) > 0 && mmath.IsFinite(angles[0]) {
		return angles[0]
	}
	return 0
}

func limitOrDefault(value *float64, fallback float64) float64 {
	if value == nil || !mmath.IsFinite(*value) {
		return fallback
	}
	return *value
}

// buildRotationKeys は基準角度からの差分に補正と範囲制限をかけた回転キーを作る。
func buildRotationKeys(
	frameTimes []float64,
	angles []float64,
	adjustment model.JointAdjustment,
	expression *keyExpression,
	limits model.ProfileLimits,
	timeline resolvedTimeline,
) ([]model.RotateKey, error) {
	if len(frameTimes) == 0 || len(angles) == 0 {
		return nil, nil
	}
	minAngle := limitOrDefault(limits.MinAngle, defaultMinAngle)
	maxAngle := limitOrDefault(limits.MaxAngle, defaultMaxAngle)
	reference := referenceAngle(angles, timeline.referenceFrameCount)
	multiplier := adjustment.MultiplierOrDefault()
	offset := adjustment.OffsetOrDefault()

	keys := make([]model.RotateKey, len(frameTimes))
	for frame, time := range frameTimes {
		source := reference
		if frame < len(angles) && mmath.IsFinite(angles[frame]) {
			source = angles[frame]
		}
		delta := source - reference
		value := delta*multiplier + offset
		if expression != nil {
			evaluated, err := expression.evaluate(keyExpressionInput{
				value:     value,
				delta:     delta,
				source:    source,
				reference: reference,
				time:      time,
				frame:     frame,
			})
			if err != nil {
				return nil, err
			}
			value = evaluated
		}
		keys[frame] = model.RotateKey{
			Time:  mmath.Round4(finiteOr(time, 0)),
			Angle: mmath.Round4(mmath.Clamp(value, minAngle, maxAngle)),
		}
	}

	if timeline.uniformKeyframes || !timeline.reduceRotationKeys {
		return keys, nil
	}
	epsilon := limitOrDefault(limits.RotationEpsilonDeg, defaultRotationEpsilonDeg)
	return reduceKeys(keys, epsilon, func(a, b model.RotateKey) float64 {
		return math.Abs(a.Angle - b.Angle)
	}), nil
}

// buildTranslationKeys は腰の移動量を倍率付きで移動キーにする。
func buildTranslationKeys(
	frameTimes []float64,
	translations []model.Translation2D,
	scale float64,
	limits model.ProfileLimits,
	timeline resolvedTimeline,
) []model.TranslateKey {
	if len(frameTimes) == 0 || len(translations) == 0 {
		return nil
	}
	keys := make([]model.TranslateKey, len(frameTimes))
	for frame, time := range frameTimes {
		var translation model.Translation2D
		if frame < len(translations) {
			translation = translations[frame]
		}
		keys[frame] = model.TranslateKey{
			Time: mmath.Round4(finiteOr(time, 0)),
			X:    mmath.Round4(finiteOr(translation.X, 0) * scale),
			Y:    mmath.Round4(finiteOr(translation.Y, 0) * scale),
		}
	}

	if timeline.uniformKeyframes || !timeline.reduceTranslationKeys {
		return keys
	}
	epsilon := limitOrDefault(limits.TranslationEpsilon, defaultTranslationEpsilon)
	return reduceKeys(keys, epsilon, func(a, b model.TranslateKey) float64 {
		return math.Max(math.Abs(a.X-b.X), math.Abs(a.Y-b.Y))
	})
}

func finiteOr(value, fallback float64) float64 {
	if mmath.IsFinite(value) {
		return value
	}
	return fallback
}

// reduceKeys は直前に残したキーとの差が epsilon 以下の中間キーを間引く。先頭と末尾は常に残す。
func reduceKeys[K any](keys []K, epsilon float64, distance func(a, b K) float64) []K {
	if len(keys) <= 2 {
		return keys
	}
	epsilon = math.Max(0, epsilon)
	reduced := []K{keys[0]}
	for _, current := range keys[1 : len(keys)-1] {
		if distance(current, reduced[len(reduced)-1]) > epsilon {
			reduced = append(reduced, current)
		}
	}
	return append(reduced, keys[len(keys)-1])
}
