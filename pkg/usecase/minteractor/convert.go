// 指示: miu200521358
package minteractor

import (
	"strings"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/infra/logging"
)

// DefaultFps はモーション読み込み時の既定サンプリングFPS。
const DefaultFps = 30.0

// ConvertMotion はモーション1件を変換し、アニメーションを統合したスケルトンを返す。
// 入力スケルトンは変更しない。
func (uc *Mocap2SpineUsecase) ConvertMotion(request ConvertRequest) (*ConvertResult, error) {
	if request.Skeleton == nil {
		return nil, merrors.NewInputError("変換には有効なスケルトンJSONが必要です")
	}
	fps := request.Fps
	if fps <= 0 {
		fps = DefaultFps
	}
	profile := request.Profile
	if profile == nil {
		profile = &model.RetargetProfile{}
	}

	motion := request.Motion
	if motion == nil {
		loaded, err := uc.LoadMotion(request.MotionReader, request.MotionPath, fps)
		if err != nil {
			return nil, err
		}
		motion = loaded
	}
	if motion == nil {
		return nil, merrors.NewInputError("モーション読み込み結果が空です")
	}
	reportConvertProgress(request.ProgressReporter, ConvertProgressEvent{
		Type:       ConvertProgressEventTypeMotionLoaded,
		FrameCount: motion.FrameCount(),
	})

	humanoid := Canonicalize(motion, profile.AliasOverrides())
	reportConvertProgress(request.ProgressReporter, ConvertProgressEvent{
		Type:       ConvertProgressEventTypeCanonicalized,
		FrameCount: humanoid.FrameCount(),
	})

	conversion, err := ConvertSkeleton(request.Skeleton, motion, humanoid, profile, request.SkeletonConversion)
	if err != nil {
		return nil, err
	}
	working := conversion.Skeleton
	reportConvertProgress(request.ProgressReporter, ConvertProgressEvent{
		Type:      ConvertProgressEventTypeSkeletonConverted,
		BoneCount: len(working.Bones),
	})

	projected, err := ProjectMotion(humanoid, resolveProjectionOptions(profile, request.Projection))
	if err != nil {
		return nil, err
	}
	reportConvertProgress(request.ProgressReporter, ConvertProgressEvent{
		Type:       ConvertProgressEventTypeProjected,
		FrameCount: len(projected.FrameTimes),
	})

	sourceName := request.MotionPath
	if strings.TrimSpace(sourceName) == "" {
		sourceName = motion.SourceFile
	}
	retargeted, err := Retarget(working, projected, profile, RetargetOptions{
		AnimationName: DeriveAnimationName(sourceName, request.AnimationName),
		RootMotion:    request.RootMotion,
		Timeline:      request.Timeline,
	})
	if err != nil {
		return nil, err
	}
	reportConvertProgress(request.ProgressReporter, ConvertProgressEvent{
		Type:       ConvertProgressEventTypeRetargeted,
		FrameCount: len(projected.FrameTimes),
		BoneCount:  len(retargeted.MappedBones),
	})

	animation, err := retargeted.Animation.ToAnimation()
	if err != nil {
		return nil, err
	}
	merged := MergeAnimation(working, retargeted.AnimationName, animation)
	reportConvertProgress(request.ProgressReporter, ConvertProgressEvent{
		Type:      ConvertProgressEventTypeMerged,
		BoneCount: len(merged.Skeleton.Bones),
	})

	warnings := make([]string, 0, len(motion.Warnings)+len(retargeted.Warnings)+len(conversion.Report.Warnings))
	warnings = append(warnings, motion.Warnings...)
	warnings = append(warnings, retargeted.Warnings...)
	warnings = append(warnings, conversion.Report.Warnings...)

	missing := make([]string, 0, len(retargeted.MissingCanonicalJoints))
	for _, joint := range retargeted.MissingCanonicalJoints {
		missing = append(missing, joint.String())
	}

	logging.DefaultLogger().Info(
		"変換完了: アニメーション=%s ボーン数=%d 警告数=%d", merged.AnimationName, len(retargeted.MappedBones), len(warnings),
	)

	return &ConvertResult{
		AnimationName:          merged.AnimationName,
		Skeleton:               merged.Skeleton,
		SkeletonReport:         conversion.Report,
		Warnings:               warnings,
		MappedBones:            retargeted.MappedBones,
		MissingCanonicalJoints: missing,
		Duration:               retargeted.Duration,
		Projected:              projected,
	}, nil
}

// resolveProjectionOptions は既定値、プロファイル、呼び出し設定の順に投影設定を重ねる。
func resolveProjectionOptions(profile *model.RetargetProfile, override *model.ProjectionConfig) model.ProjectionOptions {
	options := profile.Projection.Apply(model.DefaultProjectionOptions())
	if override != nil {
		options = override.Apply(options)
	}
	if joint := model.CanonicalJoint(strings.TrimSpace(profile.SideCalibration.SourceLeftJoint)); joint.IsCanonical() {
		options.SourceLeftJoint = joint
	}
	if joint := model.CanonicalJoint(strings.TrimSpace(profile.SideCalibration.SourceRightJoint)); joint.IsCanonical() {
		options.SourceRightJoint = joint
	}
	return options
}
