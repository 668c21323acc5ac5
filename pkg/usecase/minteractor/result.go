// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/usecase/port/moutput"
)

// ConvertProgressEventType は変換処理の進捗イベント種別を表す。
type ConvertProgressEventType string

const (
	// ConvertProgressEventTypeMotionLoaded はモーション読み込み完了イベントを表す。
	ConvertProgressEventTypeMotionLoaded ConvertProgressEventType = "motion_loaded"
	// ConvertProgressEventTypeCanonicalized は関節正規化完了イベントを表す。
	ConvertProgressEventTypeCanonicalized ConvertProgressEventType = "canonicalized"
	// ConvertProgressEventTypeSkeletonConverted はスケルトン変換完了イベントを表す。
	ConvertProgressEventTypeSkeletonConverted ConvertProgressEventType = "skeleton_converted"
	// ConvertProgressEventTypeProjected は2D投影完了イベントを表す。
	ConvertProgressEventTypeProjected ConvertProgressEventType = "projected"
	// ConvertProgressEventTypeRetargeted はリターゲット完了イベントを表す。
	ConvertProgressEventTypeRetargeted ConvertProgressEventType = "retargeted"
	// ConvertProgressEventTypeMerged はアニメーション統合完了イベントを表す。
	ConvertProgressEventTypeMerged ConvertProgressEventType = "merged"
)

// ConvertProgressEvent は変換処理の進捗イベントを表す。
type ConvertProgressEvent struct {
	Type       ConvertProgressEventType
	FrameCount int
	BoneCount  int
}

// IConvertProgressReporter は変換処理の進捗通知契約を表す。
type IConvertProgressReporter interface {
	// ReportConvertProgress は変換処理進捗を通知する。
	ReportConvertProgress(event ConvertProgressEvent)
}

// ConvertRequest はモーション1件の変換要求を表す。
type ConvertRequest struct {
	MotionPath string
	// Motion が nil の場合は MotionPath から読み込む。
	Motion             *model.DecodedMotion
	Skeleton           *model.Skeleton
	Profile            *model.RetargetProfile
	AnimationName      string
	Fps                float64
	RootMotion         string
	Timeline           model.TimelineConfig
	Projection         *model.ProjectionConfig
	SkeletonConversion SkeletonConversionOptions
	MotionReader       moutput.IMotionReader
	ProgressReporter   IConvertProgressReporter
}

// ConvertResult はモーション1件の変換結果を表す。
type ConvertResult struct {
	AnimationName          string
	Skeleton               *model.Skeleton
	SkeletonReport         *model.SkeletonConversionReport
	Warnings               []string
	MappedBones            []string
	MissingCanonicalJoints []string
	Duration               float64
	Projected              *model.ProjectedMotion
}

// reportConvertProgress は通知先がある場合のみ進捗を通知する。
func reportConvertProgress(reporter IConvertProgressReporter, event ConvertProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportConvertProgress(event)
}
