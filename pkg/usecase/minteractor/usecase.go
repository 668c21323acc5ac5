// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_mocap2spine/pkg/usecase/port/moutput"

// Mocap2SpineUsecaseDeps はモーション変換ユースケースの依存を表す。
type Mocap2SpineUsecaseDeps struct {
	MotionReader   moutput.IMotionReader
	SkeletonReader moutput.ISkeletonReader
	SkeletonWriter moutput.ISkeletonWriter
	ProfileReader  moutput.IProfileReader
	ReportWriter   moutput.IReportWriter
	CurveWriter    moutput.ICurveWriter
}

// Mocap2SpineUsecase はモーションからSpineアニメーションへの変換処理をまとめたユースケースを表す。
type Mocap2SpineUsecase struct {
	motionReader   moutput.IMotionReader
	skeletonReader moutput.ISkeletonReader
	skeletonWriter moutput.ISkeletonWriter
	profileReader  moutput.IProfileReader
	reportWriter   moutput.IReportWriter
	curveWriter    moutput.ICurveWriter
}

// NewMocap2SpineUsecase はモーション変換ユースケースを生成する。
func NewMocap2SpineUsecase(deps Mocap2SpineUsecaseDeps) *Mocap2SpineUsecase {
	return &Mocap2SpineUsecase{
		motionReader:   deps.MotionReader,
		skeletonReader: deps.SkeletonReader,
		skeletonWriter: deps.SkeletonWriter,
		profileReader:  deps.ProfileReader,
		reportWriter:   deps.ReportWriter,
		curveWriter:    deps.CurveWriter,
	}
}
