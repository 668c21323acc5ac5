// 指示: miu200521358
package moutput

import "github.com/miu200521358/mu_mocap2spine/pkg/domain/model"

// IMotionReader はデコード済みモーションの読み込み契約を表す。
type IMotionReader interface {
	// CanLoad は拡張子から読み込み可否を判定する。
	CanLoad(path string) bool
	// Load はモーションを指定FPSで読み込む。
	Load(path string, fps float64) (*model.DecodedMotion, error)
}

// ISkeletonReader はスケルトンJSONの読み込み契約を表す。
type ISkeletonReader interface {
	Load(path string) (*model.Skeleton, error)
}

// ISkeletonWriter はスケルトンJSONの書き込み契約を表す。
type ISkeletonWriter interface {
	Save(path string, skeleton *model.Skeleton) error
}

// IProfileReader はリターゲット設定の読み込み契約を表す。
type IProfileReader interface {
	Load(path string) (*model.RetargetProfile, error)
}

// IReportWriter はバッチレポートの書き込み契約を表す。
type IReportWriter interface {
	Save(path string, report *model.BatchReport) error
}

// ICurveWriter は角度曲線の診断画像の書き込み契約を表す。
type ICurveWriter interface {
	Save(path string, projected *model.ProjectedMotion, joints []model.CanonicalJoint) error
}
