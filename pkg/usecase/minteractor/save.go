// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/usecase/port/moutput"
)

// SaveSkeleton はスケルトンJSONを保存する。
func (uc *Mocap2SpineUsecase) SaveSkeleton(rep moutput.ISkeletonWriter, path string, skeleton *model.Skeleton) error {
	writer := rep
	if writer == nil {
		writer = uc.skeletonWriter
	}
	if writer == nil {
		return fmt.Errorf("スケルトン保存リポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("保存先パスが未指定です")
	}
	if skeleton == nil {
		return fmt.Errorf("保存対象スケルトンが未設定です")
	}
	if err := ensureOutputDir(path); err != nil {
		return err
	}
	return writer.Save(path, skeleton)
}

// SaveReport はバッチレポートを保存する。
func (uc *Mocap2SpineUsecase) SaveReport(rep moutput.IReportWriter, path string, report *model.BatchReport) error {
	writer := rep
	if writer == nil {
		writer = uc.reportWriter
	}
	if writer == nil {
		return fmt.Errorf("レポート保存リポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("レポート保存先パスが未指定です")
	}
	if report == nil {
		return fmt.Errorf("保存対象レポートが未設定です")
	}
	if err := ensureOutputDir(path); err != nil {
		return err
	}
	return writer.Save(path, report)
}

// SaveCurves は角度曲線の診断画像を保存する。書き込み先が無い場合は何もしない。
func (uc *Mocap2SpineUsecase) SaveCurves(rep moutput.ICurveWriter, path string, projected *model.ProjectedMotion) error {
	writer := rep
	if writer == nil {
		writer = uc.curveWriter
	}
	if writer == nil || projected == nil {
		return nil
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("診断画像の保存先パスが未指定です")
	}
	joints := make([]model.CanonicalJoint, 0, len(projected.JointAngles))
	for _, joint := range model.CanonicalJoints {
		if _, ok := projected.JointAngles[joint]; ok {
			joints = append(joints, joint)
		}
	}
	if len(joints) == 0 {
		return nil
	}
	if err := ensureOutputDir(path); err != nil {
		return err
	}
	return writer.Save(path, projected, joints)
}
