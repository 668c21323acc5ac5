// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/usecase/port/moutput"
)

// LoadMotion はモーションを読み込む。
func (uc *Mocap2SpineUsecase) LoadMotion(rep moutput.IMotionReader, path string, fps float64) (*model.DecodedMotion, error) {
	repo := rep
	if repo == nil {
		repo = uc.motionReader
	}
	if repo == nil {
		return nil, fmt.Errorf("モーション読み込みリポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return nil, merrors.NewInputError("入力モーションパスが未指定です")
	}
	if !repo.CanLoad(path) {
		return nil, merrors.NewInputError("未対応のモーション形式です: %s", path)
	}
	return repo.Load(path, fps)
}

// LoadSkeleton はスケルトンJSONを読み込む。
func (uc *Mocap2SpineUsecase) LoadSkeleton(rep moutput.ISkeletonReader, path string) (*model.Skeleton, error) {
	repo := rep
	if repo == nil {
		repo = uc.skeletonReader
	}
	if repo == nil {
		return nil, fmt.Errorf("スケルトン読み込みリポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return nil, merrors.NewInputError("入力スケルトンパスが未指定です")
	}
	return repo.Load(path)
}

// LoadProfile はリターゲット設定を読み込む。パス未指定時は空の設定を返す。
func (uc *Mocap2SpineUsecase) LoadProfile(rep moutput.IProfileReader, path string) (*model.RetargetProfile, error) {
	if strings.TrimSpace(path) == "" {
		return &model.RetargetProfile{}, nil
	}
	repo := rep
	if repo == nil {
		repo = uc.profileReader
	}
	if repo == nil {
		return nil, fmt.Errorf("プロファイル読み込みリポジトリが設定されていません")
	}
	return repo.Load(path)
}
