// 指示: miu200521358
package io_skeleton

import (
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_common"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/infra/logging"
)

// SkeletonRepository はスケルトンJSONの読み書きを表す。
type SkeletonRepository struct{}

// NewSkeletonRepository はSkeletonRepositoryを生成する。
func NewSkeletonRepository() *SkeletonRepository {
	return &SkeletonRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *SkeletonRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Load はスケルトンJSONを読み込む。
func (r *SkeletonRepository) Load(path string) (*model.Skeleton, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	data, err := io_common.ReadTextFile(path)
	if err != nil {
		return nil, err
	}
	skeleton := &model.Skeleton{}
	if err := json.Unmarshal(data, skeleton); err != nil {
		return nil, io_common.NewIoParseFailed("スケルトンJSONの解析に失敗しました: %s", err, path)
	}
	logging.DefaultLogger().Info(
		"スケルトン読込完了: file=%s bones=%d animations=%d",
		filepath.Base(path), len(skeleton.Bones), len(skeleton.Animations),
	)
	return skeleton, nil
}

// Save はスケルトンJSONを保存する。
func (r *SkeletonRepository) Save(path string, skeleton *model.Skeleton) error {
	if err := io_common.WriteJSONFile(path, skeleton); err != nil {
		return err
	}
	logging.DefaultLogger().Info("スケルトン保存完了: file=%s", path)
	return nil
}
