// 指示: miu200521358
package io_profile

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_mocap2spine/pkg/adapter/io_common"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/infra/logging"
	"gopkg.in/yaml.v3"
)

// ProfileRepository はリターゲット設定ファイルの読み込みを表す。
// JSON は YAML の部分集合として同じデコーダで読む。
type ProfileRepository struct{}

// NewProfileRepository はProfileRepositoryを生成する。
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *ProfileRepository) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

// Load はリターゲット設定を読み込む。空ファイルは空の設定として扱う。
func (r *ProfileRepository) Load(path string) (*model.RetargetProfile, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	data, err := io_common.ReadTextFile(path)
	if err != nil {
		return nil, err
	}
	profile := &model.RetargetProfile{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(profile); err != nil && !errors.Is(err, io.EOF) {
		return nil, io_common.NewIoParseFailed("プロファイルの解析に失敗しました: %s", err, path)
	}
	logging.DefaultLogger().Info(
		"プロファイル読込完了: file=%s id=%s targetBones=%d",
		filepath.Base(path), profile.ID, len(profile.TargetBones),
	)
	return profile, nil
}
